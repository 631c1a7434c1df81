package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/auth"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/config"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/controller"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/database"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/guest"
	"github.com/sirupsen/logrus"
)

type App struct {
	Config       *config.Config
	ConfigPath   string
	DB           *database.DB
	Logger       *logrus.Logger
	SessionStore *auth.SessionStore
	Guests       *guest.Service
}

// AuthMiddleware guards the operator API behind the dashboard session.
func (app *App) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.SessionStore.IsAuthenticated(r) {
			app.sendJSONError(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (app *App) sendJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		app.Logger.Errorf("Failed to encode response: %v", err)
	}
}

// Helper function to send JSON error responses
func (app *App) sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	}); err != nil {
		app.Logger.Errorf("Failed to encode error response: %v", err)
	}
}

// sendOperationError maps the integration client's error kinds onto HTTP
// statuses for the operator API.
func (app *App) sendOperationError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, controller.ErrMissingTarget),
		errors.Is(err, controller.ErrCredentialsRequired):
		status = http.StatusBadRequest
	case errors.Is(err, controller.ErrClientNotFound),
		errors.Is(err, controller.ErrResolutionFailed),
		errors.Is(err, guest.ErrControllerNotFound):
		status = http.StatusNotFound
	}
	app.sendJSONError(w, err.Error(), status)
}
