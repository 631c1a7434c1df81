package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/config"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/controller"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/database"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/guest"
)

// SetupHandler creates the initial admin account. Only available until
// setup completes.
func (app *App) SetupHandler(w http.ResponseWriter, r *http.Request) {
	if app.Config.IsConfigured() {
		app.sendJSONError(w, "Setup already completed", http.StatusForbidden)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.sendJSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		app.sendJSONError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	app.Config.Admin.Username = req.Username
	if err := app.Config.SetAdminPassword(req.Password); err != nil {
		app.Logger.Errorf("Failed to hash admin password: %v", err)
		app.sendJSONError(w, "Failed to store password", http.StatusInternalServerError)
		return
	}
	app.Config.SetupComplete = true

	if err := config.SaveConfig(app.ConfigPath, app.Config); err != nil {
		app.Logger.Errorf("Failed to save configuration: %v", err)
		app.sendJSONError(w, "Failed to save configuration", http.StatusInternalServerError)
		return
	}

	app.sendJSON(w, map[string]interface{}{"success": true})
}

// LoginHandler authenticates the dashboard operator.
func (app *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.sendJSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if req.Username != app.Config.Admin.Username || !app.Config.VerifyAdminPassword(req.Password) {
		app.sendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if err := app.SessionStore.Login(r, w); err != nil {
		app.Logger.Errorf("Failed to create session: %v", err)
		app.sendJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	app.sendJSON(w, map[string]interface{}{"success": true})
}

func (app *App) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.SessionStore.Logout(r, w); err != nil {
		app.Logger.Errorf("Failed to destroy session: %v", err)
	}
	app.sendJSON(w, map[string]interface{}{"success": true})
}

type controllerRequest struct {
	Name     string `json:"name"`
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	APIKey   string `json:"api_key"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ListControllersHandler returns the registered appliances, with their
// stored secrets blanked.
func (app *App) ListControllersHandler(w http.ResponseWriter, r *http.Request) {
	controllers, err := app.DB.ListControllers()
	if err != nil {
		app.Logger.Errorf("Failed to list controllers: %v", err)
		app.sendJSONError(w, "Failed to list controllers", http.StatusInternalServerError)
		return
	}
	for i := range controllers {
		controllers[i].APIKey = ""
		controllers[i].Password = ""
	}
	app.sendJSON(w, map[string]interface{}{"success": true, "controllers": controllers})
}

func (app *App) AddControllerHandler(w http.ResponseWriter, r *http.Request) {
	var req controllerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.sendJSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.IP == "" || req.Port == 0 {
		app.sendJSONError(w, "IP and port are required", http.StatusBadRequest)
		return
	}

	c := &database.Controller{
		Record: controller.Record{
			IP:       req.IP,
			Port:     req.Port,
			APIKey:   req.APIKey,
			Username: req.Username,
			Password: req.Password,
		},
		Name: req.Name,
	}
	if err := app.DB.CreateController(c); err != nil {
		app.Logger.Errorf("Failed to create controller: %v", err)
		app.sendJSONError(w, "Failed to create controller", http.StatusInternalServerError)
		return
	}
	app.sendJSON(w, map[string]interface{}{"success": true, "id": c.ID})
}

func (app *App) UpdateControllerHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req controllerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.sendJSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	existing, err := app.DB.FindController(id)
	if err != nil {
		app.Logger.Errorf("Failed to load controller %s: %v", id, err)
		app.sendJSONError(w, "Failed to load controller", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		app.sendJSONError(w, "Controller not found", http.StatusNotFound)
		return
	}

	existing.Name = req.Name
	existing.IP = req.IP
	existing.Port = req.Port
	// Blank secrets in the request keep the stored ones.
	if req.APIKey != "" {
		existing.APIKey = req.APIKey
	}
	if req.Username != "" {
		existing.Username = req.Username
	}
	if req.Password != "" {
		existing.Password = req.Password
	}

	if err := app.DB.UpdateController(existing); err != nil {
		app.Logger.Errorf("Failed to update controller %s: %v", id, err)
		app.sendJSONError(w, "Failed to update controller", http.StatusInternalServerError)
		return
	}
	app.sendJSON(w, map[string]interface{}{"success": true})
}

func (app *App) DeleteControllerHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := app.DB.DeleteController(id); err != nil {
		app.Logger.Errorf("Failed to delete controller %s: %v", id, err)
		app.sendJSONError(w, "Failed to delete controller", http.StatusInternalServerError)
		return
	}
	app.sendJSON(w, map[string]interface{}{"success": true})
}

// TestControllerHandler checks connectivity against a controller that is
// not stored yet by listing its sites.
func (app *App) TestControllerHandler(w http.ResponseWriter, r *http.Request) {
	var req controllerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.sendJSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	rec := &controller.Record{
		ID:       "test",
		IP:       req.IP,
		Port:     req.Port,
		APIKey:   req.APIKey,
		Username: req.Username,
		Password: req.Password,
	}
	cl := controller.NewClient(rec, app.Config.TLSInsecure, controller.NewLogrusAdapter(app.Logger))

	sites, err := cl.ListSites()
	if err != nil {
		app.Logger.Errorf("Controller test failed: %v", err)
		app.sendJSONError(w, "Failed to connect to the controller. Check address and credentials.", http.StatusBadRequest)
		return
	}
	app.sendJSON(w, map[string]interface{}{"success": true, "sites": sites})
}

func (app *App) GetSitesHandler(w http.ResponseWriter, r *http.Request) {
	sites, err := app.Guests.Sites(mux.Vars(r)["id"])
	if err != nil {
		app.sendOperationError(w, err)
		return
	}
	app.sendJSON(w, map[string]interface{}{"success": true, "sites": sites})
}

func (app *App) GetWirelessNetworksHandler(w http.ResponseWriter, r *http.Request) {
	networks, err := app.Guests.WirelessNetworks(mux.Vars(r)["id"], r.URL.Query().Get("site"))
	if err != nil {
		app.sendOperationError(w, err)
		return
	}
	app.sendJSON(w, map[string]interface{}{"success": true, "networks": networks})
}

func (app *App) GetAccessPointsHandler(w http.ResponseWriter, r *http.Request) {
	aps, err := app.Guests.AccessPoints(mux.Vars(r)["id"], r.URL.Query().Get("site"))
	if err != nil {
		app.sendOperationError(w, err)
		return
	}
	app.sendJSON(w, map[string]interface{}{"success": true, "access_points": aps})
}

func (app *App) GetClientsHandler(w http.ResponseWriter, r *http.Request) {
	clients, err := app.Guests.Clients(mux.Vars(r)["id"], r.URL.Query().Get("site"))
	if err != nil {
		app.sendOperationError(w, err)
		return
	}
	app.sendJSON(w, map[string]interface{}{"success": true, "clients": clients})
}

func (app *App) GetSystemInfoHandler(w http.ResponseWriter, r *http.Request) {
	info, err := app.Guests.SystemInfo(mux.Vars(r)["id"], r.URL.Query().Get("site"))
	if err != nil {
		app.sendOperationError(w, err)
		return
	}
	app.sendJSON(w, map[string]interface{}{"success": true, "system": info})
}

// guestOperationHandler decodes an access request and runs one lifecycle
// command.
func (app *App) guestOperationHandler(w http.ResponseWriter, r *http.Request, run func(*guest.AccessRequest) error) {
	var req guest.AccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.sendJSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.ControllerID == "" {
		app.sendJSONError(w, "controller_id is required", http.StatusBadRequest)
		return
	}
	if err := run(&req); err != nil {
		app.Logger.Errorf("Guest operation failed: %v", err)
		app.sendOperationError(w, err)
		return
	}
	app.sendJSON(w, map[string]interface{}{"success": true})
}

func (app *App) AuthorizeGuestHandler(w http.ResponseWriter, r *http.Request) {
	app.guestOperationHandler(w, r, app.Guests.Authorize)
}

func (app *App) UnauthorizeGuestHandler(w http.ResponseWriter, r *http.Request) {
	app.guestOperationHandler(w, r, app.Guests.Unauthorize)
}

func (app *App) DisconnectClientHandler(w http.ResponseWriter, r *http.Request) {
	app.guestOperationHandler(w, r, app.Guests.Disconnect)
}

func (app *App) BlockClientHandler(w http.ResponseWriter, r *http.Request) {
	app.guestOperationHandler(w, r, app.Guests.Block)
}

func (app *App) UnblockClientHandler(w http.ResponseWriter, r *http.Request) {
	app.guestOperationHandler(w, r, app.Guests.Unblock)
}
