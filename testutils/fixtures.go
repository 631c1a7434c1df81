package testutils

import (
	"path/filepath"
	"testing"

	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/auth"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/config"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/controller"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/database"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/guest"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/handlers"
	"github.com/sirupsen/logrus"
)

// TestApp holds test application context
type TestApp struct {
	App    *handlers.App
	Config *config.Config
	DB     *database.DB
}

// NewTestApp creates a new test application instance
func NewTestApp(t *testing.T) *TestApp {
	t.Helper()

	// Set up logger with test level
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel) // Reduce noise in tests
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
	})

	// Create test config
	cfg := &config.Config{
		DatabasePath:  filepath.Join(t.TempDir(), "portal_test.db"),
		SessionSecret: "test-session-secret-32-characters!",
		TLSInsecure:   true,
		SetupComplete: false,
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Initialize session store
	sessionStore := auth.NewSessionStore(cfg.SessionSecret)

	// Create app context
	app := &handlers.App{
		Config:       cfg,
		ConfigPath:   filepath.Join(t.TempDir(), "config.yaml"),
		DB:           db,
		Logger:       logger,
		SessionStore: sessionStore,
		Guests:       guest.NewService(db, cfg.TLSInsecure, logger),
	}

	return &TestApp{
		App:    app,
		Config: cfg,
		DB:     db,
	}
}

// CompleteSetup sets up the app as if the setup step was completed
func (ta *TestApp) CompleteSetup(t *testing.T) {
	t.Helper()

	ta.Config.SetupComplete = true
	ta.Config.Admin.Username = "admin"
	if err := ta.Config.SetAdminPassword("testpassword123"); err != nil {
		t.Fatalf("Failed to set admin password: %v", err)
	}
}

// CreateTestController registers an appliance pointing at the given mock
// server address.
func (ta *TestApp) CreateTestController(t *testing.T, ip string, port int) *database.Controller {
	t.Helper()

	c := &database.Controller{
		Record: controller.Record{
			IP:       ip,
			Port:     port,
			Username: "admin",
			Password: "pw",
		},
		Name: "Test Controller",
	}
	if err := ta.DB.CreateController(c); err != nil {
		t.Fatalf("Failed to create test controller: %v", err)
	}
	return c
}

// GetValidTestMAC returns a valid MAC address for testing
func GetValidTestMAC() string {
	return "aa:bb:cc:dd:ee:01"
}

// GetInvalidTestMACs returns various invalid MAC addresses for testing
func GetInvalidTestMACs() []string {
	return []string{
		"invalid-mac",
		"aa:bb:cc:dd:ee",       // too short
		"aa:bb:cc:dd:ee:ff:gg", // too long
		"zz:bb:cc:dd:ee:ff",    // invalid hex
		"",                     // empty
	}
}
