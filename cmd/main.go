package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/auth"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/config"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/database"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/guest"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/handlers"
	"github.com/sirupsen/logrus"
)

var (
	Version = "dev" // Set by build process
)

var (
	configFile  = flag.String("config", "config.yaml", "Path to configuration file")
	port        = flag.Int("port", 8080, "Port to run the web server on")
	dbPath      = flag.String("database", "", "Path to database file (overrides config)")
	logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	showVersion = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Printf("Portal Cativo %s\n", Version)
		os.Exit(0)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Set log level from flag
	switch *logLevel {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	logger.Infof("Starting Portal Cativo %s", Version)

	// Load or initialize configuration
	cfg, err := config.LoadOrInitialize(*configFile)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Override database path if provided via flag
	databasePath := cfg.DatabasePath
	if *dbPath != "" {
		databasePath = *dbPath
		logger.Infof("Using database path from command line: %s", databasePath)
	}

	// Initialize database
	db, err := database.Initialize(databasePath)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize session store
	sessionStore := auth.NewSessionStore(cfg.SessionSecret)

	// Create app context
	app := &handlers.App{
		Config:       cfg,
		ConfigPath:   *configFile,
		DB:           db,
		Logger:       logger,
		SessionStore: sessionStore,
		Guests:       guest.NewService(db, cfg.TLSInsecure, logger),
	}

	// Setup routes
	router := setupRoutes(app)

	// Start server
	addr := fmt.Sprintf(":%d", *port)
	logger.Infof("Starting server on http://localhost%s", addr)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.Info("Shutting down...")
		os.Exit(0)
	}()

	// Create server with timeouts
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *handlers.App) *mux.Router {
	router := mux.NewRouter()

	// Setup and login (no auth required)
	router.HandleFunc("/api/setup", app.SetupHandler).Methods("POST")
	router.HandleFunc("/api/login", app.LoginHandler).Methods("POST")

	// Protected routes (require authentication)
	api := router.PathPrefix("/api").Subrouter()
	api.Use(app.AuthMiddleware)

	api.HandleFunc("/logout", app.LogoutHandler).Methods("POST")

	// Controller registry
	api.HandleFunc("/controllers", app.ListControllersHandler).Methods("GET")
	api.HandleFunc("/controllers", app.AddControllerHandler).Methods("POST")
	api.HandleFunc("/controllers/test", app.TestControllerHandler).Methods("POST")
	api.HandleFunc("/controllers/{id}", app.UpdateControllerHandler).Methods("PUT")
	api.HandleFunc("/controllers/{id}", app.DeleteControllerHandler).Methods("DELETE")

	// Appliance reads
	api.HandleFunc("/controllers/{id}/sites", app.GetSitesHandler).Methods("GET")
	api.HandleFunc("/controllers/{id}/networks", app.GetWirelessNetworksHandler).Methods("GET")
	api.HandleFunc("/controllers/{id}/aps", app.GetAccessPointsHandler).Methods("GET")
	api.HandleFunc("/controllers/{id}/clients", app.GetClientsHandler).Methods("GET")
	api.HandleFunc("/controllers/{id}/system", app.GetSystemInfoHandler).Methods("GET")

	// Guest lifecycle
	api.HandleFunc("/guests/authorize", app.AuthorizeGuestHandler).Methods("POST")
	api.HandleFunc("/guests/unauthorize", app.UnauthorizeGuestHandler).Methods("POST")
	api.HandleFunc("/guests/disconnect", app.DisconnectClientHandler).Methods("POST")
	api.HandleFunc("/guests/block", app.BlockClientHandler).Methods("POST")
	api.HandleFunc("/guests/unblock", app.UnblockClientHandler).Methods("POST")

	return router
}
