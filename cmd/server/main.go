package main

import (
	"context"
	"log"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/realtime"
	"github.com/tawasol-app/backend/internal/router"
	"github.com/tawasol-app/backend/internal/storage"
	"github.com/tawasol-app/backend/pkg/config"
	"github.com/tawasol-app/backend/pkg/firebase"
	"github.com/tawasol-app/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDatabases(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.Close()

	// Firebase is optional; without credentials only local JWT auth works.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var authClient *firebaseauth.Client
	if cfg.FirebaseCredentials != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentials)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		authClient = firebaseApp.AuthClient
	} else {
		log.Println("Firebase credentials not configured, Firebase login disabled")
	}

	// Realtime listener over Postgres LISTEN/NOTIFY
	listener := realtime.NewPGListener(db.PgPool)
	go listener.Run(ctx)

	// Local media store
	mediaStore, err := storage.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize media store: %v", err)
	}

	// Create Echo instance
	e := echo.New()
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	sessions := router.SetupRoutes(e, db.Postgres, db.Mongo, listener, authClient, mediaStore, cfg.JWTSecret)
	defer sessions.Close()

	// Serve uploaded media
	e.Static(cfg.UploadBaseURL, cfg.UploadDir)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
