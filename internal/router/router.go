package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/tawasol-app/backend/internal/gateway"
	"github.com/tawasol-app/backend/internal/handlers"
	"github.com/tawasol-app/backend/internal/middleware"
	"github.com/tawasol-app/backend/internal/models"
	"github.com/tawasol-app/backend/internal/realtime"
	"github.com/tawasol-app/backend/internal/repositories"
	"github.com/tawasol-app/backend/internal/storage"
	syncengine "github.com/tawasol-app/backend/internal/sync"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.Logger())
	log.Println("Global middleware configured.")
}

// SetupRoutes wires repositories, the session manager and all handlers,
// and returns the session manager so the caller can shut it down.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgdb *mongo.Database, channel realtime.Channel, firebaseAuthClient *auth.Client, mediaStore storage.Store, jwtSecret string) *syncengine.Manager {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Message{},
		&models.Notification{},
		&models.StorySeen{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	messageRepo := repositories.NewPostgresMessageRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	storyRepo := repositories.NewStoryRepository(mgdb, pgdb)

	// --- Session manager over the data gateway ---
	gw := gateway.New(gateway.Store{
		Users:         userRepo,
		Posts:         postRepo,
		Comments:      commentRepo,
		Likes:         likeRepo,
		Follows:       followRepo,
		Messages:      messageRepo,
		Notifications: notificationRepo,
	}, pgdb)
	sessions := syncengine.NewManager(gw, channel)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, jwtSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtSecret, firebaseAuthClient, userRepo))

	userHandler := handlers.NewUserHandler(userRepo, followRepo, sessions)
	userHandler.RegisterUserRoutes(api)

	postHandler := handlers.NewPostHandler(postRepo, userRepo, notificationRepo, sessions)
	postHandler.RegisterPostRoutes(api)

	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, sessions)
	feedHandler.RegisterFeedRoutes(api)

	likeHandler := handlers.NewLikeHandler(likeRepo, sessions)
	likeHandler.RegisterLikeRoutes(api)

	commentHandler := handlers.NewCommentHandler(sessions)
	commentHandler.RegisterCommentRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, sessions)
	followHandler.RegisterFollowRoutes(api)

	messageHandler := handlers.NewMessageHandler(sessions)
	messageHandler.RegisterMessageRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, sessions)
	notificationHandler.RegisterNotificationRoutes(api)

	storyHandler := handlers.NewStoryHandler(storyRepo, userRepo, sessions)
	storyHandler.RegisterStoryRoutes(api)

	mediaHandler := handlers.NewMediaHandler(mediaStore)
	mediaHandler.RegisterMediaRoutes(api)

	eventsHandler := handlers.NewEventsHandler(channel)
	eventsHandler.RegisterEventRoutes(api)

	log.Println("All routes configured.")
	return sessions
}
