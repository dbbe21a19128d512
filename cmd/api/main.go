package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avolkov/plateful/backend/config"
	"github.com/avolkov/plateful/backend/internal/api"
	"github.com/avolkov/plateful/backend/internal/database"
	"github.com/avolkov/plateful/backend/internal/middleware"
	"github.com/avolkov/plateful/backend/internal/router"
	"github.com/avolkov/plateful/backend/internal/server"
	"github.com/avolkov/plateful/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if redisClient == nil {
		log.Println("Redis not configured, rate limiting disabled")
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db)
	relationshipService := service.NewRelationshipService(db)
	shoppingListService := service.NewShoppingListService(db)
	catalogService := service.NewCatalogService(db)

	var imageStorage service.ImageStorage
	if s3Config != nil {
		if err := s3Config.SetupBucketPolicy(context.Background()); err != nil {
			log.Printf("Failed to apply bucket policy: %v", err)
		}
		imageStorage = service.NewImageService(s3Config)
	} else {
		log.Println("S3 not configured, storing image values as submitted")
	}

	limiter := middleware.NewMutationRateLimiter(redisClient)

	engine := router.SetupRouter(
		cfg.CORSAllowedOrigins,
		api.NewHealthHandler(func(ctx context.Context) error {
			return database.HealthCheck(ctx, cfg)
		}),
		api.NewAuthHandler(authService),
		api.NewRecipeHandler(recipeService, relationshipService, shoppingListService, imageStorage, authService, limiter),
		api.NewUserHandler(authService, relationshipService, authService),
		api.NewCatalogHandler(catalogService),
	)

	srv := server.New(engine, cfg.ServerHost, cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s:%s", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
