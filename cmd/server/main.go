package main

import (
	"alcyxob/fitsho/internal/api"
	"alcyxob/fitsho/internal/config"
	"alcyxob/fitsho/internal/draft"
	"alcyxob/fitsho/internal/repository/mongo"
	"alcyxob/fitsho/internal/service"
	"alcyxob/fitsho/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Fitsho API
// @version 1.0
// @description Workout tracking API: exercise catalog, active workout drafts, history and supplements.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Fitsho Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB)
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		log.Println("Initializing file storage service...")
		s3Ctx, s3Cancel := context.WithTimeout(context.Background(), 10*time.Second)
		fileStorage, err = storage.NewS3Storage(s3Ctx, cfg.S3)
		s3Cancel()
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Println("WARN: s3.bucket_name not set, exercise images are disabled.")
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	supplementRepo := mongo.NewMongoSupplementRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	exerciseService := service.NewExerciseService(exerciseRepo, fileStorage, cfg.Catalog.PageSize)
	workoutService := service.NewWorkoutService(workoutRepo, exerciseRepo)
	profileService := service.NewProfileService(userRepo)
	supplementService := service.NewSupplementService(supplementRepo)

	// --- Draft Store ---
	var draftStore draft.Store
	switch cfg.Draft.Backend {
	case config.DraftBackendRedis:
		redisStore := draft.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Draft.TTL)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisStore.Ping(pingCtx)
		pingCancel()
		if err != nil {
			log.Fatalf("FATAL: Could not connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Printf("ERROR: Failed to close Redis client: %v", err)
			}
		}()
		draftStore = redisStore
		log.Printf("Draft store: redis at %s (ttl %s)", cfg.Redis.Addr, cfg.Draft.TTL)
	default:
		draftStore = draft.NewMemoryStore(cfg.Draft.TTL)
		log.Printf("WARN: Draft store is in-memory; active workouts are lost on restart.")
	}
	drafts := draft.NewManager(draftStore, workoutService)

	// --- Seed Catalog ---
	if cfg.Catalog.Seed {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
		inserted, err := exerciseService.SeedCatalog(seedCtx)
		seedCancel()
		if err != nil {
			log.Printf("ERROR: Failed to seed exercise catalog: %v", err)
		} else if inserted > 0 {
			log.Printf("Seeded exercise catalog with %d exercises.", inserted)
		}
	}

	// --- Initialize Gin Engine ---
	if cfg.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, cfg.Server.SecureCookie, api.Services{
		Auth:       authService,
		Exercise:   exerciseService,
		Workout:    workoutService,
		Profile:    profileService,
		Supplement: supplementService,
		Drafts:     drafts,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
