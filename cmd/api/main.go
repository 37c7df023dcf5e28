package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"abcstore/internal/adapter/api"
	"abcstore/internal/adapter/api/handler"
	apimiddleware "abcstore/internal/adapter/api/middleware"
	"abcstore/internal/adapter/api/router"
	"abcstore/internal/adapter/repository"
	"abcstore/internal/infrastructure/auth"
	"abcstore/internal/infrastructure/cache"
	"abcstore/internal/infrastructure/mongodb"
	"abcstore/internal/infrastructure/pdf"
	"abcstore/internal/infrastructure/storage"
	"abcstore/internal/usecase"
	"abcstore/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	mongoClient := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err := mongoClient.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongoClient.Close(shutdownCtx)
	}()

	db := mongoClient.Database()
	if err := repository.EnsureProductIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure product indexes: %v", err)
	}
	if err := repository.EnsureUserIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure user indexes: %v", err)
	}

	productRepo := repository.NewMongoProductRepository(db)
	userRepo := repository.NewMongoUserRepository(db)

	imageStore, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}
	defer imageStore.Close()

	listCache := cache.New(cfg.CacheTTL)
	defer listCache.Stop()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	pdfGenerator := pdf.NewGenerator(imageStore)

	authUseCase := usecase.NewAuthUseCase(userRepo, jwtManager)
	productUseCase := usecase.NewProductUseCase(
		productRepo,
		userRepo,
		imageStore,
		pdfGenerator,
		listCache,
		cfg.MaxUploadSize,
	)

	handler.Setup(authUseCase, productUseCase)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(jwtManager)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	router.Setup(e, authMiddleware, adminMiddleware, cfg.UploadDir)

	go func() {
		log.Printf("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
