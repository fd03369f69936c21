package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/hallticket-api/api/swagger"
	"github.com/noah-isme/hallticket-api/internal/handler"
	"github.com/noah-isme/hallticket-api/internal/middleware"
	"github.com/noah-isme/hallticket-api/internal/models"
	"github.com/noah-isme/hallticket-api/internal/repository"
	"github.com/noah-isme/hallticket-api/internal/service"
	"github.com/noah-isme/hallticket-api/pkg/cache"
	"github.com/noah-isme/hallticket-api/pkg/config"
	"github.com/noah-isme/hallticket-api/pkg/database"
	"github.com/noah-isme/hallticket-api/pkg/jobs"
	"github.com/noah-isme/hallticket-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/hallticket-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/hallticket-api/pkg/middleware/requestid"
	"github.com/noah-isme/hallticket-api/pkg/storage"
)

// @title Hall Ticket API
// @version 1.0.0
// @description Examination hall ticket generation service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, job status caching disabled", "error", err)
		redisClient = nil
	}

	fileStore, err := storage.NewLocalStorage(cfg.Tickets.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init document storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Tickets.SignedURLSecret, cfg.Tickets.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	jobRepo := repository.NewGenerationJobRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	assetSvc := service.NewAssetService(service.AssetConfig{
		MaxFileSizeBytes: cfg.Assets.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Assets.AllowedMIMEs,
		DefaultLogoDir:   cfg.Tickets.DefaultLogoDir,
	}, logr)
	assetSvc.LoadDefaultLogos()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "hallticket-api",
	})
	rosterSvc := service.NewRosterService(rosterRepo, validate, logr)

	ticketSvc := service.NewTicketService(rosterRepo, jobRepo, nil, fileStore, signer, cacheRepo, assetSvc, metricsSvc, validate, logr, service.TicketServiceConfig{
		APIPrefix:       cfg.APIPrefix,
		ResultTTL:       cfg.Tickets.SignedURLTTL,
		CleanupInterval: cfg.Tickets.CleanupInterval,
		JobStatusTTL:    cfg.Tickets.JobStatusTTL,
		MaxRetries:      cfg.Tickets.WorkerRetries,
	})
	worker := service.NewGenerationWorker(ticketSvc, cfg.Tickets.WorkerRetries, logr)
	queue := jobs.NewQueue("generation", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Tickets.WorkerConcurrency,
		MaxRetries: cfg.Tickets.WorkerRetries,
		Logger:     logr,
	})
	ticketSvc.SetQueue(queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()
	ticketSvc.RecoverPendingJobs(ctx)
	ticketSvc.StartCleanup(ctx)

	authHandler := handler.NewAuthHandler(authSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	ticketHandler := handler.NewTicketHandler(ticketSvc)
	assetHandler := handler.NewAssetHandler(assetSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	protected := api.Group("", middleware.JWT(authSvc))

	rosters := protected.Group("/rosters")
	rosters.POST("/import", rosterHandler.Import)
	rosters.GET("", rosterHandler.List)
	rosters.GET("/:id", rosterHandler.Get)
	rosters.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), rosterHandler.Delete)
	rosters.POST("/:id/schedule", rosterHandler.ApplySchedule)
	rosters.GET("/:id/export", rosterHandler.ExportCSV)

	tickets := protected.Group("/tickets")
	tickets.POST("/generate", ticketHandler.Generate)
	tickets.POST("/preview", ticketHandler.Preview)
	tickets.POST("/jobs", middleware.RequireRole(models.RoleAdmin, models.RoleOperator), ticketHandler.CreateJob)
	tickets.GET("/jobs/:id", ticketHandler.JobStatus)
	tickets.GET("/presets", ticketHandler.Presets)
	// download is token-authorized, not JWT-authorized
	api.GET("/tickets/download/:token", ticketHandler.Download)

	assets := protected.Group("/assets")
	assets.POST("/photos/:identifier", assetHandler.UploadPhoto)
	assets.DELETE("/photos/:identifier", middleware.RequireRole(models.RoleAdmin), assetHandler.DeletePhoto)
	assets.GET("/photos", assetHandler.ListPhotos)
	assets.POST("/logos/:slot", assetHandler.UploadLogo)

	protected.GET("/metrics/snapshot", metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
