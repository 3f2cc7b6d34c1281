package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"process-platform/auth"
	"process-platform/internal/accesslog"
	"process-platform/internal/blob"
	"process-platform/internal/config"
	"process-platform/internal/db"
	"process-platform/internal/document"
	"process-platform/internal/entity"
	"process-platform/internal/logger"
	"process-platform/internal/middleware"
	"process-platform/internal/modesettings"
	"process-platform/internal/notify"
	"process-platform/internal/process"
	"process-platform/internal/project"
	"process-platform/internal/report"
	"process-platform/internal/search"
	"process-platform/internal/task"
	"process-platform/internal/taxonomy"
	"process-platform/internal/upload"
	"process-platform/internal/user"
	"process-platform/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	config.LoadConfig()
	logger.Init(config.AppConfig.Environment)
	if err := config.AppConfig.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	// Connect to database
	if err := db.ConnectDb(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.CloseDb()

	schema := db.NewProvisioner(db.Pool)

	// Seed taxonomy and the bootstrap admin
	if err := db.SeedData(ctx, schema, db.Pool); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	// Redis is optional: without it tokens cannot be revoked and nothing is cached
	redisClient := redis.NewClient(ctx, config.AppConfig.RedisAddress, config.AppConfig.RedisPassword)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := redis.NewCache(redisClient)
	revoker := auth.NewRevoker(redisClient)

	// Blob storage is optional at startup; uploads fail with a configuration error
	store, err := blob.New(blob.Config{
		Endpoint:  config.AppConfig.BlobEndpoint,
		AccessKey: config.AppConfig.BlobAccessKey,
		SecretKey: config.AppConfig.BlobSecretKey,
		Bucket:    config.AppConfig.BlobBucket,
		PublicURL: config.AppConfig.BlobPublicURL,
		UseSSL:    config.AppConfig.BlobUseSSL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create blob client")
	}
	if store.Configured() {
		bucketCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := store.EnsureBucket(bucketCtx); err != nil {
			log.Warn().Err(err).Msg("could not ensure blob bucket")
		}
		cancel()
	}

	notifier := notify.New(config.AppConfig.KafkaBrokers, config.AppConfig.KafkaInviteTopic)
	if closer, ok := notifier.(*notify.KafkaNotifier); ok {
		defer closer.Close()
	}

	// Initialize repository
	accessLogRepo := accesslog.NewRepository(db.AppDb, db.Pool, schema)
	userRepo := user.NewRepository(db.AppDb, db.Pool, schema)
	entityRepo := entity.NewRepository(db.AppDb, db.Pool, schema)
	processRepo := process.NewRepository(db.Pool, schema)
	projectRepo := project.NewRepository(db.Pool, schema)
	docRepo := document.NewRepository(db.AppDb, db.Pool, schema)
	categoryRepo := taxonomy.NewRepository(taxonomy.Categories, db.AppDb, db.Pool, schema)
	statusRepo := taxonomy.NewRepository(taxonomy.Statuses, db.AppDb, db.Pool, schema)
	taskRepo := task.NewRepository(db.AppDb, db.Pool, schema)
	settingsRepo := modesettings.NewRepository(db.AppDb, schema)
	searchRepo := search.NewRepository(db.Pool, schema)
	reportRepo := report.NewRepository(db.AppDb, db.Pool, schema)

	// Initialize service
	accessLogService := accesslog.NewService(accessLogRepo)
	userService := user.NewService(userRepo, notifier, revoker)
	docService := document.NewService(docRepo, cache)
	uploadService := upload.NewService(upload.Config{
		Secret:    []byte(config.AppConfig.JWTSecret),
		TicketTTL: config.AppConfig.UploadTicketTTL,
		MaxBytes:  config.AppConfig.MaxUploadBytes,
	}, store, docService, db.Pool)

	// Initialize handler
	accessLogHandler := accesslog.NewHandler(accessLogService)
	userHandler := user.NewHandler(userService, accessLogService, revoker)
	entityHandler := entity.NewHandler(entity.NewService(entityRepo))
	processHandler := process.NewHandler(process.NewService(processRepo))
	projectHandler := project.NewHandler(project.NewService(projectRepo))
	docHandler := document.NewHandler(docService, blob.NewFetcher(30*time.Second))
	categoryHandler := taxonomy.NewHandler(taxonomy.NewService(taxonomy.Categories, categoryRepo))
	statusHandler := taxonomy.NewHandler(taxonomy.NewService(taxonomy.Statuses, statusRepo))
	taskHandler := task.NewHandler(task.NewService(taskRepo))
	settingsHandler := modesettings.NewHandler(modesettings.NewService(settingsRepo, cache))
	uploadHandler := upload.NewHandler(uploadService, accessLogService)
	searchHandler := search.NewHandler(search.NewService(searchRepo))
	reportHandler := report.NewHandler(report.NewService(reportRepo))

	// Initialize Gin router
	if config.AppConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
	}
	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = config.AppConfig.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Pool.Ping(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": true})
	})

	api := router.Group("/api")

	// Public routes
	api.POST("/auth/login", userHandler.Login)
	api.POST("/auth/setup-password", userHandler.SetupPassword)
	api.POST("/uploads/complete", uploadHandler.Complete)

	authed := api.Group("", auth.AuthMiddleWare(revoker, userService))
	writers := authed.Group("", middleware.Writers())
	admins := authed.Group("", middleware.AdminOnly())

	authed.POST("/auth/logout", userHandler.Logout)
	authed.GET("/auth/me", userHandler.Me)

	// User routes
	authed.GET("/users", userHandler.List)
	admins.POST("/users", userHandler.Create)
	admins.PUT("/users", userHandler.Update)
	admins.DELETE("/users", userHandler.Delete)
	admins.PUT("/users/role", userHandler.UpdateRole)
	admins.POST("/users/invite", userHandler.Invite)

	authed.GET("/entities", entityHandler.List)
	writers.POST("/entities", entityHandler.Create)
	writers.PUT("/entities", entityHandler.Update)
	writers.DELETE("/entities", entityHandler.Delete)

	authed.GET("/processes", processHandler.List)
	writers.POST("/processes", processHandler.Create)
	writers.PUT("/processes", processHandler.Update)
	writers.DELETE("/processes", processHandler.Delete)

	authed.GET("/projects", projectHandler.List)
	writers.POST("/projects", projectHandler.Create)
	writers.PUT("/projects", projectHandler.Update)
	writers.PUT("/projects/manager", projectHandler.SetManager)
	writers.DELETE("/projects", projectHandler.Delete)

	authed.GET("/documents", docHandler.List)
	authed.GET("/documents/download", docHandler.Download)
	writers.PUT("/documents", docHandler.Update)
	writers.DELETE("/documents", docHandler.Delete)

	authed.GET("/uploads", uploadHandler.Diagnostics)
	writers.POST("/uploads", uploadHandler.Upload)
	writers.POST("/uploads/ticket", uploadHandler.Ticket)

	authed.GET("/categories", categoryHandler.List)
	admins.POST("/categories", categoryHandler.Create)
	admins.PUT("/categories", categoryHandler.Update)
	admins.DELETE("/categories", categoryHandler.Delete)

	authed.GET("/statuses", statusHandler.List)
	admins.POST("/statuses", statusHandler.Create)
	admins.PUT("/statuses", statusHandler.Update)
	admins.DELETE("/statuses", statusHandler.Delete)
	admins.PATCH("/statuses/order", statusHandler.Reorder)

	admins.GET("/access-logs", accessLogHandler.List)
	admins.GET("/access-logs/stats", accessLogHandler.Stats)
	admins.PATCH("/access-logs", accessLogHandler.Patch)
	authed.POST("/access-logs", accessLogHandler.Create)

	authed.GET("/tasks", taskHandler.List)
	writers.POST("/tasks", taskHandler.Create)
	writers.PUT("/tasks", taskHandler.Update)
	writers.DELETE("/tasks", taskHandler.Delete)
	authed.GET("/comments", taskHandler.ListComments)
	authed.POST("/comments", taskHandler.AddComment)

	authed.GET("/mode-settings", settingsHandler.Get)
	admins.POST("/mode-settings", settingsHandler.Set)
	admins.DELETE("/mode-settings", settingsHandler.Reset)

	authed.GET("/reports", reportHandler.List)
	writers.POST("/reports", reportHandler.Create)
	writers.PUT("/reports", reportHandler.Update)
	writers.DELETE("/reports", reportHandler.Delete)

	authed.GET("/search", searchHandler.Search)
	authed.GET("/search/suggestions", searchHandler.Suggestions)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverPort),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server
	go func() {
		log.Info().Str("port", serverPort).Msg("server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server shutdown complete")
}
