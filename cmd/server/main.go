package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/terralytics/limeplan/internal/config"
	"github.com/terralytics/limeplan/internal/database"
	"github.com/terralytics/limeplan/internal/handlers"
	"github.com/terralytics/limeplan/internal/logger"
	"github.com/terralytics/limeplan/internal/middleware"
	"github.com/terralytics/limeplan/internal/rainfall"
	"github.com/terralytics/limeplan/internal/refdata"
	"github.com/terralytics/limeplan/internal/repository"
	"github.com/terralytics/limeplan/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting limeplan API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Optional calculation-history store
	ctx := context.Background()
	var db *database.Database
	var calcRepo repository.CalculationRepository
	if cfg.Database.Enabled {
		db, err = database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		defer db.Close()

		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})
		calcRepo = repository.NewCalculationRepository(db)
	} else {
		log.Info("Calculation history disabled, running stateless", nil)
	}

	// Reference data and external services
	cecTable := refdata.LoadExchangeCapacityTable(cfg.RefData.CECTablePath, log)
	rainfallClient := rainfall.NewClient(cfg.Rainfall.URL, cfg.Rainfall.Timeout, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize service layers
	prescriptionService := services.NewPrescriptionService(rainfallClient, cecTable, log)
	historyService := services.NewHistoryService(calcRepo, log)

	// Initialize handlers
	limingHandler := handlers.NewLimingHandler(prescriptionService, historyService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		liming := v1.Group("/liming")
		{
			liming.POST("/calculate/vdlufa", limingHandler.CalculateVDLUFA)
			liming.POST("/calculate/cec", limingHandler.CalculateCEC)
			liming.GET("/methods", limingHandler.Methods)
			liming.GET("/lime-types", limingHandler.LimeTypes)
			liming.GET("/history", limingHandler.History)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
