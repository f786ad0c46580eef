package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/wms-platform/wave-planning-service/internal/application"
	"github.com/wms-platform/wave-planning-service/internal/infrastructure/clients"
	kafkaAdapter "github.com/wms-platform/wave-planning-service/internal/infrastructure/kafka"
	mongoRepo "github.com/wms-platform/wave-planning-service/internal/infrastructure/mongodb"
	"github.com/wms-platform/wave-planning-service/pkg/errors"
	"github.com/wms-platform/wave-planning-service/pkg/kafka"
	"github.com/wms-platform/wave-planning-service/pkg/logging"
	"github.com/wms-platform/wave-planning-service/pkg/metrics"
	"github.com/wms-platform/wave-planning-service/pkg/middleware"
	"github.com/wms-platform/wave-planning-service/pkg/mongodb"
)

const serviceName = "wave-planning-service"

func main() {
	// Local development overrides; missing file is fine.
	_ = godotenv.Load()

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting wave-planning-service API")

	config := loadConfig()
	ctx := context.Background()

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	kafkaProducer := kafka.NewProducer(config.Kafka, "/wave-planning-service")
	defer kafkaProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	waveRepo, err := mongoRepo.NewWaveRepository(ctx, mongoClient, m, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize wave repository")
		os.Exit(1)
	}

	orderClient := clients.NewOrderClient(config.OrderServiceURL, config.ClientTimeout, logger)
	logger.Info("Order service client initialized", "url", config.OrderServiceURL)

	inventoryClient := clients.NewInventoryClient(config.InventoryServiceURL, config.ClientTimeout, logger)
	logger.Info("Inventory service client initialized", "url", config.InventoryServiceURL)

	eventPublisher := kafkaAdapter.NewEventPublisher(kafkaProducer, logger)

	selector := application.NewEligibilitySelector(orderClient, waveRepo, logger)
	optimizer := application.NewWaveOptimizer(inventoryClient, logger)
	estimator := application.NewLinearEstimatePolicy()

	waveService := application.NewWaveService(
		waveRepo,
		selector,
		optimizer,
		estimator,
		eventPublisher,
		m,
		logger,
	)

	router := gin.New()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.Metrics(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	{
		waves := api.Group("/waves")
		{
			waves.POST("", createWaveHandler(waveService, logger))
			waves.GET("", listWavesHandler(waveService, logger))
			waves.GET("/:waveId", getWaveHandler(waveService, logger))
			waves.DELETE("/:waveId", deleteWaveHandler(waveService, logger))
			waves.PATCH("/:waveId/status", updateWaveStatusHandler(waveService, logger))

			waves.GET("/:waveId/tasks", getWaveTasksHandler(waveService, logger))
			waves.PATCH("/:waveId/tasks/:taskId", updatePickTaskHandler(waveService, logger))

			waves.GET("/status/:status", getWavesByStatusHandler(waveService, logger))
			waves.GET("/order/:orderId", getWavesByOrderHandler(waveService, logger))
		}

		planning := api.Group("/planning")
		{
			planning.POST("/preview", previewEligibilityHandler(waveService, logger))
		}
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr          string
	MongoDB             *mongodb.Config
	Kafka               *kafka.Config
	OrderServiceURL     string
	InventoryServiceURL string
	ClientTimeout       time.Duration
	CORSOrigins         []string
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8004"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "waves_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
			ReplicaSet:     getEnv("MONGODB_REPLICA_SET", ""),
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
		OrderServiceURL:     getEnv("ORDER_SERVICE_URL", "http://localhost:8001"),
		InventoryServiceURL: getEnv("INVENTORY_SERVICE_URL", "http://localhost:8003"),
		ClientTimeout:       parseDuration(getEnv("CLIENT_TIMEOUT", "10s")),
		CORSOrigins:         []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:9080"},
	}
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// HTTP Handlers

func createWaveHandler(service *application.WaveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateWaveCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		result, err := service.CreateOptimizedWave(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

func listWavesHandler(service *application.WaveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		tenantID := c.Query("tenantId")
		if tenantID == "" {
			responder.RespondBadRequest("tenantId query parameter is required")
			return
		}

		waves, err := service.ListActiveWaves(c.Request.Context(), tenantID)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"waves": waves})
	}
}

func getWaveHandler(service *application.WaveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		wave, err := service.GetWave(c.Request.Context(), c.Param("waveId"))
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, wave)
	}
}

func deleteWaveHandler(service *application.WaveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.DeleteWave(c.Request.Context(), c.Param("waveId")); err != nil {
			respond(responder, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func updateWaveStatusHandler(service *application.WaveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.UpdateWaveStatusCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}
		cmd.WaveID = c.Param("waveId")

		result, err := service.UpdateWaveStatus(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func getWaveTasksHandler(service *application.WaveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		tasks, err := service.GetWaveTasks(c.Request.Context(), c.Param("waveId"))
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"tasks": tasks})
	}
}

func updatePickTaskHandler(service *application.WaveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.UpdatePickTaskCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}
		cmd.WaveID = c.Param("waveId")
		cmd.TaskID = c.Param("taskId")

		task, err := service.UpdatePickTask(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func getWavesByStatusHandler(service *application.WaveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		tenantID := c.Query("tenantId")
		if tenantID == "" {
			responder.RespondBadRequest("tenantId query parameter is required")
			return
		}

		waves, err := service.ListWavesByStatus(c.Request.Context(), tenantID, c.Param("status"))
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"waves": waves})
	}
}

func getWavesByOrderHandler(service *application.WaveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		waves, err := service.GetWavesByOrder(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"waves": waves})
	}
}

func previewEligibilityHandler(service *application.WaveService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.PreviewEligibilityCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		preview, err := service.PreviewEligibility(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, preview)
	}
}

func respond(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondWithError(err)
}
