package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wms-platform/wave-planning-service/pkg/metrics"
)

// ContextKeyRequestID is the gin context key holding the request id.
const ContextKeyRequestID = "requestId"

// HeaderRequestID is the inbound/outbound request id header.
const HeaderRequestID = "X-Request-ID"

// Config holds middleware configuration.
type Config struct {
	Logger      *slog.Logger
	ServiceName string
}

// DefaultConfig returns a default middleware configuration.
func DefaultConfig(serviceName string, logger *slog.Logger) *Config {
	return &Config{
		Logger:      logger,
		ServiceName: serviceName,
	}
}

// Setup applies the standard middleware chain to a Gin router.
func Setup(router *gin.Engine, config *Config) {
	router.Use(Recovery(config.Logger))
	router.Use(RequestID())
	router.Use(Logger(config.Logger))
	router.Use(ErrorHandler(config.Logger))
}

// Recovery recovers from panics and returns a 500 response.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("Panic recovered",
					"panic", recovered,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, APIErrorResponse{
					Code:      "INTERNAL_ERROR",
					Message:   "an internal error occurred",
					Timestamp: time.Now().UTC().Format(time.RFC3339),
					Path:      c.Request.URL.Path,
				})
			}
		}()
		c.Next()
	}
}

// RequestID assigns a request id to every request, reusing the caller's if
// one is supplied.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// Logger logs every request with method, path, status and latency.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}

		requestID, _ := c.Get(ContextKeyRequestID)
		logger.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"durationMs", time.Since(start).Milliseconds(),
			"clientIP", c.ClientIP(),
			"requestId", requestID,
		)
	}
}

// Metrics records request counts, durations and in-flight gauge.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		c.Next()
		m.HTTPRequestsInFlight.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(
			m.ServiceName(), c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPRequestDuration.WithLabelValues(
			m.ServiceName(), c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}

// MetricsEndpoint serves the Prometheus registry.
func MetricsEndpoint(m *metrics.Metrics) gin.HandlerFunc {
	handler := m.Handler()
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// HealthCheck creates a health check handler.
func HealthCheck(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	}
}

// ReadinessCheck creates a readiness check handler with a custom check.
func ReadinessCheck(serviceName string, checkFn func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := checkFn(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not ready",
				"service": serviceName,
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"service": serviceName,
		})
	}
}

// NoRoute handles 404 responses in the standard error shape.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, _ := c.Get(ContextKeyRequestID)
		reqID, _ := requestID.(string)

		c.JSON(http.StatusNotFound, APIErrorResponse{
			Code:      "ROUTE_NOT_FOUND",
			Message:   "The requested resource was not found",
			RequestID: reqID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Path:      c.Request.URL.Path,
		})
	}
}

// NoMethod handles 405 responses in the standard error shape.
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, _ := c.Get(ContextKeyRequestID)
		reqID, _ := requestID.(string)

		c.JSON(http.StatusMethodNotAllowed, APIErrorResponse{
			Code:      "METHOD_NOT_ALLOWED",
			Message:   "The request method is not supported for this resource",
			RequestID: reqID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Path:      c.Request.URL.Path,
		})
	}
}
