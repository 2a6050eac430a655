package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipdeck/statistics-service/internal/config"
	"github.com/clipdeck/statistics-service/pkg/db"
	"github.com/clipdeck/statistics-service/pkg/logger"
)

// BaseHandler contains common dependencies for all handlers.
type BaseHandler struct {
	config *config.Config
	logger *logger.Logger
	db     *db.DB
}

// NewBaseHandler creates a new base handler.
func NewBaseHandler(cfg *config.Config, logger *logger.Logger, db *db.DB) *BaseHandler {
	return &BaseHandler{
		config: cfg,
		logger: logger,
		db:     db,
	}
}

// HealthCheck reports whether the service and its database are reachable.
// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func HealthCheck(db *db.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	}
}

// ReadinessCheck reports whether the service is ready to serve traffic.
// @Summary Readiness check
// @Description Check if the service is ready to serve requests
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ready [get]
func ReadinessCheck(db *db.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not ready",
				"message": "Database not ready",
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"message": "Service is ready to serve requests",
		})
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a success response.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (h *BaseHandler) respondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}

func (h *BaseHandler) respondWithSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// getUserID extracts the caller's identity, set by middleware.JWTAuth.
func (h *BaseHandler) getUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	return userID.(string), true
}
