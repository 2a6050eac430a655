package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipdeck/statistics-service/internal/botdetect"
	"github.com/clipdeck/statistics-service/internal/events"
	"github.com/clipdeck/statistics-service/internal/models"
)

// InternalHandler serves operator-facing endpoints: dead-letter requeue
// and bot-detection threshold introspection. Both are staff-only.
type InternalHandler struct {
	*BaseHandler
	deadLetters *events.DeadLetterStore
}

// NewInternalHandler creates a new internal handler.
func NewInternalHandler(base *BaseHandler, deadLetters *events.DeadLetterStore) *InternalHandler {
	return &InternalHandler{BaseHandler: base, deadLetters: deadLetters}
}

// RetryDeadLetter re-publishes a dead-lettered event under its original
// routing key.
// @Summary Retry a dead-lettered event
// @Tags internal
// @Produce json
// @Param id path string true "Dead letter message ID"
// @Success 200 {object} SuccessResponse
// @Router /internal/events/dead-letter/{id}/retry [post]
func (h *InternalHandler) RetryDeadLetter(c *gin.Context) {
	id := c.Param("id")
	if actor, ok := h.getUserID(c); ok {
		h.logger.Info("dead letter retry requested", "id", id, "actor", actor)
	}

	err := h.deadLetters.Requeue(c.Request.Context(), id)
	switch {
	case err == nil:
		h.respondWithSuccess(c, "message requeued", gin.H{"id": id})
	case errors.Is(err, models.ErrNotFound):
		h.respondWithError(c, http.StatusNotFound, "dead letter message not found")
	case errors.Is(err, models.ErrConflict):
		h.respondWithError(c, http.StatusConflict, "message was already requeued")
	default:
		h.respondWithError(c, http.StatusInternalServerError, "requeue failed: "+err.Error())
	}
}

// GetBotDetectionThresholds returns every platform's bot-detection
// threshold row, for debugging unexpected flag severities.
// @Summary Bot detection thresholds
// @Tags internal
// @Produce json
// @Success 200 {array} botdetect.PlatformThresholdView
// @Router /internal/botdetect/thresholds [get]
func (h *InternalHandler) GetBotDetectionThresholds(c *gin.Context) {
	c.JSON(http.StatusOK, botdetect.Thresholds())
}
