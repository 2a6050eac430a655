package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipdeck/statistics-service/internal/apperrors"
	"github.com/clipdeck/statistics-service/internal/collector"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/peers"
)

// StatsHandler serves the read-side HTTP surface over StatsCollector.
type StatsHandler struct {
	*BaseHandler
	clipService *peers.ClipServiceClient
	collector   *collector.StatsCollector
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(base *BaseHandler, clipService *peers.ClipServiceClient, coll *collector.StatsCollector) *StatsHandler {
	return &StatsHandler{BaseHandler: base, clipService: clipService, collector: coll}
}

// GetClipStats returns cached-or-fetched stats for a single clip.
// @Summary Get clip stats
// @Tags stats
// @Produce json
// @Param clipId path string true "Submission ID"
// @Success 200 {object} models.PlatformStats
// @Router /stats/{clipId} [get]
func (h *StatsHandler) GetClipStats(c *gin.Context) {
	clipID := c.Param("clipId")

	clip, err := h.clipService.GetClip(c.Request.Context(), clipID)
	if err != nil {
		h.respondWithUpstreamError(c, err)
		return
	}

	platform, ok := models.ParsePlatform(clip.Platform)
	if !ok {
		h.respondWithError(c, http.StatusUnprocessableEntity, "clip has an unrecognized platform")
		return
	}

	stats, err := h.collector.GetOrFetchStats(c.Request.Context(), clipID, platform, clip.PlatformVideoID)
	if err != nil {
		h.respondWithError(c, http.StatusBadGateway, "platform fetch failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RefreshClipStats forces a fresh platform fetch for a single clip.
// @Summary Force-refresh clip stats
// @Tags stats
// @Produce json
// @Param clipId path string true "Submission ID"
// @Success 200 {object} models.PlatformStats
// @Router /stats/refresh/{clipId} [post]
func (h *StatsHandler) RefreshClipStats(c *gin.Context) {
	clipID := c.Param("clipId")

	clip, err := h.clipService.GetClip(c.Request.Context(), clipID)
	if err != nil {
		h.respondWithUpstreamError(c, err)
		return
	}

	platform, ok := models.ParsePlatform(clip.Platform)
	if !ok {
		h.respondWithError(c, http.StatusUnprocessableEntity, "clip has an unrecognized platform")
		return
	}

	stats, err := h.collector.RefreshClipStats(c.Request.Context(), clipID, platform, clip.PlatformVideoID)
	if err != nil {
		h.respondWithError(c, http.StatusBadGateway, "platform fetch failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, stats)
}

type batchRefreshRequest struct {
	Clips []struct {
		SubmissionID string `json:"submissionId" binding:"required"`
		Platform     string `json:"platform" binding:"required"`
		VideoID      string `json:"videoId" binding:"required"`
	} `json:"clips" binding:"required,max=500"`
}

// BatchRefreshStats refreshes up to collector.BatchSizeLimit clips in one call.
// @Summary Batch refresh clip stats
// @Tags stats
// @Accept json
// @Produce json
// @Success 200 {object} collector.BatchResult
// @Router /stats/batch-refresh [post]
func (h *StatsHandler) BatchRefreshStats(c *gin.Context) {
	var req batchRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Clips) > collector.BatchSizeLimit {
		h.respondWithError(c, http.StatusBadRequest, "batch exceeds the 500-clip limit")
		return
	}

	clips := make([]collector.ClipRef, 0, len(req.Clips))
	for _, cl := range req.Clips {
		platform, ok := models.ParsePlatform(cl.Platform)
		if !ok {
			h.respondWithError(c, http.StatusBadRequest, "unknown platform: "+cl.Platform)
			return
		}
		clips = append(clips, collector.ClipRef{SubmissionID: cl.SubmissionID, Platform: platform, VideoID: cl.VideoID})
	}

	result := h.collector.BatchRefreshStats(c.Request.Context(), clips)
	c.JSON(http.StatusOK, result)
}

func (h *StatsHandler) respondWithUpstreamError(c *gin.Context, err error) {
	if apperrors.Is(err, apperrors.KindNotFound) || errors.Is(err, models.ErrNotFound) {
		h.respondWithError(c, http.StatusNotFound, "clip not found")
		return
	}
	h.respondWithError(c, http.StatusBadGateway, "clip-service request failed: "+err.Error())
}
