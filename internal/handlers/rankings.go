package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/rankings"
)

var errOutOfRangeLimit = errors.New("limit must be between 1 and 200")

const (
	defaultRankingsLimit = 50
	maxRankingsLimit     = 200
)

// RankingsHandler serves the weekly ranking read endpoints and the
// staff-only manual recompute trigger.
type RankingsHandler struct {
	*BaseHandler
	repo   models.RankingRepository
	engine *rankings.Engine
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(base *BaseHandler, repo models.RankingRepository, engine *rankings.Engine) *RankingsHandler {
	return &RankingsHandler{BaseHandler: base, repo: repo, engine: engine}
}

// GetWeeklyClipRankings returns the ranked clips for a given ISO week.
// @Summary Weekly clip rankings
// @Tags rankings
// @Produce json
// @Param weekStart query string false "Monday of the target week, YYYY-MM-DD"
// @Param limit query int false "1-200, default 50"
// @Param platform query string false "Optional platform filter"
// @Success 200 {array} models.WeeklyClipRanking
// @Router /rankings/weekly-clips [get]
func (h *RankingsHandler) GetWeeklyClipRankings(c *gin.Context) {
	weekStart, err := parseWeekStart(c.Query("weekStart"))
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseRankingsLimit(c.Query("limit"))
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.repo.GetClipRankings(weekStart, c.Query("platform"), limit)
	if err != nil {
		h.respondWithError(c, http.StatusInternalServerError, "failed to load rankings")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetWeeklyCampaignRankings returns the ranked campaigns for a given ISO week.
// @Summary Weekly campaign rankings
// @Tags rankings
// @Produce json
// @Param weekStart query string false "Monday of the target week, YYYY-MM-DD"
// @Param limit query int false "1-200, default 50"
// @Success 200 {array} models.WeeklyCampaignRanking
// @Router /rankings/weekly-campaigns [get]
func (h *RankingsHandler) GetWeeklyCampaignRankings(c *gin.Context) {
	weekStart, err := parseWeekStart(c.Query("weekStart"))
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseRankingsLimit(c.Query("limit"))
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.repo.GetCampaignRankings(weekStart, limit)
	if err != nil {
		h.respondWithError(c, http.StatusInternalServerError, "failed to load rankings")
		return
	}
	c.JSON(http.StatusOK, rows)
}

type calculateRankingsRequest struct {
	WeekStart string `json:"weekStart"`
}

// CalculateRankings triggers an out-of-band recompute of the current (or
// given) week's clip and campaign rankings.
// @Summary Recompute weekly rankings
// @Tags rankings
// @Accept json
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /rankings/calculate [post]
func (h *RankingsHandler) CalculateRankings(c *gin.Context) {
	var req calculateRankingsRequest
	_ = c.ShouldBindJSON(&req)

	weekStart, err := parseWeekStart(req.WeekStart)
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if actor, ok := h.getUserID(c); ok {
		h.logger.Info("manual ranking recompute requested", "weekStart", weekStart.Format("2006-01-02"), "actor", actor)
	}

	if err := h.engine.ComputeClipRankings(c.Request.Context(), weekStart); err != nil {
		h.respondWithError(c, http.StatusInternalServerError, "clip ranking calculation failed: "+err.Error())
		return
	}
	if err := h.engine.ComputeCampaignRankings(c.Request.Context(), weekStart); err != nil {
		h.respondWithError(c, http.StatusInternalServerError, "campaign ranking calculation failed: "+err.Error())
		return
	}

	h.respondWithSuccess(c, "rankings recalculated", gin.H{"weekStart": weekStart.Format("2006-01-02")})
}

func parseWeekStart(raw string) (time.Time, error) {
	if raw == "" {
		monday, _ := rankings.CurrentWeek(time.Now())
		return monday, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseRankingsLimit(raw string) (int, error) {
	if raw == "" {
		return defaultRankingsLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxRankingsLimit {
		return 0, errOutOfRangeLimit
	}
	return limit, nil
}
