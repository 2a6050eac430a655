package botdetect

import (
	"context"
	"fmt"
	"strings"

	"github.com/clipdeck/statistics-service/internal/events"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/pkg/logger"
	"github.com/clipdeck/statistics-service/pkg/metrics"
)

// Runner wraps Detect with the asynchronous side effects: fetching history
// from the clip-service and publishing stats.bot_detected when the run
// produces at least one significant flag.
type Runner struct {
	clipService *peers.ClipServiceClient
	publisher   events.Publisher
	log         *logger.Logger
	m           *metrics.Metrics
}

// NewRunner builds a Runner.
func NewRunner(clipService *peers.ClipServiceClient, publisher events.Publisher, log *logger.Logger, m *metrics.Metrics) *Runner {
	return &Runner{clipService: clipService, publisher: publisher, log: log, m: m}
}

// Run fetches history, platform, campaign and user for clipID, runs
// Detect, and publishes stats.bot_detected iff at least one flag is HIGH
// or MEDIUM severity. A fetch failure returns the empty result with no
// publication, never an error — detection is best-effort.
func (r *Runner) Run(ctx context.Context, clipID string) models.BotDetectionResult {
	clip, err := r.clipService.GetClip(ctx, clipID)
	if err != nil {
		r.log.Warn("bot detection: fetch clip failed", "clipId", clipID, "error", err)
		return models.NoAnomalies()
	}

	history, err := r.clipService.GetStatsHistory(ctx, clipID)
	if err != nil {
		r.log.Warn("bot detection: fetch history failed", "clipId", clipID, "error", err)
		return models.NoAnomalies()
	}

	platform, ok := models.ParsePlatform(clip.Platform)
	if !ok {
		platform = models.PlatformYouTube
	}

	result := Detect(history, platform)
	r.m.RecordBotDetectionRun(result.ConfidenceScore)
	for _, f := range result.Flags {
		r.m.RecordBotFlag(string(f.Type), string(f.Severity))
	}

	significant := significantFlags(result.Flags)
	if len(significant) == 0 {
		return result
	}

	event := models.BotDetectedEvent{
		ClipID:     clipID,
		CampaignID: clip.CampaignID,
		UserID:     clip.UserID,
		FlagType:   significant[0].Type,
		Confidence: float64(result.ConfidenceScore) / 100,
		Evidence:   evidenceOf(significant),
	}
	if err := r.publisher.PublishBotDetected(ctx, event); err != nil {
		r.log.Warn("stats.bot_detected publish failed", "clipId", clipID, "error", err)
	}

	return result
}

func significantFlags(flags []models.BotFlag) []models.BotFlag {
	var out []models.BotFlag
	for _, f := range flags {
		if f.Significant() {
			out = append(out, f)
		}
	}
	return out
}

func evidenceOf(flags []models.BotFlag) string {
	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Type, f.Description))
	}
	return strings.Join(parts, "; ")
}
