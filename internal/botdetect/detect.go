// Package botdetect implements the statistical anomaly engine: nine rules
// evaluated over a clip's time-series history, each gated by a minimum
// history length and emitting at most one flag.
package botdetect

import (
	"math"

	"github.com/clipdeck/statistics-service/internal/models"
)

// growthRate computes the percentage growth from prev to curr.
// growthRate(0, 0) = 0; growthRate(0, n>0) = +Inf.
func growthRate(prev, curr int64) float64 {
	if prev == 0 {
		if curr > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return (float64(curr-prev) / float64(prev)) * 100
}

// Detect runs all nine rules over history (newest-first) and returns the
// aggregate result. When history has fewer than 2 entries, per the
// universal invariant, it returns the empty result without evaluating any
// rule.
func Detect(history []models.StatsHistoryEntry, platform models.Platform) models.BotDetectionResult {
	if len(history) < 2 {
		return models.NoAnomalies()
	}

	t := thresholdsFor(platform)
	var flags []models.BotFlag

	if f, ok := detectViewsSpike(history, t); ok {
		flags = append(flags, f)
	}
	if f, ok := detectLikesSpike(history, t); ok {
		flags = append(flags, f)
	}
	if f, ok := detectCommentsSpike(history, t); ok {
		flags = append(flags, f)
	}
	if f, ok := detectEngagementRatio(history, t); ok {
		flags = append(flags, f)
	}
	if len(history) >= 5 {
		if f, ok := detectZeroVariance(history); ok {
			flags = append(flags, f)
		}
		if f, ok := detectVelocityAnomaly(history); ok {
			flags = append(flags, f)
		}
		if f, ok := detectRatioAnomaly(history, t); ok {
			flags = append(flags, f)
		}
	}
	if len(history) >= 12 {
		if f, ok := detectSuddenStop(history); ok {
			flags = append(flags, f)
		}
	}
	if len(history) >= 24 {
		if f, ok := detectTimePattern(history); ok {
			flags = append(flags, f)
		}
	}

	if len(flags) == 0 {
		return models.NoAnomalies()
	}

	sum := 0
	for _, f := range flags {
		sum += f.Confidence
	}
	return models.BotDetectionResult{
		HasAnomalies:    true,
		Flags:           flags,
		ConfidenceScore: sum / len(flags),
	}
}

func detectViewsSpike(h []models.StatsHistoryEntry, t platformThresholds) (models.BotFlag, bool) {
	latest, prev := h[0], h[1]
	g := growthRate(prev.Views, latest.Views)
	delta := latest.Views - prev.Views

	if g > t.ViewsSpike.High && delta > 2*t.MinViews {
		return models.BotFlag{Type: models.FlagViewsSpike, Severity: models.SeverityHigh, Confidence: 90,
			Description: "view count growth far exceeds platform baseline"}, true
	}
	if g > t.ViewsSpike.Medium && delta > t.MinViews {
		return models.BotFlag{Type: models.FlagViewsSpike, Severity: models.SeverityMedium, Confidence: 70,
			Description: "view count growth exceeds platform baseline"}, true
	}
	return models.BotFlag{}, false
}

func detectLikesSpike(h []models.StatsHistoryEntry, t platformThresholds) (models.BotFlag, bool) {
	latest, prev := h[0], h[1]
	g := growthRate(prev.Likes, latest.Likes)
	delta := latest.Likes - prev.Likes

	if g > t.LikesSpike.High && delta > 100 {
		return models.BotFlag{Type: models.FlagLikesSpike, Severity: models.SeverityHigh, Confidence: 85,
			Description: "like count growth far exceeds platform baseline"}, true
	}
	if g > t.LikesSpike.Medium && delta > 50 {
		return models.BotFlag{Type: models.FlagLikesSpike, Severity: models.SeverityMedium, Confidence: 65,
			Description: "like count growth exceeds platform baseline"}, true
	}
	return models.BotFlag{}, false
}

func detectCommentsSpike(h []models.StatsHistoryEntry, t platformThresholds) (models.BotFlag, bool) {
	latest, prev := h[0], h[1]
	g := growthRate(prev.Comments, latest.Comments)
	delta := latest.Comments - prev.Comments

	if g > t.CommentsSpike.High && delta > 50 {
		return models.BotFlag{Type: models.FlagCommentsSpike, Severity: models.SeverityHigh, Confidence: 88,
			Description: "comment count growth far exceeds platform baseline"}, true
	}
	return models.BotFlag{}, false
}

func detectEngagementRatio(h []models.StatsHistoryEntry, t platformThresholds) (models.BotFlag, bool) {
	latest := h[0]
	if latest.Views <= 0 {
		return models.BotFlag{}, false
	}
	r := float64(latest.Likes+latest.Comments) / float64(latest.Views)

	if r > t.EngRatio.High && latest.Views > t.MinViews {
		return models.BotFlag{Type: models.FlagEngagementRatio, Severity: models.SeverityHigh, Confidence: 92,
			Description: "engagement ratio implausibly high for view count"}, true
	}
	if r > t.EngRatio.Medium {
		return models.BotFlag{Type: models.FlagEngagementRatio, Severity: models.SeverityMedium, Confidence: 75,
			Description: "engagement ratio elevated for view count"}, true
	}
	return models.BotFlag{}, false
}

// detectZeroVariance flags near-linear view growth: a coefficient of
// variation on the per-step growth-rate series below 0.1, over a history
// whose view counts clear a minimum activity floor.
func detectZeroVariance(h []models.StatsHistoryEntry) (models.BotFlag, bool) {
	growths := make([]float64, 0, len(h)-1)
	for i := len(h) - 1; i > 0; i-- {
		g := growthRate(h[i].Views, h[i-1].Views)
		if math.IsInf(g, 0) {
			continue
		}
		growths = append(growths, g)
	}
	if len(growths) < 5 {
		return models.BotFlag{}, false
	}

	meanGrowth := mean(growths)
	sd := stdev(growths, meanGrowth)
	if meanGrowth == 0 {
		return models.BotFlag{}, false
	}
	cv := sd / math.Abs(meanGrowth)

	meanViews := meanViewCount(h)
	if cv < 0.1 && meanViews > 20 {
		return models.BotFlag{Type: models.FlagZeroVariance, Severity: models.SeverityHigh, Confidence: 95,
			Description: "view growth is implausibly linear across the history"}, true
	}
	return models.BotFlag{}, false
}

// detectVelocityAnomaly flags a sudden jump in view acceleration: one
// acceleration sample far outside the series' own average.
func detectVelocityAnomaly(h []models.StatsHistoryEntry) (models.BotFlag, bool) {
	if len(h) < 5 {
		return models.BotFlag{}, false
	}

	velocity := make([]float64, 0, len(h)-1)
	for i := 0; i < len(h)-1; i++ {
		velocity = append(velocity, float64(h[i].Views-h[i+1].Views))
	}

	accel := make([]float64, 0, len(velocity)-1)
	for i := 0; i < len(velocity)-1; i++ {
		accel = append(accel, velocity[i]-velocity[i+1])
	}
	if len(accel) == 0 {
		return models.BotFlag{}, false
	}

	maxAbs := 0.0
	for _, a := range accel {
		if math.Abs(a) > maxAbs {
			maxAbs = math.Abs(a)
		}
	}
	avgAccel := mean(accel)

	// When avgAccel is negative the maxAbs comparison is trivially true;
	// the maxAbs > 1000 floor is what actually gates the flag in that case.
	if maxAbs > 5*avgAccel && maxAbs > 1000 {
		return models.BotFlag{Type: models.FlagVelocityAnomaly, Severity: models.SeverityHigh, Confidence: 85,
			Description: "view velocity changed abruptly relative to its own trend"}, true
	}
	return models.BotFlag{}, false
}

func detectRatioAnomaly(h []models.StatsHistoryEntry, t platformThresholds) (models.BotFlag, bool) {
	latest := h[0]
	if latest.Views < 100 {
		return models.BotFlag{}, false
	}

	likeRatio := float64(latest.Likes) / float64(latest.Views)
	commentRatio := float64(latest.Comments) / float64(latest.Views)

	if likeRatio > 0.15 && latest.Views > 1000 {
		return models.BotFlag{Type: models.FlagRatioAnomaly, Severity: models.SeverityHigh, Confidence: 90,
			Description: "like-to-view ratio implausibly high"}, true
	}
	if commentRatio > 0.05 && latest.Views > 1000 {
		return models.BotFlag{Type: models.FlagRatioAnomaly, Severity: models.SeverityMedium, Confidence: 75,
			Description: "comment-to-view ratio implausibly high"}, true
	}
	return models.BotFlag{}, false
}

// detectSuddenStop compares the average per-step growth rate of the most
// recent six samples against the six before them; a fast-growing clip that
// abruptly flatlines is a bot signature (campaign ended, bot farm
// disengaged).
func detectSuddenStop(h []models.StatsHistoryEntry) (models.BotFlag, bool) {
	recent := h[0:6]
	previous := h[6:12]

	recentAvg := avgStepGrowth(recent)
	previousAvg := avgStepGrowth(previous)

	if previousAvg > 500 && recentAvg < 0.1*previousAvg {
		return models.BotFlag{Type: models.FlagSuddenStop, Severity: models.SeverityMedium, Confidence: 70,
			Description: "growth rate collapsed relative to the preceding window"}, true
	}
	return models.BotFlag{}, false
}

func avgStepGrowth(window []models.StatsHistoryEntry) float64 {
	growths := make([]float64, 0, len(window)-1)
	for i := 0; i < len(window)-1; i++ {
		g := growthRate(window[i+1].Views, window[i].Views)
		if !math.IsInf(g, 0) {
			growths = append(growths, g)
		}
	}
	return mean(growths)
}

// detectTimePattern buckets per-step view growth by the hour of day it was
// recorded; a bucket wildly larger than the rest suggests a scheduled bot
// run rather than organic, time-distributed traffic.
func detectTimePattern(h []models.StatsHistoryEntry) (models.BotFlag, bool) {
	buckets := make(map[int]float64)
	for i := 0; i < len(h)-1; i++ {
		delta := float64(h[i].Views - h[i+1].Views)
		hour := h[i].RecordedAt.Hour()
		buckets[hour] += delta
	}
	if len(buckets) == 0 {
		return models.BotFlag{}, false
	}

	values := make([]float64, 0, len(buckets))
	maxBucket := 0.0
	for _, v := range buckets {
		values = append(values, v)
		if v > maxBucket {
			maxBucket = v
		}
	}
	avgBucket := mean(values)

	if maxBucket > 8*avgBucket && maxBucket > 5000 {
		return models.BotFlag{Type: models.FlagTimePattern, Severity: models.SeverityMedium, Confidence: 70,
			Description: "view growth concentrated in a single hour of day"}, true
	}
	return models.BotFlag{}, false
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func meanViewCount(h []models.StatsHistoryEntry) float64 {
	values := make([]float64, 0, len(h))
	for _, e := range h {
		values = append(values, float64(e.Views))
	}
	return mean(values)
}
