package botdetect

import "github.com/clipdeck/statistics-service/internal/models"

// PlatformThresholdView is the exported, JSON-friendly projection of a
// platform's threshold row, for the read-only introspection endpoint.
type PlatformThresholdView struct {
	Platform      string  `json:"platform"`
	ViewsHigh     float64 `json:"viewsSpikeHigh"`
	ViewsMedium   float64 `json:"viewsSpikeMedium"`
	LikesHigh     float64 `json:"likesSpikeHigh"`
	LikesMedium   float64 `json:"likesSpikeMedium"`
	CommentsHigh  float64 `json:"commentsSpikeHigh"`
	CommentsMed   float64 `json:"commentsSpikeMedium"`
	EngRatioHigh  float64 `json:"engagementRatioHigh"`
	EngRatioMed   float64 `json:"engagementRatioMedium"`
	MinViews      int64   `json:"minViews"`
}

// Thresholds returns every platform's threshold row for introspection.
func Thresholds() []PlatformThresholdView {
	platforms := []models.Platform{models.PlatformTikTok, models.PlatformInstagram, models.PlatformYouTube, models.PlatformTwitter}
	views := make([]PlatformThresholdView, 0, len(platforms))
	for _, p := range platforms {
		t := thresholdsFor(p)
		views = append(views, PlatformThresholdView{
			Platform:     string(p),
			ViewsHigh:    t.ViewsSpike.High,
			ViewsMedium:  t.ViewsSpike.Medium,
			LikesHigh:    t.LikesSpike.High,
			LikesMedium:  t.LikesSpike.Medium,
			CommentsHigh: t.CommentsSpike.High,
			CommentsMed:  t.CommentsSpike.Medium,
			EngRatioHigh: t.EngRatio.High,
			EngRatioMed:  t.EngRatio.Medium,
			MinViews:     t.MinViews,
		})
	}
	return views
}
