package botdetect

import "github.com/clipdeck/statistics-service/internal/models"

// spikeThreshold is a (high, medium) pair of growth-rate percentage
// activation points.
type spikeThreshold struct {
	High   float64
	Medium float64
}

// platformThresholds holds every per-platform activation constant the
// detection rules read from.
type platformThresholds struct {
	ViewsSpike    spikeThreshold
	LikesSpike    spikeThreshold
	CommentsSpike spikeThreshold
	EngRatio      spikeThreshold
	MinViews      int64
}

var thresholdTable = map[models.Platform]platformThresholds{
	models.PlatformTikTok: {
		ViewsSpike:    spikeThreshold{High: 800, Medium: 300},
		LikesSpike:    spikeThreshold{High: 400, Medium: 200},
		CommentsSpike: spikeThreshold{High: 500, Medium: 250},
		EngRatio:      spikeThreshold{High: 0.40, Medium: 0.25},
		MinViews:      500,
	},
	models.PlatformInstagram: {
		ViewsSpike:    spikeThreshold{High: 600, Medium: 250},
		LikesSpike:    spikeThreshold{High: 350, Medium: 180},
		CommentsSpike: spikeThreshold{High: 450, Medium: 220},
		EngRatio:      spikeThreshold{High: 0.35, Medium: 0.20},
		MinViews:      300,
	},
	models.PlatformYouTube: {
		ViewsSpike:    spikeThreshold{High: 700, Medium: 280},
		LikesSpike:    spikeThreshold{High: 380, Medium: 190},
		CommentsSpike: spikeThreshold{High: 480, Medium: 240},
		EngRatio:      spikeThreshold{High: 0.38, Medium: 0.22},
		MinViews:      400,
	},
	models.PlatformTwitter: {
		ViewsSpike:    spikeThreshold{High: 700, Medium: 280},
		LikesSpike:    spikeThreshold{High: 380, Medium: 190},
		CommentsSpike: spikeThreshold{High: 480, Medium: 240},
		EngRatio:      spikeThreshold{High: 0.38, Medium: 0.22},
		MinViews:      400,
	},
}

// thresholdsFor returns the platform's table row, falling back to YOUTUBE
// for any platform not in the table.
func thresholdsFor(platform models.Platform) platformThresholds {
	if t, ok := thresholdTable[platform]; ok {
		return t
	}
	return thresholdTable[models.PlatformYouTube]
}
