package platforms

import (
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/pkg/logger"
)

// NewDefaultRegistry builds the production Registry with one adapter per
// supported platform.
func NewDefaultRegistry(youtubeAPIKey string, log *logger.Logger) *Registry {
	r := NewRegistry()
	r.Register(models.PlatformYouTube, NewYouTubeAdapter(youtubeAPIKey, log))
	r.Register(models.PlatformTikTok, NewTikTokAdapter())
	r.Register(models.PlatformInstagram, NewInstagramAdapter(log))
	r.Register(models.PlatformTwitter, NewTwitterAdapter())
	return r
}
