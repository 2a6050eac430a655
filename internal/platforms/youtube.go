package platforms

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/clipdeck/statistics-service/internal/apperrors"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/pkg/logger"
)

// YouTubeAdapter fetches statistics through the YouTube Data API v3,
// authenticated with a simple server-side API key (not the OAuth upload
// flow the platform SDK also supports).
type YouTubeAdapter struct {
	apiKey   string
	log      *logger.Logger
	endpoint string // override for tests; empty uses the SDK default
}

// NewYouTubeAdapter builds a YouTubeAdapter. apiKey must be non-empty;
// Fetch returns a CONFIG error otherwise.
func NewYouTubeAdapter(apiKey string, log *logger.Logger) *YouTubeAdapter {
	return &YouTubeAdapter{apiKey: apiKey, log: log}
}

// Fetch implements Adapter. Missing numeric fields in the API response
// (YouTube omits counters that are disabled, e.g. hidden like counts)
// default to 0. YouTube does not expose a share count, so Shares is always
// 0.
func (a *YouTubeAdapter) Fetch(ctx context.Context, videoID string) (*models.PlatformStats, error) {
	if a.apiKey == "" {
		return nil, apperrors.New(apperrors.KindConfig, "youtube.Fetch", fmt.Errorf("YOUTUBE_API_KEY not configured"))
	}

	opts := []option.ClientOption{option.WithAPIKey(a.apiKey)}
	if a.endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.endpoint))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUpstream, "youtube.Fetch", err)
	}

	call := svc.Videos.List([]string{"statistics", "snippet"}).Id(videoID)
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, apperrors.New(apperrors.KindUpstream, "youtube.Fetch", err)
	}

	if len(resp.Items) == 0 {
		return nil, apperrors.New(apperrors.KindNotFound, "youtube.Fetch", fmt.Errorf("video %s not found", videoID))
	}

	item := resp.Items[0]
	stats := &models.PlatformStats{
		Shares: 0,
	}
	if item.Statistics != nil {
		stats.Views = int64(item.Statistics.ViewCount)
		stats.Likes = int64(item.Statistics.LikeCount)
		stats.Comments = int64(item.Statistics.CommentCount)
	}
	if item.Snippet != nil {
		stats.Title = item.Snippet.Title
		stats.Author = item.Snippet.ChannelTitle
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			stats.ThumbnailURL = item.Snippet.Thumbnails.High.Url
		}
	}
	return stats, nil
}
