package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clipdeck/statistics-service/internal/apperrors"
	"github.com/clipdeck/statistics-service/internal/models"
)

const tikwmEndpoint = "https://www.tikwm.com/api/"

type tikwmResponse struct {
	Data *struct {
		PlayCount    int64 `json:"play_count"`
		DiggCount    int64 `json:"digg_count"`
		CommentCount int64 `json:"comment_count"`
		ShareCount   int64 `json:"share_count"`
	} `json:"data"`
}

// TikTokAdapter fetches counters through the tikwm.com public mirror.
type TikTokAdapter struct {
	httpClient *http.Client
	endpoint   string
}

// NewTikTokAdapter builds a TikTokAdapter with a bounded request timeout.
func NewTikTokAdapter() *TikTokAdapter {
	return &TikTokAdapter{httpClient: &http.Client{Timeout: 8 * time.Second}, endpoint: tikwmEndpoint}
}

// Fetch implements Adapter. videoID may be a bare id or a full tiktok.com
// URL; bare ids are synthesized into a canonical watch URL before the
// upstream call. A response with no "data" field is treated as a
// not-found soft failure and returns an all-zeros tuple rather than an
// error, per platform policy.
func (a *TikTokAdapter) Fetch(ctx context.Context, videoID string) (*models.PlatformStats, error) {
	target := videoID
	if !strings.Contains(target, "tiktok.com") {
		target = fmt.Sprintf("https://www.tiktok.com/@tiktok/video/%s", videoID)
	}

	reqURL := a.endpoint + "?url=" + url.QueryEscape(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUpstream, "tiktok.Fetch", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUpstream, "tiktok.Fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.KindUpstream, "tiktok.Fetch", fmt.Errorf("tikwm returned status %d", resp.StatusCode))
	}

	var parsed tikwmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.New(apperrors.KindParse, "tiktok.Fetch", err)
	}

	if parsed.Data == nil {
		return &models.PlatformStats{}, nil
	}

	return &models.PlatformStats{
		Views:    parsed.Data.PlayCount,
		Likes:    parsed.Data.DiggCount,
		Comments: parsed.Data.CommentCount,
		Shares:   parsed.Data.ShareCount,
	}, nil
}
