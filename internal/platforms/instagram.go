package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/pkg/logger"
)

const boostfluenceEndpoint = "https://api.boostfluence.com/reels/stats"

type boostfluenceRequest struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type boostfluenceChallenge struct {
	Timestamp       string `json:"timestamp"`
	ExpectedCompute string `json:"expectedCompute"`
}

type boostfluenceResponse struct {
	Error       string                  `json:"error,omitempty"`
	Challenge   *boostfluenceChallenge  `json:"challenge,omitempty"`
	ViewCount   int64                   `json:"view_count"`
	LikeCount   int64                   `json:"like_count"`
	CommentCount int64                  `json:"comment_count"`
}

// InstagramAdapter fetches Reels counters through a third-party mirror that
// occasionally interposes a "compute challenge" before answering.
//
// The challenge is solved by echoing expectedCompute verbatim — no actual
// computation is performed. If the upstream ever requires a real
// computation this adapter will silently stop working; see SPEC_FULL.md.
type InstagramAdapter struct {
	httpClient *http.Client
	log        *logger.Logger
	endpoint   string
}

// NewInstagramAdapter builds an InstagramAdapter.
func NewInstagramAdapter(log *logger.Logger) *InstagramAdapter {
	return &InstagramAdapter{httpClient: &http.Client{Timeout: 10 * time.Second}, log: log, endpoint: boostfluenceEndpoint}
}

// Fetch implements Adapter. Per platform policy, any error (transport,
// challenge mishandled, malformed body) returns an all-zeros tuple rather
// than propagating, so batch callers proceed. Shares is always 0; the
// upstream does not expose a share count for Reels.
func (a *InstagramAdapter) Fetch(ctx context.Context, videoID string) (*models.PlatformStats, error) {
	body := boostfluenceRequest{URL: videoID, Type: "reels"}
	parsed, err := a.post(ctx, body, nil)
	if err != nil {
		a.log.Warn("instagram fetch failed, returning zeros", "videoId", videoID, "error", err)
		return &models.PlatformStats{}, nil
	}

	if parsed.Error == "COMPUTE_REQUIRED" && parsed.Challenge != nil {
		headers := map[string]string{
			"X-Compute":   parsed.Challenge.ExpectedCompute,
			"X-Timestamp": parsed.Challenge.Timestamp,
		}
		parsed, err = a.post(ctx, body, headers)
		if err != nil {
			a.log.Warn("instagram challenge retry failed, returning zeros", "videoId", videoID, "error", err)
			return &models.PlatformStats{}, nil
		}
	}

	return &models.PlatformStats{
		Views:    parsed.ViewCount,
		Likes:    parsed.LikeCount,
		Comments: parsed.CommentCount,
		Shares:   0,
	}, nil
}

func (a *InstagramAdapter) post(ctx context.Context, body boostfluenceRequest, extraHeaders map[string]string) (*boostfluenceResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://www.instagram.com/")
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("boostfluence returned status %d", resp.StatusCode)
	}

	var parsed boostfluenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}
