package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/clipdeck/statistics-service/internal/apperrors"
	"github.com/clipdeck/statistics-service/internal/models"
)

var tweetIDPattern = regexp.MustCompile(`(?:twitter\.com|x\.com|nitter\.[^/]+)/[^/]+/status/(\d+)`)

const syndicationEndpoint = "https://cdn.syndication.twimg.com/tweet-result"

type syndicationResponse struct {
	Favorites        int64 `json:"favorite_count"`
	ConversationCount int64 `json:"conversation_count"`
	RetweetCount     int64 `json:"retweet_count"`
	QuoteCount       int64 `json:"quote_count"`
	Views            struct {
		Count string `json:"count"`
	} `json:"views"`
	ImpressionCount int64 `json:"impression_count"`
}

// TwitterAdapter fetches counters through Twitter's public syndication
// endpoint, the same unauthenticated route used for embedded tweets.
type TwitterAdapter struct {
	httpClient *http.Client
	endpoint   string
}

// NewTwitterAdapter builds a TwitterAdapter.
func NewTwitterAdapter() *TwitterAdapter {
	return &TwitterAdapter{httpClient: &http.Client{Timeout: 8 * time.Second}, endpoint: syndicationEndpoint}
}

// Fetch implements Adapter. videoID is a tweet URL (twitter.com, x.com, or
// a nitter mirror); when the tweet id regex fails to match, Fetch returns
// a PARSE error.
func (a *TwitterAdapter) Fetch(ctx context.Context, videoID string) (*models.PlatformStats, error) {
	matches := tweetIDPattern.FindStringSubmatch(videoID)
	if matches == nil {
		return nil, apperrors.New(apperrors.KindParse, "twitter.Fetch", fmt.Errorf("could not extract tweet id from %q", videoID))
	}
	tweetID := matches[1]

	reqURL := fmt.Sprintf("%s?id=%s&token=x", a.endpoint, tweetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("twitter: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter: syndication returned status %d", resp.StatusCode)
	}

	var parsed syndicationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("twitter: decode response: %w", err)
	}

	return &models.PlatformStats{
		Views:    parsed.ImpressionCount,
		Likes:    parsed.Favorites,
		Comments: parsed.ConversationCount,
		Shares:   parsed.RetweetCount + parsed.QuoteCount,
	}, nil
}
