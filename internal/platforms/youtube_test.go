package platforms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipdeck/statistics-service/pkg/logger"
)

func TestYouTubeAdapter_Fetch_MapsCounters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"statistics":{"viewCount":"200","likeCount":"10","commentCount":"3"},"snippet":{"title":"clip","channelTitle":"creator"}}]}`))
	}))
	defer srv.Close()

	a := NewYouTubeAdapter("test-key", logger.New("info", "test"))
	a.endpoint = srv.URL

	stats, err := a.Fetch(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(200), stats.Views)
	assert.Equal(t, int64(10), stats.Likes)
	assert.Equal(t, int64(3), stats.Comments)
	assert.Equal(t, int64(0), stats.Shares)
}

func TestYouTubeAdapter_Fetch_EmptyItemsIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	a := NewYouTubeAdapter("test-key", logger.New("info", "test"))
	a.endpoint = srv.URL

	_, err := a.Fetch(context.Background(), "missing")
	assert.Error(t, err)
}

func TestYouTubeAdapter_Fetch_MissingAPIKeyIsConfigError(t *testing.T) {
	a := NewYouTubeAdapter("", logger.New("info", "test"))
	_, err := a.Fetch(context.Background(), "abc")
	assert.Error(t, err)
}
