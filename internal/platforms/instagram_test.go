package platforms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipdeck/statistics-service/pkg/logger"
)

func TestInstagramAdapter_Fetch_MapsCounters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"view_count":    500,
			"like_count":    40,
			"comment_count": 10,
		})
	}))
	defer srv.Close()

	a := NewInstagramAdapter(logger.New("info", "test"))
	a.endpoint = srv.URL

	stats, err := a.Fetch(context.Background(), "https://instagram.com/reel/abc")
	require.NoError(t, err)
	assert.Equal(t, int64(500), stats.Views)
	assert.Equal(t, int64(40), stats.Likes)
	assert.Equal(t, int64(10), stats.Comments)
	assert.Equal(t, int64(0), stats.Shares)
}

func TestInstagramAdapter_Fetch_SolvesChallengeByEchoing(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(map[string]any{
				"error": "COMPUTE_REQUIRED",
				"challenge": map[string]string{
					"timestamp":       "123",
					"expectedCompute": "abc",
				},
			})
			return
		}
		assert.Equal(t, "abc", r.Header.Get("X-Compute"))
		assert.Equal(t, "123", r.Header.Get("X-Timestamp"))
		json.NewEncoder(w).Encode(map[string]any{"view_count": 10, "like_count": 1, "comment_count": 0})
	}))
	defer srv.Close()

	a := NewInstagramAdapter(logger.New("info", "test"))
	a.endpoint = srv.URL

	stats, err := a.Fetch(context.Background(), "https://instagram.com/reel/abc")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(10), stats.Views)
}

func TestInstagramAdapter_Fetch_ErrorReturnsZerosNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewInstagramAdapter(logger.New("info", "test"))
	a.endpoint = srv.URL

	stats, err := a.Fetch(context.Background(), "https://instagram.com/reel/abc")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Views)
}
