package platforms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwitterAdapter_Fetch_MapsCounters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"impression_count":900,"favorite_count":30,"conversation_count":4,"retweet_count":2,"quote_count":1}`))
	}))
	defer srv.Close()

	a := NewTwitterAdapter()
	a.endpoint = srv.URL

	stats, err := a.Fetch(context.Background(), "https://twitter.com/user/status/12345")
	require.NoError(t, err)
	assert.Equal(t, int64(900), stats.Views)
	assert.Equal(t, int64(30), stats.Likes)
	assert.Equal(t, int64(4), stats.Comments)
	assert.Equal(t, int64(3), stats.Shares)
}

func TestTwitterAdapter_Fetch_AcceptsXDotComAndNitter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a := NewTwitterAdapter()
	a.endpoint = srv.URL

	_, err := a.Fetch(context.Background(), "https://x.com/user/status/555")
	require.NoError(t, err)

	_, err = a.Fetch(context.Background(), "https://nitter.net/user/status/777")
	require.NoError(t, err)
}

func TestTwitterAdapter_Fetch_RegexMissReturnsError(t *testing.T) {
	a := NewTwitterAdapter()
	_, err := a.Fetch(context.Background(), "https://example.com/not-a-tweet")
	assert.Error(t, err)
}
