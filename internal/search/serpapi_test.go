package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ppiankov/sportcheck/internal/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Team A championship 2023-06-01", r.URL.Query().Get("q"))
		assert.Equal(t, "serp-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "google", r.URL.Query().Get("engine"))
		assert.Equal(t, "5", r.URL.Query().Get("num"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"organic_results": [
				{"position": 1, "title": "Team A lifts trophy", "link": "https://news.example/a", "snippet": "Team A won."},
				{"position": 2, "link": "https://news.example/b"}
			],
			"related_searches": [{"query": "team a 2023", "serpapi_link": "https://serpapi.com/search.json?q=team+a+2023"}]
		}`))
	}))
	defer srv.Close()

	c := NewClient("serp-key", WithBaseURL(srv.URL))
	resp, err := c.Search(context.Background(), "Team A championship 2023-06-01", 5)
	require.NoError(t, err)
	require.Len(t, resp.OrganicResults, 2)
	require.NotNil(t, resp.OrganicResults[0].Title)
	assert.Equal(t, "Team A lifts trophy", *resp.OrganicResults[0].Title)
	assert.Nil(t, resp.OrganicResults[1].Title)
	assert.Equal(t, "https://serpapi.com/search.json?q=team+a+2023", resp.RelatedSearches[0].SerpAPILink)
}

func TestClient_SearchEngineOption(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bing", r.URL.Query().Get("engine"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL), WithEngine("bing"), WithHTTPClient(srv.Client()))
	_, err := c.Search(context.Background(), "q", 3)
	require.NoError(t, err)
}

func TestClient_FollowAddsKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "team a 2023", r.URL.Query().Get("q"))
		assert.Equal(t, "serp-key", r.URL.Query().Get("api_key"))
		_ = json.NewEncoder(w).Encode(Response{OrganicResults: []OrganicResult{{Link: "https://news.example/c"}}})
	}))
	defer srv.Close()

	c := NewClient("serp-key")
	resp, err := c.Follow(context.Background(), srv.URL+"/search.json?q=team+a+2023")
	require.NoError(t, err)
	require.Len(t, resp.OrganicResults, 1)
}

func TestClient_StatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"unauthorized", http.StatusUnauthorized, false},
		{"rate limited", http.StatusTooManyRequests, true},
		{"unavailable", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": "nope"}`))
			}))
			defer srv.Close()

			_, err := NewClient("k", WithBaseURL(srv.URL)).Search(context.Background(), "q", 5)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unexpected status")
			assert.Equal(t, tt.transient, resilience.IsTransient(err))
		})
	}
}

func TestClient_BadJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).Search(context.Background(), "q", 5)
	assert.Error(t, err)
}
