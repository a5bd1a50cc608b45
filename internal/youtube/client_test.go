package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ignite/trending-snapshots/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		baseURL:    server.URL,
		apiKey:     "test-api-key",
		maxResults: 50,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func TestNewClient(t *testing.T) {
	cfg := config.YouTubeConfig{
		APIKey:         "test-key",
		BaseURL:        "https://www.googleapis.com/youtube/v3/",
		TimeoutSeconds: 30,
		MaxResults:     500,
	}

	client := NewClient(cfg)

	assert.NotNil(t, client)
	assert.Equal(t, "test-key", client.apiKey)
	assert.Equal(t, "https://www.googleapis.com/youtube/v3", client.baseURL)
	assert.Equal(t, 50, client.maxResults)
}

func TestFetchCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videoCategories", r.URL.Path)
		assert.Equal(t, "snippet", r.URL.Query().Get("part"))
		assert.Equal(t, "FR", r.URL.Query().Get("regionCode"))
		assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":"1","snippet":{"title":"Film & Animation","assignable":true}},
			{"id":"18","snippet":{"title":"Short Movies","assignable":false}}
		]}`))
	}))
	defer server.Close()

	page, err := newTestClient(server).FetchCategories(context.Background(), "FR")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	assert.Equal(t, "1", page.Items[0].ID)
	assert.Equal(t, "Film & Animation", page.Items[0].Snippet.Title)
	assert.True(t, page.Items[0].Snippet.Assignable)
	assert.False(t, page.Items[1].Snippet.Assignable)
}

func TestFetchTrendingPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "id,statistics,snippet", q.Get("part"))
		assert.Equal(t, "mostPopular", q.Get("chart"))
		assert.Equal(t, "US", q.Get("regionCode"))
		assert.Equal(t, "50", q.Get("maxResults"))
		assert.Equal(t, "CDIQAA", q.Get("pageToken"))

		w.Write([]byte(`{
			"nextPageToken": "CGQQAA",
			"items": [{
				"id": "abc123",
				"snippet": {"title": "t", "tags": ["a", "b"], "thumbnails": {"default": {"url": "https://i.ytimg.com/vi/abc123/default.jpg"}}},
				"statistics": {"viewCount": "10", "likeCount": "3"}
			}]
		}`))
	}))
	defer server.Close()

	page, err := newTestClient(server).FetchTrendingPage(context.Background(), "US", "CDIQAA")
	require.NoError(t, err)

	assert.Equal(t, "CGQQAA", page.NextPageToken)
	require.Len(t, page.Items, 1)
	v := page.Items[0]
	assert.Equal(t, "abc123", v.ID)
	assert.Equal(t, []string{"a", "b"}, v.Snippet.Tags)
	require.NotNil(t, v.Snippet.Thumbnails.Default)
	require.NotNil(t, v.Statistics)
	require.NotNil(t, v.Statistics.ViewCount)
	assert.Equal(t, "10", v.Statistics.ViewCount.String())
	assert.Nil(t, v.Statistics.CommentCount)
}

func TestFetchTrendingPageOmitsEmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["pageToken"]
		assert.False(t, present)
		w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	page, err := newTestClient(server).FetchTrendingPage(context.Background(), "US", "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextPageToken)
}

func TestRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.FetchCategories(context.Background(), "US")
	assert.ErrorIs(t, err, ErrRateLimited)

	_, err = client.FetchTrendingPage(context.Background(), "US", "")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"quota exhausted","errors":[{"reason":"quotaExceeded"}]}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchTrendingPage(context.Background(), "US", "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "quotaExceeded", apiErr.Reason)
	assert.Equal(t, "quota exhausted", apiErr.Message)
	assert.False(t, errors.Is(err, ErrRateLimited))
}

func TestAPIErrorWithoutJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchCategories(context.Background(), "US")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "<html>bad gateway</html>", apiErr.Message)
}

func TestMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [`))
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchTrendingPage(context.Background(), "US", "")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
