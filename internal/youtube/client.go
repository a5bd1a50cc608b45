package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ignite/trending-snapshots/internal/config"
	"github.com/ignite/trending-snapshots/internal/pkg/httpretry"
)

// Client is a read-only client for the video platform's Data API
type Client struct {
	baseURL    string
	apiKey     string
	maxResults int
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new video API client
func NewClient(cfg config.YouTubeConfig) *Client {
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 50
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxResults: maxResults,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, cfg.MaxRetries),
	}
}

// doRequest performs a GET and returns the body of a 2xx answer.
// 429 maps to ErrRateLimited, any other non-2xx to *APIError.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("key", c.apiKey)
	fullURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s region %s: %w", path, params.Get("regionCode"), ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	return body, nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Message = env.Error.Message
		if len(env.Error.Errors) > 0 {
			apiErr.Reason = env.Error.Errors[0].Reason
		}
		return apiErr
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	apiErr.Message = msg
	return apiErr
}

// FetchCategories fetches the category taxonomy for one region
func (c *Client) FetchCategories(ctx context.Context, country string) (*CategoryPage, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("regionCode", country)

	body, err := c.doRequest(ctx, "/videoCategories", params)
	if err != nil {
		return nil, err
	}

	var page CategoryPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parsing categories for %s: %w: %v", country, ErrMalformedResponse, err)
	}
	return &page, nil
}

// FetchTrendingPage fetches one page of the most-popular chart for one
// region. An empty pageToken requests the first page.
func (c *Client) FetchTrendingPage(ctx context.Context, country, pageToken string) (*VideoPage, error) {
	params := url.Values{}
	params.Set("part", "id,statistics,snippet")
	params.Set("chart", "mostPopular")
	params.Set("regionCode", country)
	params.Set("maxResults", strconv.Itoa(c.maxResults))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	body, err := c.doRequest(ctx, "/videos", params)
	if err != nil {
		return nil, err
	}

	var page VideoPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parsing trending page for %s: %w: %v", country, ErrMalformedResponse, err)
	}
	return &page, nil
}
