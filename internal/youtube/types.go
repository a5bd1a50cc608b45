package youtube

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRateLimited is returned (wrapped) when the API answers 429.
var ErrRateLimited = errors.New("rate limited by video API")

// ErrMalformedResponse is returned (wrapped) when a 2xx body is not valid JSON.
var ErrMalformedResponse = errors.New("malformed video API response")

// APIError is a non-2xx, non-429 answer from the API. Reason and Message
// come from the API's error object when the body carries one.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("video API error (status %d, %s): %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("video API error (status %d): %s", e.StatusCode, e.Message)
}

// errorEnvelope mirrors the API's error body:
// {"error": {"code": 403, "message": "...", "errors": [{"reason": "quotaExceeded"}]}}
type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// CategoryPage is one videoCategories response.
type CategoryPage struct {
	Items []Category `json:"items"`
}

// Category is one category taxonomy item.
type Category struct {
	ID      string          `json:"id"`
	Snippet CategorySnippet `json:"snippet"`
}

// CategorySnippet holds the category's descriptive fields.
type CategorySnippet struct {
	Title      string `json:"title"`
	Assignable bool   `json:"assignable"`
	ChannelID  string `json:"channelId"`
}

// VideoPage is one page of the trending (chart=mostPopular) listing.
type VideoPage struct {
	Items         []Video `json:"items"`
	NextPageToken string  `json:"nextPageToken"`
	PageInfo      struct {
		TotalResults   int `json:"totalResults"`
		ResultsPerPage int `json:"resultsPerPage"`
	} `json:"pageInfo"`
}

// Video is one trending item. Statistics is a pointer because its absence
// is meaningful: items without it are not flattened.
type Video struct {
	ID         string           `json:"id"`
	Snippet    VideoSnippet     `json:"snippet"`
	Statistics *VideoStatistics `json:"statistics"`
}

// VideoSnippet holds the descriptive fields of a video.
type VideoSnippet struct {
	Title        string     `json:"title"`
	PublishedAt  string     `json:"publishedAt"`
	ChannelID    string     `json:"channelId"`
	ChannelTitle string     `json:"channelTitle"`
	CategoryID   string     `json:"categoryId"`
	Description  string     `json:"description"`
	Tags         []string   `json:"tags"`
	Thumbnails   Thumbnails `json:"thumbnails"`
}

// Thumbnails keeps only the rendition the snapshot records.
type Thumbnails struct {
	Default *Thumbnail `json:"default"`
}

// Thumbnail is one thumbnail rendition.
type Thumbnail struct {
	URL string `json:"url"`
}

// VideoStatistics counters arrive as JSON strings ("12345"). A nil field
// means the API omitted it, which is how disabled likes/comments show up.
type VideoStatistics struct {
	ViewCount    *json.Number `json:"viewCount"`
	LikeCount    *json.Number `json:"likeCount"`
	CommentCount *json.Number `json:"commentCount"`
}
