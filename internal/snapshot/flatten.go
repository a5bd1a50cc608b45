package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/trending-snapshots/internal/youtube"
)

// NoTagsPlaceholder stands in for a snippet without a tags key.
const NoTagsPlaceholder = "[none]"

// ErrNoStatistics marks an item the API returned without a statistics block.
var ErrNoStatistics = errors.New("video has no statistics")

// FlattenCategories maps one country's category items to records.
func FlattenCategories(items []youtube.Category, country string, runDate time.Time) []CategoryRecord {
	date := runDate.Format(RowDateLayout)
	records := make([]CategoryRecord, 0, len(items))
	for _, item := range items {
		records = append(records, CategoryRecord{
			ID:           item.ID,
			Title:        item.Snippet.Title,
			Assignable:   item.Snippet.Assignable,
			Country:      country,
			CategoryDate: date,
		})
	}
	return records
}

// FlattenVideo maps one trending item to a record. Items without a
// statistics block return ErrNoStatistics; unparsable counters return an error.
//
// Text fields are copied verbatim. Quotes, commas and newlines are not
// stripped: RowWriter quotes them and the columnar loader reads them back
// intact, apart from \r\n inside a value becoming \n.
func FlattenVideo(v youtube.Video, country string, runDate time.Time) (VideoRecord, error) {
	if v.Statistics == nil {
		return VideoRecord{}, fmt.Errorf("video %s: %w", v.ID, ErrNoStatistics)
	}
	stats := v.Statistics

	views, err := counter(stats.ViewCount)
	if err != nil {
		return VideoRecord{}, fmt.Errorf("video %s viewCount: %w", v.ID, err)
	}
	likes, err := counter(stats.LikeCount)
	if err != nil {
		return VideoRecord{}, fmt.Errorf("video %s likeCount: %w", v.ID, err)
	}
	comments, err := counter(stats.CommentCount)
	if err != nil {
		return VideoRecord{}, fmt.Errorf("video %s commentCount: %w", v.ID, err)
	}

	tags := v.Snippet.Tags
	if tags == nil {
		tags = []string{NoTagsPlaceholder}
	}

	var thumbnail string
	if v.Snippet.Thumbnails.Default != nil {
		thumbnail = v.Snippet.Thumbnails.Default.URL
	}

	return VideoRecord{
		VideoID:          v.ID,
		Title:            v.Snippet.Title,
		PublishedAt:      v.Snippet.PublishedAt,
		ChannelID:        v.Snippet.ChannelID,
		ChannelTitle:     v.Snippet.ChannelTitle,
		CategoryID:       v.Snippet.CategoryID,
		Country:          country,
		TrendingDate:     runDate.Format(RowDateLayout),
		Tags:             strings.Join(tags, "|"),
		ViewCount:        views,
		Likes:            likes,
		CommentCount:     comments,
		ThumbnailLink:    thumbnail,
		CommentsDisabled: stats.CommentCount == nil,
		RatingsDisabled:  stats.LikeCount == nil,
		Description:      v.Snippet.Description,
	}, nil
}

// FlattenVideos maps a country's items, skipping those FlattenVideo rejects.
// The rejected items' errors are returned for logging.
func FlattenVideos(items []youtube.Video, country string, runDate time.Time) ([]VideoRecord, []error) {
	records := make([]VideoRecord, 0, len(items))
	var dropped []error
	for _, item := range items {
		rec, err := FlattenVideo(item, country, runDate)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		records = append(records, rec)
	}
	return records, dropped
}

func counter(n *json.Number) (int64, error) {
	if n == nil || *n == "" {
		return 0, nil
	}
	return n.Int64()
}
