package snapshot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ignite/trending-snapshots/internal/youtube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runDate = time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)

func num(s string) *json.Number {
	n := json.Number(s)
	return &n
}

func fullVideo(id string) youtube.Video {
	return youtube.Video{
		ID: id,
		Snippet: youtube.VideoSnippet{
			Title:        "A title",
			PublishedAt:  "2024-04-30T10:00:00Z",
			ChannelID:    "UC123",
			ChannelTitle: "Channel",
			CategoryID:   "10",
			Description:  "desc",
			Tags:         []string{"a", "b"},
			Thumbnails: youtube.Thumbnails{
				Default: &youtube.Thumbnail{URL: "https://i.ytimg.com/vi/" + id + "/default.jpg"},
			},
		},
		Statistics: &youtube.VideoStatistics{
			ViewCount:    num("1000"),
			LikeCount:    num("20"),
			CommentCount: num("3"),
		},
	}
}

func TestFlattenVideo(t *testing.T) {
	rec, err := FlattenVideo(fullVideo("v1"), "US", runDate)
	require.NoError(t, err)

	assert.Equal(t, "v1", rec.VideoID)
	assert.Equal(t, "US", rec.Country)
	assert.Equal(t, "2024-05-01", rec.TrendingDate)
	assert.Equal(t, "a|b", rec.Tags)
	assert.Equal(t, int64(1000), rec.ViewCount)
	assert.Equal(t, int64(20), rec.Likes)
	assert.Equal(t, int64(3), rec.CommentCount)
	assert.Equal(t, "https://i.ytimg.com/vi/v1/default.jpg", rec.ThumbnailLink)
	assert.False(t, rec.CommentsDisabled)
	assert.False(t, rec.RatingsDisabled)
	assert.Len(t, rec.Row(), len(TrendingColumns))
}

func TestFlattenVideoInfersDisabledCounters(t *testing.T) {
	v := fullVideo("v1")
	v.Statistics = &youtube.VideoStatistics{ViewCount: num("10")}

	rec, err := FlattenVideo(v, "FR", runDate)
	require.NoError(t, err)

	assert.True(t, rec.CommentsDisabled)
	assert.True(t, rec.RatingsDisabled)
	assert.Equal(t, int64(0), rec.Likes)
	assert.Equal(t, int64(0), rec.CommentCount)
}

func TestFlattenVideoTags(t *testing.T) {
	v := fullVideo("v1")
	v.Snippet.Tags = nil
	rec, err := FlattenVideo(v, "US", runDate)
	require.NoError(t, err)
	assert.Equal(t, NoTagsPlaceholder, rec.Tags)

	v.Snippet.Tags = []string{}
	rec, err = FlattenVideo(v, "US", runDate)
	require.NoError(t, err)
	assert.Equal(t, "", rec.Tags)
}

func TestFlattenVideoKeepsTextVerbatim(t *testing.T) {
	v := fullVideo("v1")
	v.Snippet.Title = "He said \"hi\"\nthen left,\r\nquietly"

	rec, err := FlattenVideo(v, "US", runDate)
	require.NoError(t, err)
	assert.Equal(t, v.Snippet.Title, rec.Title)
}

func TestFlattenVideoRejects(t *testing.T) {
	t.Run("no statistics", func(t *testing.T) {
		v := fullVideo("v1")
		v.Statistics = nil
		_, err := FlattenVideo(v, "US", runDate)
		assert.ErrorIs(t, err, ErrNoStatistics)
	})

	t.Run("bad counter", func(t *testing.T) {
		v := fullVideo("v1")
		v.Statistics.ViewCount = num("lots")
		_, err := FlattenVideo(v, "US", runDate)
		assert.Error(t, err)
	})
}

func TestFlattenVideos(t *testing.T) {
	noStats := fullVideo("v2")
	noStats.Statistics = nil
	items := []youtube.Video{fullVideo("v1"), noStats, fullVideo("v3")}

	records, dropped := FlattenVideos(items, "US", runDate)

	require.Len(t, records, 2)
	assert.Equal(t, "v1", records[0].VideoID)
	assert.Equal(t, "v3", records[1].VideoID)
	require.Len(t, dropped, 1)
	assert.ErrorIs(t, dropped[0], ErrNoStatistics)
}

func TestFlattenCategories(t *testing.T) {
	items := []youtube.Category{
		{ID: "1", Snippet: youtube.CategorySnippet{Title: "Film & Animation", Assignable: true}},
		{ID: "18", Snippet: youtube.CategorySnippet{Title: "Short \"Movies\"", Assignable: false}},
	}

	records := FlattenCategories(items, "FR", runDate)

	require.Len(t, records, 2)
	assert.Equal(t, []string{"1", "Film & Animation", "true", "FR", "2024-05-01"}, records[0].Row())
	assert.Equal(t, "Short \"Movies\"", records[1].Title)
	assert.Equal(t, "false", records[1].Row()[2])
}
