package youtube

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetcher serves pages in order and records the tokens it was asked for.
type scriptedFetcher struct {
	pages  []*VideoPage
	errAt  int
	err    error
	tokens []string
}

func (f *scriptedFetcher) FetchTrendingPage(ctx context.Context, country, pageToken string) (*VideoPage, error) {
	i := len(f.tokens)
	f.tokens = append(f.tokens, pageToken)
	if f.err != nil && i == f.errAt {
		return nil, f.err
	}
	if i >= len(f.pages) {
		return &VideoPage{}, nil
	}
	return f.pages[i], nil
}

func pageOf(n int, prefix, next string) *VideoPage {
	p := &VideoPage{NextPageToken: next}
	for i := 0; i < n; i++ {
		p.Items = append(p.Items, Video{ID: fmt.Sprintf("%s-%d", prefix, i), Statistics: &VideoStatistics{}})
	}
	return p
}

func TestCollectFollowsTokensToExhaustion(t *testing.T) {
	f := &scriptedFetcher{pages: []*VideoPage{
		pageOf(50, "p1", "T2"),
		pageOf(50, "p2", "T3"),
		pageOf(50, "p3", ""),
	}}

	videos, stats, err := NewPager(f, 20).Collect(context.Background(), "US")
	require.NoError(t, err)

	assert.Len(t, videos, 150)
	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, 150, stats.Items)
	assert.False(t, stats.Truncated)
	assert.Equal(t, []string{"", "T2", "T3"}, f.tokens)
	assert.Equal(t, "p1-0", videos[0].ID)
	assert.Equal(t, "p3-49", videos[149].ID)
}

func TestCollectStopsAtPageCap(t *testing.T) {
	f := &scriptedFetcher{pages: []*VideoPage{
		pageOf(2, "p1", "T2"),
		pageOf(2, "p2", "T3"),
		pageOf(2, "p3", "T4"),
	}}

	videos, stats, err := NewPager(f, 2).Collect(context.Background(), "US")
	require.NoError(t, err)

	assert.Len(t, videos, 4)
	assert.Equal(t, 2, stats.Pages)
	assert.True(t, stats.Truncated)
}

func TestCollectStopsOnRepeatedToken(t *testing.T) {
	f := &scriptedFetcher{pages: []*VideoPage{
		pageOf(1, "p1", "SAME"),
		pageOf(1, "p2", "SAME"),
		pageOf(1, "p3", "SAME"),
	}}

	videos, stats, err := NewPager(f, 0).Collect(context.Background(), "US")
	require.NoError(t, err)

	assert.Len(t, videos, 2)
	assert.True(t, stats.Truncated)
}

func TestCollectReturnsPartialItemsOnError(t *testing.T) {
	f := &scriptedFetcher{
		pages: []*VideoPage{pageOf(3, "p1", "T2"), pageOf(3, "p2", "")},
		errAt: 1,
		err:   fmt.Errorf("page 2: %w", ErrRateLimited),
	}

	videos, stats, err := NewPager(f, 20).Collect(context.Background(), "FR")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Len(t, videos, 3)
	assert.Equal(t, 1, stats.Pages)
}
