package youtube

import (
	"context"

	"github.com/ignite/trending-snapshots/internal/pkg/logger"
)

// PageFetcher is the part of Client the pager needs
type PageFetcher interface {
	FetchTrendingPage(ctx context.Context, country, pageToken string) (*VideoPage, error)
}

// PageStats describes how paging ended for one country.
type PageStats struct {
	Pages     int
	Items     int
	Truncated bool // stopped by the page cap or a repeated token
}

// Pager walks the trending listing of one country until the API stops
// returning a continuation token.
type Pager struct {
	fetcher  PageFetcher
	maxPages int
}

// NewPager creates a pager. maxPages <= 0 means no cap.
func NewPager(fetcher PageFetcher, maxPages int) *Pager {
	return &Pager{fetcher: fetcher, maxPages: maxPages}
}

// Collect fetches every page for country and returns all items in API order.
// On error the items gathered from earlier pages are returned alongside it.
func (p *Pager) Collect(ctx context.Context, country string) ([]Video, PageStats, error) {
	var (
		videos []Video
		stats  PageStats
		token  string
		seen   = map[string]bool{}
	)

	for {
		if p.maxPages > 0 && stats.Pages >= p.maxPages {
			stats.Truncated = true
			logger.Warn("page cap reached", "country", country, "pages", stats.Pages)
			return videos, stats, nil
		}

		page, err := p.fetcher.FetchTrendingPage(ctx, country, token)
		if err != nil {
			return videos, stats, err
		}
		stats.Pages++
		stats.Items += len(page.Items)
		videos = append(videos, page.Items...)

		next := page.NextPageToken
		if next == "" {
			return videos, stats, nil
		}
		if seen[next] {
			stats.Truncated = true
			logger.Warn("page token repeated, stopping", "country", country, "page_token", next)
			return videos, stats, nil
		}
		seen[next] = true
		token = next
	}
}
