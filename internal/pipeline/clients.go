package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignite/trending-snapshots/internal/config"
	"github.com/ignite/trending-snapshots/internal/metrics"
	"github.com/ignite/trending-snapshots/internal/notify"
	"github.com/ignite/trending-snapshots/internal/storage"
	"github.com/ignite/trending-snapshots/internal/youtube"
)

// API is the video-platform surface both pipelines use.
type API interface {
	FetchCategories(ctx context.Context, country string) (*youtube.CategoryPage, error)
	FetchTrendingPage(ctx context.Context, country, pageToken string) (*youtube.VideoPage, error)
}

// Sink receives the finished artifact.
type Sink interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// Clients are the network collaborators of one run. Publisher may be nil.
type Clients struct {
	API       API
	Sink      Sink
	Publisher notify.Publisher
}

// ClientFactory builds the clients once configuration has been validated.
type ClientFactory func(ctx context.Context, cfg *config.Config, pipeline string) (*Clients, error)

// DefaultClients builds the real API client, S3 sink and optional SQS
// publisher. Trending uploads with the static key pair; categories use the
// default credential chain.
func DefaultClients(ctx context.Context, cfg *config.Config, pipeline string) (*Clients, error) {
	static := pipeline == config.PipelineTrending

	sink, err := storage.NewS3Sink(ctx, cfg.Storage, static)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot sink: %w", err)
	}

	clients := &Clients{
		API:  youtube.NewClient(cfg.YouTube),
		Sink: sink,
	}

	if cfg.Notify.SQSQueueURL != "" {
		awsCfg, err := storage.LoadAWSConfig(ctx, cfg.Storage, static && cfg.Storage.HasStaticCredentials())
		if err != nil {
			return nil, fmt.Errorf("creating notification publisher: %w", err)
		}
		clients.Publisher = notify.NewSQSPublisherFromConfig(awsCfg, cfg.Notify.SQSQueueURL)
	}
	return clients, nil
}

// instrumentedAPI counts every API call by outcome.
type instrumentedAPI struct {
	API
	rec      *metrics.Recorder
	pipeline string
}

func (a instrumentedAPI) FetchCategories(ctx context.Context, country string) (*youtube.CategoryPage, error) {
	page, err := a.API.FetchCategories(ctx, country)
	a.rec.APICall(a.pipeline, "videoCategories", outcome(err))
	return page, err
}

func (a instrumentedAPI) FetchTrendingPage(ctx context.Context, country, pageToken string) (*youtube.VideoPage, error) {
	page, err := a.API.FetchTrendingPage(ctx, country, pageToken)
	a.rec.APICall(a.pipeline, "videos", outcome(err))
	return page, err
}

func outcome(err error) string {
	var apiErr *youtube.APIError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, youtube.ErrRateLimited):
		return metrics.OutcomeRateLimited
	case errors.As(err, &apiErr), errors.Is(err, youtube.ErrMalformedResponse):
		return metrics.OutcomeAPIError
	default:
		return metrics.OutcomeError
	}
}
