// Package pipeline drives the category and trending snapshot runs:
// validate, load the catalog, fetch per country, build the artifact,
// upload it and report one Result envelope.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/trending-snapshots/internal/catalog"
	"github.com/ignite/trending-snapshots/internal/config"
	"github.com/ignite/trending-snapshots/internal/metrics"
	"github.com/ignite/trending-snapshots/internal/notify"
	"github.com/ignite/trending-snapshots/internal/pkg/logger"
	"github.com/ignite/trending-snapshots/internal/snapshot"
	"github.com/ignite/trending-snapshots/internal/storage"
	"github.com/ignite/trending-snapshots/internal/youtube"
)

// Rate-limit policies.
const (
	PolicySkip  = "skip"
	PolicyAbort = "abort"
)

// CatalogOpener opens the country-code source.
type CatalogOpener func(cfg config.CatalogConfig) (catalog.Source, func() error, error)

// Runner executes pipelines. It is safe to reuse across runs but runs are
// not meant to overlap; the Guard enforces that across processes.
type Runner struct {
	cfg         *config.Config
	clock       func() time.Time
	newRunID    func() string
	openCatalog CatalogOpener
	clients     ClientFactory
	ledger      storage.Ledger
	guard       Guard
	metrics     *metrics.Recorder
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock overrides time.Now. The run date is read from it once per run.
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) { r.clock = clock }
}

// WithRunID overrides the run id generator.
func WithRunID(fn func() string) Option {
	return func(r *Runner) { r.newRunID = fn }
}

// WithCatalogOpener overrides catalog.Open.
func WithCatalogOpener(fn CatalogOpener) Option {
	return func(r *Runner) { r.openCatalog = fn }
}

// WithClientFactory overrides DefaultClients.
func WithClientFactory(fn ClientFactory) Option {
	return func(r *Runner) { r.clients = fn }
}

// WithLedger records every run in l.
func WithLedger(l storage.Ledger) Option {
	return func(r *Runner) { r.ledger = l }
}

// WithGuard makes runs take a lock first.
func WithGuard(g Guard) Option {
	return func(r *Runner) { r.guard = g }
}

// WithMetrics shares a recorder, e.g. with the /metrics handler.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner returns a Runner with production collaborators unless
// overridden by opts.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:         cfg,
		clock:       time.Now,
		newRunID:    uuid.NewString,
		openCatalog: catalog.Open,
		clients:     DefaultClients,
		ledger:      storage.NopLedger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.NewRecorder()
	}
	return r
}

// Metrics returns the recorder the runner reports to.
func (r *Runner) Metrics() *metrics.Recorder { return r.metrics }

// run is the state of one invocation.
type run struct {
	id         string
	pipeline   string
	date       time.Time // taken once, stamps every row and the key
	log        *logger.Logger
	countries  int
	rows       int64
	incomplete []string
	bucket     string
	key        string
	message    string
}

func (st *run) markIncomplete(country string) {
	for _, c := range st.incomplete {
		if c == country {
			return
		}
	}
	st.incomplete = append(st.incomplete, country)
}

// Run executes one pipeline and always returns an envelope.
func (r *Runner) Run(ctx context.Context, pipeline string) Result {
	started := r.clock().UTC()
	st := &run{
		id:       r.newRunID(),
		pipeline: pipeline,
		date:     started,
	}
	st.log = logger.Default().With("run_id", st.id, "pipeline", pipeline)
	st.log.Info("Run started", "run_date", st.date.Format(snapshot.RowDateLayout))

	err := r.execute(ctx, st)
	res := r.envelope(st, err)
	r.finish(ctx, st, res, started)
	return res
}

func (r *Runner) execute(ctx context.Context, st *run) error {
	var (
		body     func(context.Context, *run, []string, *Clients, string) error
		artifact storage.KeySpec
	)
	switch st.pipeline {
	case config.PipelineCategories:
		body = r.categories
		artifact = storage.KeySpec{Prefix: r.cfg.Storage.CategoryPrefix, Name: r.cfg.Storage.CategoryName, Ext: "csv"}
	case config.PipelineTrending:
		body = r.trending
		artifact = storage.KeySpec{Prefix: r.cfg.Storage.TrendingPrefix, Name: r.cfg.Storage.TrendingName, Ext: "parquet"}
	default:
		return &ConfigError{Reason: fmt.Sprintf("unknown pipeline %q", st.pipeline)}
	}

	if missing := r.cfg.Validate(st.pipeline); len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	policy := r.cfg.Pipeline.RateLimitPolicy
	if policy != PolicySkip && policy != PolicyAbort {
		return &ConfigError{Reason: fmt.Sprintf("unknown rate_limit_policy %q", policy)}
	}
	st.bucket = r.cfg.Storage.Bucket

	key, err := r.buildKey(st, artifact)
	if err != nil {
		return err
	}

	codes, err := r.loadCatalog(ctx)
	if err != nil {
		return err
	}
	st.countries = len(codes)

	if r.guard != nil {
		release, err := r.guard.Acquire(ctx, lockKey(st.pipeline, st.date.Format(snapshot.RowDateLayout)))
		if err != nil {
			return err
		}
		defer release()
	}

	clients, err := r.clients(ctx, r.cfg, st.pipeline)
	if err != nil {
		return err
	}
	clients.API = instrumentedAPI{API: clients.API, rec: r.metrics, pipeline: st.pipeline}

	if err := body(ctx, st, codes, clients, key); err != nil {
		return err
	}
	r.publish(ctx, st, clients.Publisher)
	return nil
}

func (r *Runner) loadCatalog(ctx context.Context) ([]string, error) {
	src, closeFn, err := r.openCatalog(r.cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("opening country catalog: %w", err)
	}
	defer closeFn()

	codes, err := catalog.Load(ctx, src)
	switch {
	case errors.Is(err, catalog.ErrEmptyCatalog), errors.Is(err, catalog.ErrInvalidCode):
		return nil, &ConfigError{Reason: err.Error()}
	case errors.Is(err, fs.ErrNotExist):
		return nil, &ConfigError{Reason: "country code list not found: " + err.Error()}
	case err != nil:
		return nil, fmt.Errorf("loading country catalog: %w", err)
	}
	return codes, nil
}

// countryFailed applies the rate-limit policy to a per-country API failure.
// It returns nil when the run should continue without that country's
// remaining data. Transport failures always abort.
func (r *Runner) countryFailed(st *run, country string, err error) error {
	var apiErr *youtube.APIError
	policyErr := errors.Is(err, youtube.ErrRateLimited) ||
		errors.As(err, &apiErr) ||
		errors.Is(err, youtube.ErrMalformedResponse)
	if !policyErr || r.cfg.Pipeline.RateLimitPolicy == PolicyAbort {
		return fmt.Errorf("country %s: %w", country, err)
	}
	st.log.Warn("Country incomplete, continuing", "country", country, "error", err)
	st.markIncomplete(country)
	return nil
}

func (r *Runner) buildKey(st *run, ks storage.KeySpec) (string, error) {
	kb, err := storage.NewKeyBuilder(r.cfg.Storage.KeyTemplate)
	if err != nil {
		return "", &ConfigError{Reason: err.Error()}
	}
	ks.Pipeline = st.pipeline
	ks.Date = st.date
	key, err := kb.Build(ks)
	if err != nil {
		return "", &ConfigError{Reason: err.Error()}
	}
	return key, nil
}

func (r *Runner) upload(ctx context.Context, st *run, sink Sink, key string, body []byte, contentType string) error {
	if err := sink.Put(ctx, st.bucket, key, body, contentType); err != nil {
		return err
	}
	st.key = key
	r.metrics.Uploaded(st.pipeline, len(body))
	st.log.Info("Snapshot uploaded", "bucket", st.bucket, "key", key, "bytes", len(body), "rows", st.rows)
	return nil
}

// publish is best effort: the artifact is already in the bucket.
func (r *Runner) publish(ctx context.Context, st *run, pub notify.Publisher) {
	if pub == nil {
		return
	}
	err := pub.Publish(ctx, notify.SnapshotEvent{
		RunID:       st.id,
		Pipeline:    st.pipeline,
		Bucket:      st.bucket,
		Key:         st.key,
		RunDate:     st.date.Format(snapshot.RowDateLayout),
		Rows:        st.rows,
		Incomplete:  st.incomplete,
		PublishedAt: r.clock().UTC(),
	})
	if err != nil {
		st.log.Warn("Snapshot notification failed", "error", err)
	}
}

func (r *Runner) envelope(st *run, err error) Result {
	kind := Classify(err)
	body := Body{
		Message:             st.message,
		RunID:               st.id,
		Pipeline:            st.pipeline,
		Bucket:              st.bucket,
		Key:                 st.key,
		Rows:                st.rows,
		Countries:           st.countries,
		IncompleteCountries: append([]string{}, st.incomplete...),
	}
	if err != nil {
		// transport errors quote the request URL, which carries the API key
		body.Message = logger.RedactURLKey(err.Error())
		st.log.Error("Run failed", "kind", kind.String(), "error", err)
	} else if len(st.incomplete) > 0 {
		body.Message = fmt.Sprintf("%s; %d of %d countries incomplete", st.message, len(st.incomplete), st.countries)
	}
	return Result{StatusCode: kind.StatusCode(), Body: body}
}

// finish records the run in the ledger and metrics. Neither can change
// the envelope.
func (r *Runner) finish(ctx context.Context, st *run, res Result, started time.Time) {
	finished := r.clock().UTC()

	rec := storage.RunRecord{
		RunID:      st.id,
		Pipeline:   st.pipeline,
		RunDate:    st.date.Format(snapshot.RowDateLayout),
		Bucket:     st.bucket,
		Key:        st.key,
		Rows:       st.rows,
		Countries:  st.countries,
		Incomplete: st.incomplete,
		StatusCode: res.StatusCode,
		Message:    res.Body.Message,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if err := r.ledger.Record(ctx, rec); err != nil {
		st.log.Warn("Failed to record run in ledger", "error", err)
	}

	r.metrics.RunFinished(st.pipeline, res.StatusCode, st.rows, finished.Sub(started), finished)
	if url := r.cfg.Metrics.PushgatewayURL; url != "" {
		if err := r.metrics.Push(ctx, url, r.cfg.Metrics.Job, st.pipeline); err != nil {
			st.log.Warn("Failed to push metrics", "error", err)
		}
	}

	st.log.Info("Run finished",
		"status", res.StatusCode,
		"rows", st.rows,
		"incomplete", len(st.incomplete),
		"elapsed_ms", finished.Sub(started).Milliseconds())
}
