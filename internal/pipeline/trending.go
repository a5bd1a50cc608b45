package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ignite/trending-snapshots/internal/columnar"
	"github.com/ignite/trending-snapshots/internal/snapshot"
	"github.com/ignite/trending-snapshots/internal/storage"
	"github.com/ignite/trending-snapshots/internal/youtube"
)

// trending pages through each country's trending chart, stages the rows
// per country and exports one parquet table for the whole run.
func (r *Runner) trending(ctx context.Context, st *run, codes []string, clients *Clients, key string) error {
	table := columnar.NewTable(nil)
	defer table.Release()

	stager := columnar.NewStager(r.cfg.Pipeline.ScratchDir)
	pager := youtube.NewPager(clients.API, r.cfg.YouTube.MaxPages)

	for _, country := range codes {
		videos, stats, err := pager.Collect(ctx, country)
		complete := !stats.Truncated
		if err != nil {
			if err := r.countryFailed(st, country, err); err != nil {
				return err
			}
			complete = false
		}
		if stats.Truncated {
			st.markIncomplete(country)
		}

		records, dropped := snapshot.FlattenVideos(videos, country, st.date)
		for _, d := range dropped {
			st.log.Warn("Trending item dropped", "country", country, "error", d)
		}

		err = stager.Stage(country, records, func(rd io.Reader) error {
			_, err := table.LoadCSV(rd)
			return err
		})
		if err != nil {
			return fmt.Errorf("staging %s: %w", country, err)
		}

		st.log.Debug("Country trending collected",
			"country", country,
			"pages", stats.Pages,
			"items", stats.Items,
			"rows", len(records),
			"dropped", len(dropped))
		r.metrics.Country(st.pipeline, complete)
	}

	var buf bytes.Buffer
	if err := table.WriteParquet(&buf); err != nil {
		return err
	}
	st.rows = table.NumRows()

	if err := r.upload(ctx, st, clients.Sink, key, buf.Bytes(), storage.ContentTypeParquet); err != nil {
		return err
	}
	st.message = "Trending snapshot uploaded"
	return nil
}
