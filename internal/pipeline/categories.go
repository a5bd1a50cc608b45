package pipeline

import (
	"bytes"
	"context"

	"github.com/ignite/trending-snapshots/internal/snapshot"
	"github.com/ignite/trending-snapshots/internal/storage"
)

// categories fetches each country's category taxonomy into one CSV.
func (r *Runner) categories(ctx context.Context, st *run, codes []string, clients *Clients, key string) error {
	var buf bytes.Buffer
	rw, err := snapshot.NewRowWriter(&buf, snapshot.CategoryColumns)
	if err != nil {
		return err
	}

	for _, country := range codes {
		page, err := clients.API.FetchCategories(ctx, country)
		if err != nil {
			if err := r.countryFailed(st, country, err); err != nil {
				return err
			}
			r.metrics.Country(st.pipeline, false)
			continue
		}

		records := snapshot.FlattenCategories(page.Items, country, st.date)
		for _, rec := range records {
			if err := rw.Write(rec); err != nil {
				return err
			}
		}
		st.log.Debug("Country categories fetched", "country", country, "rows", len(records))
		r.metrics.Country(st.pipeline, true)
	}

	if err := rw.Flush(); err != nil {
		return err
	}
	st.rows = int64(rw.Rows())

	if err := r.upload(ctx, st, clients.Sink, key, buf.Bytes(), storage.ContentTypeCSV); err != nil {
		return err
	}
	st.message = "Category snapshot uploaded"
	return nil
}
