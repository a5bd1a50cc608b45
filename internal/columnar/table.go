package columnar

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	arrowcsv "github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ignite/trending-snapshots/internal/snapshot"
)

const loadChunkRows = 1024

// ErrSchemaMismatch is returned when a staged CSV header differs from the
// declared trending columns.
var ErrSchemaMismatch = fmt.Errorf("csv header does not match trending schema v%d", snapshot.SchemaVersion)

// Table accumulates record batches loaded from staged CSVs under the fixed
// trending schema. Call Release when done.
type Table struct {
	mem     memory.Allocator
	schema  *arrow.Schema
	records []arrow.Record
	rows    int64
}

// NewTable returns an empty table. A nil allocator means the Go allocator.
func NewTable(mem memory.Allocator) *Table {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &Table{mem: mem, schema: snapshot.TrendingSchema()}
}

// Schema returns the table's arrow schema.
func (t *Table) Schema() *arrow.Schema { return t.schema }

// NumRows returns the number of rows loaded so far.
func (t *Table) NumRows() int64 { return t.rows }

// LoadCSV checks the header line of r and appends the remaining rows,
// coercing counters and flags per the schema. It returns the rows added.
func (t *Table) LoadCSV(r io.Reader) (int64, error) {
	br := bufio.NewReader(r)
	if err := checkHeader(br); err != nil {
		return 0, err
	}

	rdr := arrowcsv.NewReader(br, t.schema,
		arrowcsv.WithAllocator(t.mem),
		arrowcsv.WithHeader(false),
		arrowcsv.WithChunk(loadChunkRows),
	)
	defer rdr.Release()

	var added int64
	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		t.records = append(t.records, rec)
		added += rec.NumRows()
		t.rows += rec.NumRows()
	}
	if err := rdr.Err(); err != nil {
		return added, fmt.Errorf("load csv: %w", err)
	}
	return added, nil
}

func checkHeader(br *bufio.Reader) error {
	line, err := br.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return fmt.Errorf("read csv header: %w", err)
	}
	header, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return fmt.Errorf("parse csv header: %w", err)
	}
	if len(header) != len(snapshot.TrendingColumns) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrSchemaMismatch, len(header), len(snapshot.TrendingColumns))
	}
	for i, name := range snapshot.TrendingColumns {
		if header[i] != name {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i, header[i], name)
		}
	}
	return nil
}

// Release frees every retained batch. The table is empty afterwards.
func (t *Table) Release() {
	for _, rec := range t.records {
		rec.Release()
	}
	t.records = nil
	t.rows = 0
}
