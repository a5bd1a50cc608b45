package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Row is anything that renders as one CSV record.
type Row interface {
	Row() []string
}

// RowWriter writes a header followed by records, quoting per RFC 4180.
type RowWriter struct {
	w    *csv.Writer
	rows int
}

// NewRowWriter writes header to w and returns a writer for the records.
func NewRowWriter(w io.Writer, header []string) (*RowWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return &RowWriter{w: cw}, nil
}

// Write appends one record. Output is buffered until Flush.
func (rw *RowWriter) Write(r Row) error {
	if err := rw.w.Write(r.Row()); err != nil {
		return fmt.Errorf("write csv row %d: %w", rw.rows+1, err)
	}
	rw.rows++
	return nil
}

// Rows reports how many records have been written, header excluded.
func (rw *RowWriter) Rows() int { return rw.rows }

// Flush writes any buffered data and reports the first write error.
func (rw *RowWriter) Flush() error {
	rw.w.Flush()
	return rw.w.Error()
}
