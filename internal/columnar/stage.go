package columnar

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/ignite/trending-snapshots/internal/snapshot"
)

// Stager serializes one country's rows to a temporary CSV in a scratch
// directory and hands it to a loader. The file never outlives Stage.
type Stager struct {
	dir string
}

// NewStager returns a Stager writing under dir. An empty dir means os.TempDir().
func NewStager(dir string) *Stager {
	return &Stager{dir: dir}
}

// Stage writes records to a temp CSV, rewinds it and calls load with it.
// The file is closed and removed whether or not load succeeds.
func (s *Stager) Stage(country string, records []snapshot.VideoRecord, load func(io.Reader) error) error {
	f, err := os.CreateTemp(s.dir, "trending_"+fileSafe(country)+"_*.csv")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(f.Name())
	}()

	rw, err := snapshot.NewRowWriter(f, snapshot.TrendingColumns)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := rw.Write(rec); err != nil {
			return err
		}
	}
	if err := rw.Flush(); err != nil {
		return fmt.Errorf("flush staging file: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind staging file: %w", err)
	}
	return load(f)
}

// fileSafe keeps the letters and digits of s for use in a file name.
func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
