package columnar

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

const rowGroupRows = 64 * 1024

// WriteParquet exports the whole table to w as ZSTD-compressed parquet.
// The writer embeds no timestamps, so identical tables give identical bytes.
func (t *Table) WriteParquet(w io.Writer) error {
	tbl := array.NewTableFromRecords(t.schema, t.records)
	defer tbl.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Zstd),
		parquet.WithAllocator(t.mem),
	)
	arrProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithStoreSchema(),
		pqarrow.WithAllocator(t.mem),
	)
	if err := pqarrow.WriteTable(tbl, w, rowGroupRows, props, arrProps); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}
