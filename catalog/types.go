package catalog

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/hugr-lab/arrowmask/filter"
)

// ScanOptions provides options for table scans.
type ScanOptions struct {
	// Columns the server needs: the requested projection plus every column
	// the filter reads. If nil/empty, return all columns.
	// Implementations MAY ignore this hint and return the full schema.
	Columns []string

	// Filter is the built filter tree, for optional pushdown
	// (e.g. filter.NewDuckDBEncoder(nil).EncodeFilter(opts.Filter)).
	// If nil, no filtering (return all rows).
	Filter filter.Node

	// BatchSize is hint for RecordReader batch size.
	// If 0, implementation chooses default.
	// Implementations MAY ignore this hint.
	BatchSize int
}

// ScanFunc is a function type for table data retrieval.
// User implements this to connect to their data source.
type ScanFunc func(ctx context.Context, opts *ScanOptions) (array.RecordReader, error)
