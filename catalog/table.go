package catalog

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Table represents a queryable table with fixed schema.
// Implementations MUST be goroutine-safe.
type Table interface {
	// Name returns the table name (e.g., "indices", "detections").
	// MUST return non-empty string.
	Name() string

	// Comment returns optional table documentation.
	// Returns empty string if no comment provided.
	Comment() string

	// ArrowSchema returns the logical schema describing table columns.
	// MUST return valid *arrow.Schema.
	ArrowSchema() *arrow.Schema

	// Scan executes a scan operation and returns a RecordReader.
	// Context allows cancellation; implementation MUST respect ctx.Done().
	// Caller MUST call reader.Release() to free memory.
	// Returned RecordReader schema MUST match ArrowSchema().
	//
	// opts.Filter MAY be used to skip rows early; the server applies the
	// mask to every batch regardless, so returning extra rows is safe.
	Scan(ctx context.Context, opts *ScanOptions) (array.RecordReader, error)
}
