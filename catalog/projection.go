package catalog

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// ProjectSchema returns a projected schema containing only the specified columns.
// If columns is nil or empty, returns the full schema unchanged.
// Column order in the returned schema matches the order in columns slice.
// Original schema metadata is preserved in the projected schema.
// Returns an error naming the first column missing from schema.
func ProjectSchema(schema *arrow.Schema, columns []string) (*arrow.Schema, error) {
	if len(columns) == 0 {
		return schema, nil
	}

	fields := make([]arrow.Field, 0, len(columns))
	for _, col := range columns {
		idx := schema.FieldIndices(col)
		if len(idx) == 0 {
			return nil, fmt.Errorf("column %q not found in schema", col)
		}
		fields = append(fields, schema.Field(idx[0]))
	}

	// Preserve original schema metadata
	meta := schema.Metadata()
	return arrow.NewSchema(fields, &meta), nil
}

// ProjectRecord returns rec restricted to columns, in that order.
// If columns is nil or empty, rec itself is returned with an extra reference.
// Caller MUST release the returned record.
func ProjectRecord(rec arrow.RecordBatch, columns []string) (arrow.RecordBatch, error) {
	if len(columns) == 0 {
		rec.Retain()
		return rec, nil
	}

	schema, err := ProjectSchema(rec.Schema(), columns)
	if err != nil {
		return nil, err
	}

	cols := make([]arrow.Array, 0, len(columns))
	for _, col := range columns {
		cols = append(cols, rec.Column(rec.Schema().FieldIndices(col)[0]))
	}
	return array.NewRecordBatch(schema, cols, rec.NumRows()), nil
}
