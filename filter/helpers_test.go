package filter

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// newXYRecord returns a 30-row record with x = 0..29 and y = 30..59.
func newXYRecord(t testing.TB, mem memory.Allocator) arrow.RecordBatch {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "x", Type: arrow.PrimitiveTypes.Int64},
		{Name: "y", Type: arrow.PrimitiveTypes.Int64},
	}, nil)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for i := int64(0); i < 30; i++ {
		builder.Field(0).(*array.Int64Builder).Append(i)
		builder.Field(1).(*array.Int64Builder).Append(i + 30)
	}
	return builder.NewRecordBatch()
}

// int64Column returns the values of a named int64 column.
func int64Column(t testing.TB, rec arrow.RecordBatch, name string) []int64 {
	t.Helper()

	idx := rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		t.Fatalf("column %q not found", name)
	}
	col, ok := rec.Column(idx[0]).(*array.Int64)
	if !ok {
		t.Fatalf("column %q is %s, want int64", name, rec.Column(idx[0]).DataType())
	}
	return col.Int64Values()
}

// maskOf evaluates pred for every row index.
func maskOf(n int, pred func(i int) bool) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = pred(i)
	}
	return out
}
