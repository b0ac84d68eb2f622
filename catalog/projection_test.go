package catalog

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

func TestProjectSchema(t *testing.T) {
	meta := arrow.NewMetadata([]string{"source"}, []string{"hydrophone"})
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int64},
		{Name: "b", Type: arrow.PrimitiveTypes.Float64},
		{Name: "c", Type: arrow.BinaryTypes.String},
	}, &meta)

	tests := []struct {
		name    string
		columns []string
		want    []string
		wantErr bool
	}{
		{name: "all", columns: nil, want: []string{"a", "b", "c"}},
		{name: "reordered", columns: []string{"c", "a"}, want: []string{"c", "a"}},
		{name: "unknown", columns: []string{"a", "z"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProjectSchema(schema, tt.columns)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ProjectSchema failed: %v", err)
			}
			if got.NumFields() != len(tt.want) {
				t.Fatalf("Expected %d fields, got %d", len(tt.want), got.NumFields())
			}
			for i, name := range tt.want {
				if got.Field(i).Name != name {
					t.Errorf("Field %d: expected '%s', got '%s'", i, name, got.Field(i).Name)
				}
			}
			if v, ok := got.Metadata().GetValue("source"); !ok || v != "hydrophone" {
				t.Errorf("Expected metadata to be preserved, got %v", got.Metadata())
			}
		})
	}
}

func TestProjectRecord(t *testing.T) {
	allocator := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer allocator.AssertSize(t, 0)

	rec := testBatch(t, allocator, 0, 4)
	defer rec.Release()

	projected, err := ProjectRecord(rec, []string{"site"})
	if err != nil {
		t.Fatalf("ProjectRecord failed: %v", err)
	}
	defer projected.Release()

	if projected.NumCols() != 1 || projected.ColumnName(0) != "site" {
		t.Errorf("Expected only 'site', got %s", projected.Schema())
	}
	if projected.NumRows() != 4 {
		t.Errorf("Expected 4 rows, got %d", projected.NumRows())
	}

	same, err := ProjectRecord(rec, nil)
	if err != nil {
		t.Fatalf("ProjectRecord failed: %v", err)
	}
	defer same.Release()
	if same.NumCols() != 2 {
		t.Errorf("Expected full record, got %d columns", same.NumCols())
	}

	if _, err := ProjectRecord(rec, []string{"missing"}); err == nil {
		t.Error("Expected error for unknown column")
	}
}
