package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// StaticCatalog is an immutable catalog implementation built from CatalogBuilder.
// Tables are listed in the order they were added.
type StaticCatalog struct {
	tables map[string]Table
	order  []string
}

// NewStaticCatalog creates a static catalog.
// This is exported for use by the arrowmask package builder.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{
		tables: make(map[string]Table),
	}
}

// AddTable adds a table to the static catalog.
// This is used during catalog building.
// Adding a table with an existing name replaces it in place.
func (c *StaticCatalog) AddTable(table Table) {
	name := table.Name()
	if _, ok := c.tables[name]; !ok {
		c.order = append(c.order, name)
	}
	c.tables[name] = table
}

// Tables implements Catalog interface.
func (c *StaticCatalog) Tables(ctx context.Context) ([]Table, error) {
	result := make([]Table, 0, len(c.order))
	for _, name := range c.order {
		result = append(result, c.tables[name])
	}
	return result, nil
}

// Table implements Catalog interface.
func (c *StaticCatalog) Table(ctx context.Context, name string) (Table, error) {
	table, ok := c.tables[name]
	if !ok {
		return nil, nil // Not found, not an error
	}
	return table, nil
}

// NewStaticTable creates a static table.
// This is exported for use by the arrowmask package builder.
func NewStaticTable(name, comment string, schema *arrow.Schema, scanFunc ScanFunc) *StaticTable {
	return &StaticTable{
		name:     name,
		comment:  comment,
		schema:   schema,
		scanFunc: scanFunc,
	}
}

// StaticTable is an immutable table implementation.
type StaticTable struct {
	name     string
	comment  string
	schema   *arrow.Schema
	scanFunc ScanFunc
}

// Name implements Table interface.
func (t *StaticTable) Name() string {
	return t.name
}

// Comment implements Table interface.
func (t *StaticTable) Comment() string {
	return t.comment
}

// ArrowSchema implements Table interface.
func (t *StaticTable) ArrowSchema() *arrow.Schema {
	return t.schema
}

// Scan implements Table interface.
func (t *StaticTable) Scan(ctx context.Context, opts *ScanOptions) (array.RecordReader, error) {
	if opts == nil {
		opts = &ScanOptions{}
	}
	return t.scanFunc(ctx, opts)
}

// RecordsScanFunc returns a ScanFunc serving the given in-memory batches.
// The batches are retained until Release is called on the returned closer;
// every batch MUST have the given schema.
// When ScanOptions.BatchSize is set, batches are split into zero-copy
// slices of at most that many rows.
func RecordsScanFunc(schema *arrow.Schema, batches ...arrow.RecordBatch) (ScanFunc, func(), error) {
	for i, b := range batches {
		if !b.Schema().Equal(schema) {
			return nil, nil, fmt.Errorf("batch %d: schema %s does not match table schema %s", i, b.Schema(), schema)
		}
	}

	held := make([]arrow.RecordBatch, len(batches))
	for i, b := range batches {
		b.Retain()
		held[i] = b
	}
	var once sync.Once
	release := func() {
		once.Do(func() {
			for _, b := range held {
				b.Release()
			}
		})
	}

	scan := func(ctx context.Context, opts *ScanOptions) (array.RecordReader, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out := held
		if opts != nil && opts.BatchSize > 0 {
			out = splitBatches(held, int64(opts.BatchSize))
			defer func() {
				for _, b := range out {
					b.Release()
				}
			}()
		}
		return array.NewRecordReader(schema, out)
	}
	return scan, release, nil
}

// splitBatches slices batches to at most size rows each.
// Caller MUST release every returned batch.
func splitBatches(batches []arrow.RecordBatch, size int64) []arrow.RecordBatch {
	var out []arrow.RecordBatch
	for _, b := range batches {
		n := b.NumRows()
		if n == 0 {
			b.Retain()
			out = append(out, b)
			continue
		}
		for off := int64(0); off < n; off += size {
			out = append(out, b.NewSlice(off, min(off+size, n)))
		}
	}
	return out
}
