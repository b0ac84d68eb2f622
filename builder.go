package arrowmask

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/arrowmask/catalog"
)

// TableDef defines a table with fixed schema.
// Used with CatalogBuilder.Table().
type TableDef struct {
	// Name is the table name (e.g., "indices", "detections").
	// REQUIRED: MUST be non-empty and unique within the catalog.
	Name string

	// Comment is optional table documentation.
	// OPTIONAL: Empty string if no comment.
	Comment string

	// Schema is the Arrow schema describing table columns.
	// REQUIRED: MUST NOT be nil.
	Schema *arrow.Schema

	// ScanFunc provides table data as RecordReader.
	// REQUIRED: MUST NOT be nil.
	ScanFunc catalog.ScanFunc
}

// CatalogBuilder builds static catalogs using fluent API.
// Not thread-safe - use only during initialization.
type CatalogBuilder struct {
	tables   []TableDef
	errs     []error
	releases []func()
	built    bool
}

// NewCatalogBuilder creates a new fluent catalog builder.
//
// Example:
//
//	cat, err := arrowmask.NewCatalogBuilder().
//	    Table(arrowmask.TableDef{Name: "indices", Schema: schema, ScanFunc: scan}).
//	    RecordsTable("detections", "Bird detections", detSchema, batch).
//	    Build()
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{}
}

// Table adds a table backed by a user scan function.
// Returns self for method chaining.
func (cb *CatalogBuilder) Table(def TableDef) *CatalogBuilder {
	cb.tables = append(cb.tables, def)
	return cb
}

// RecordsTable adds a table serving in-memory record batches.
// The batches are retained until Release is called; every batch MUST have
// the given schema. Returns self for method chaining.
func (cb *CatalogBuilder) RecordsTable(name, comment string, schema *arrow.Schema, batches ...arrow.RecordBatch) *CatalogBuilder {
	if schema == nil {
		cb.errs = append(cb.errs, fmt.Errorf("table %s has nil schema", name))
		return cb
	}
	scan, release, err := catalog.RecordsScanFunc(schema, batches...)
	if err != nil {
		cb.errs = append(cb.errs, fmt.Errorf("table %s: %w", name, err))
		return cb
	}
	cb.releases = append(cb.releases, release)
	return cb.Table(TableDef{
		Name:     name,
		Comment:  comment,
		Schema:   schema,
		ScanFunc: scan,
	})
}

// Build finalizes the catalog and returns immutable Catalog implementation.
// Can only be called once. Further modifications return error.
// Returns error if catalog is invalid (e.g., duplicate table names).
func (cb *CatalogBuilder) Build() (catalog.Catalog, error) {
	if cb.built {
		return nil, fmt.Errorf("catalog already built")
	}
	if err := errors.Join(cb.errs...); err != nil {
		return nil, err
	}

	// Validate table names are unique and non-empty
	seenNames := make(map[string]bool)
	for _, table := range cb.tables {
		if table.Name == "" {
			return nil, fmt.Errorf("table name cannot be empty")
		}
		if seenNames[table.Name] {
			return nil, fmt.Errorf("duplicate table name: %s", table.Name)
		}
		seenNames[table.Name] = true

		if table.Schema == nil {
			return nil, fmt.Errorf("table %s has nil schema", table.Name)
		}
		if table.ScanFunc == nil {
			return nil, fmt.Errorf("table %s has nil scan function", table.Name)
		}
	}

	cb.built = true

	cat := catalog.NewStaticCatalog()
	for _, def := range cb.tables {
		cat.AddTable(catalog.NewStaticTable(def.Name, def.Comment, def.Schema, def.ScanFunc))
	}
	return cat, nil
}

// Release frees the batches retained by RecordsTable.
// Call it once the catalog is no longer served.
func (cb *CatalogBuilder) Release() {
	for _, release := range cb.releases {
		release()
	}
	cb.releases = nil
}
