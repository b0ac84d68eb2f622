package serialize

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/arrowmask/catalog"
)

// TablesSchema is the layout of a serialized catalog listing.
var TablesSchema = arrow.NewSchema([]arrow.Field{
	{Name: "table_name", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "comment", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "column_names", Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: false},
	{Name: "table_schema", Type: arrow.BinaryTypes.Binary, Nullable: false},
}, nil)

// SerializeCatalog serializes the table list of a catalog to Arrow IPC
// stream format, one row per table with its IPC-encoded Arrow schema.
func SerializeCatalog(ctx context.Context, cat catalog.Catalog, allocator memory.Allocator) ([]byte, error) {
	tables, err := cat.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}

	builder := array.NewRecordBuilder(allocator, TablesSchema)
	defer builder.Release()

	nameBuilder := builder.Field(0).(*array.StringBuilder)
	commentBuilder := builder.Field(1).(*array.StringBuilder)
	columnsBuilder := builder.Field(2).(*array.ListBuilder)
	columnValues := columnsBuilder.ValueBuilder().(*array.StringBuilder)
	schemaBuilder := builder.Field(3).(*array.BinaryBuilder)

	for _, table := range tables {
		schema := table.ArrowSchema()
		if schema == nil {
			return nil, fmt.Errorf("table %s has nil Arrow schema", table.Name())
		}

		nameBuilder.Append(table.Name())
		if c := table.Comment(); c != "" {
			commentBuilder.Append(c)
		} else {
			commentBuilder.AppendNull()
		}

		columnsBuilder.Append(true)
		for _, f := range schema.Fields() {
			columnValues.Append(f.Name)
		}

		schemaBuilder.Append(flight.SerializeSchema(schema, allocator))
	}

	record := builder.NewRecordBatch()
	defer record.Release()

	// Serialize to Arrow IPC format
	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(TablesSchema), ipc.WithAllocator(allocator))

	if err := writer.Write(record); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write IPC record: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close IPC writer: %w", err)
	}

	return buf.Bytes(), nil
}

// CompressCatalog serializes and compresses a catalog listing.
func CompressCatalog(ctx context.Context, cat catalog.Catalog, allocator memory.Allocator) ([]byte, error) {
	data, err := SerializeCatalog(ctx, cat, allocator)
	if err != nil {
		return nil, err
	}
	return Compress(data)
}
