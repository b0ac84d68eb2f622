package flight

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/arrowmask/catalog"
	"github.com/hugr-lab/arrowmask/filter"
	"github.com/hugr-lab/arrowmask/internal/recovery"
)

// DoGet streams the masked record batches of a table.
// This is the core RPC for executing queries and returning Arrow data.
//
// The ticket must be encoded using EncodeTicket (normally by GetFlightInfo).
// The handler:
//  1. Decodes the ticket and rebuilds the filter
//  2. Looks up the table in the catalog
//  3. Calls the table's Scan function with the filter as a pushdown hint
//  4. Evaluates the mask on every batch and keeps the selected rows
//  5. Applies the column projection
//  6. Streams record batches using Arrow IPC format
//  7. Respects context cancellation
func (s *Server) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	s.logger.Debug("DoGet called", "ticket_size", len(ticket.GetTicket()))

	td, err := DecodeTicket(ticket.GetTicket())
	if err != nil {
		s.logger.Error("Failed to decode ticket", "error", err)
		return status.Errorf(codes.InvalidArgument, "%v", err)
	}

	query, err := s.prepare(ctx, td)
	if err != nil {
		return err
	}

	log := s.logger.With(
		"table", td.Table,
		"trace_id", TraceIDFromContext(ctx),
	)
	log.Debug("DoGet request",
		"filter", describeNode(query.node),
		"columns", td.Columns,
	)

	scanOpts := &catalog.ScanOptions{
		Columns: scanColumns(td.Columns, query.node),
		Filter:  query.node,
	}

	reader, err := recovery.RecoverToValue(s.logger, "Scan", func() (array.RecordReader, error) {
		return query.table.Scan(ctx, scanOpts)
	})
	if err != nil {
		log.Error("Table scan failed", "error", err)
		if _, ok := status.FromError(err); ok {
			return err
		}
		return status.Errorf(codes.Internal, "table scan failed: %v", err)
	}
	defer recovery.Recover(s.logger, "Release", reader.Release)

	if err := checkReaderSchema(reader.Schema(), query.table.ArrowSchema(), scanOpts.Columns); err != nil {
		log.Error("RecordReader schema does not match table schema", "error", err)
		return status.Errorf(codes.Internal, "schema mismatch: %v", err)
	}

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(query.schema), ipc.WithAllocator(s.allocator))
	defer writer.Close()

	batchCount := 0
	scannedRows := int64(0)
	sentRows := int64(0)

	for reader.Next() {
		select {
		case <-ctx.Done():
			log.Debug("DoGet cancelled by client",
				"batches_scanned", batchCount,
				"rows_sent", sentRows,
			)
			return status.Error(codes.Canceled, "request cancelled")
		default:
		}

		record := reader.RecordBatch()
		batchCount++
		scannedRows += record.NumRows()

		out, err := s.maskRecord(ctx, record, query, td.Columns)
		if err != nil {
			log.Error("Failed to mask record batch",
				"batch", batchCount,
				"error", err,
			)
			return err
		}

		selected := out.NumRows()
		if selected > 0 {
			err = writer.Write(out)
		}
		out.Release()
		if err != nil {
			log.Error("Failed to write record batch",
				"batch", batchCount,
				"error", err,
			)
			return status.Errorf(codes.Internal, "failed to write batch %d: %v", batchCount, err)
		}
		sentRows += selected

		log.Debug("Masked record batch",
			"batch", batchCount,
			"rows_in_batch", record.NumRows(),
			"rows_selected", selected,
		)
	}

	if err := reader.Err(); err != nil && !errors.Is(err, io.EOF) {
		log.Error("RecordReader error during iteration",
			"batch", batchCount,
			"error", err,
		)
		return status.Errorf(codes.Internal, "scan error after batch %d: %v", batchCount, err)
	}

	log.Debug("DoGet completed successfully",
		"batches_scanned", batchCount,
		"rows_scanned", scannedRows,
		"rows_sent", sentRows,
	)

	return nil
}

// maskRecord keeps the rows of rec selected by the query filter and applies
// the projection. Caller MUST release the returned record.
func (s *Server) maskRecord(ctx context.Context, rec arrow.RecordBatch, query *preparedQuery, columns []string) (arrow.RecordBatch, error) {
	selected := rec
	if query.node != nil {
		rule, err := filter.Compile(ctx, rec, query.node, query.opts)
		if err != nil {
			return nil, filterStatus(err)
		}
		defer rule.Release()

		selected, err = filter.Select(ctx, rec, rule)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "failed to select rows: %v", err)
		}
		defer selected.Release()
	}

	out, err := catalog.ProjectRecord(selected, columns)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to project record: %v", err)
	}
	if !out.Schema().Equal(query.schema) {
		out.Release()
		return nil, status.Errorf(codes.Internal, "record schema %s does not match result schema %s",
			out.Schema(), query.schema)
	}
	return out, nil
}

// checkReaderSchema validates what a table scan returned. Without a column
// hint the reader must produce the table schema; with one it must at least
// carry those columns with their table types.
func checkReaderSchema(readerSchema, tableSchema *arrow.Schema, columns []string) error {
	if len(columns) == 0 {
		if !tableSchema.Equal(readerSchema) {
			return fmt.Errorf("table has %d fields, reader has %d fields",
				tableSchema.NumFields(), readerSchema.NumFields())
		}
		return nil
	}

	for _, name := range columns {
		want, _ := tableSchema.FieldsByName(name)
		got, ok := readerSchema.FieldsByName(name)
		if !ok {
			return fmt.Errorf("reader is missing column %q", name)
		}
		if len(want) > 0 && !arrow.TypeEqual(want[0].Type, got[0].Type) {
			return fmt.Errorf("column %q has type %s, table declares %s", name, got[0].Type, want[0].Type)
		}
	}
	return nil
}

// describeNode renders a filter for logs.
func describeNode(node filter.Node) string {
	if node == nil {
		return ""
	}
	return node.String()
}
