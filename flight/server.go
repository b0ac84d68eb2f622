// Package flight provides the Flight RPC handlers of the masked table service.
package flight

import (
	"context"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/arrowmask/catalog"
	"github.com/hugr-lab/arrowmask/filter"
	"github.com/hugr-lab/arrowmask/internal/recovery"
)

// Server implements the Flight service handlers.
// Embeds BaseFlightServer for forward compatibility with protocol changes;
// DoPut and DoExchange stay unimplemented.
type Server struct {
	flight.BaseFlightServer

	catalog   catalog.Catalog
	allocator memory.Allocator
	logger    *slog.Logger
	strict    bool
}

// NewServer creates a new Flight server with the given catalog and allocator.
// The logger is used for internal logging of errors and important events.
// strictLabels makes every filter group label a required combinator,
// regardless of what clients ask for.
func NewServer(cat catalog.Catalog, allocator memory.Allocator, logger *slog.Logger, strictLabels bool) *Server {
	return &Server{
		catalog:   cat,
		allocator: allocator,
		logger:    logger,
		strict:    strictLabels,
	}
}

// RegisterFlightServer registers the Flight service on the provided gRPC server.
// This follows the standard gRPC service registration pattern.
func RegisterFlightServer(grpcServer *grpc.Server, flightServer *Server) {
	flight.RegisterFlightServiceServer(grpcServer, flightServer)
}

// filterOptions returns the build options for a request.
// Strict label checking is on if either the server or the request wants it.
func (s *Server) filterOptions(strict bool) *filter.Options {
	return &filter.Options{
		StrictLabels: s.strict || strict,
		Allocator:    s.allocator,
	}
}

// lookupTable resolves a table name, mapping misses and failures to gRPC errors.
func (s *Server) lookupTable(ctx context.Context, name string) (catalog.Table, error) {
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "table name cannot be empty")
	}

	table, err := recovery.RecoverToValue(s.logger, "Table", func() (catalog.Table, error) {
		return s.catalog.Table(ctx, name)
	})
	if err != nil {
		s.logger.Error("Failed to get table from catalog",
			"table", name,
			"error", err,
		)
		return nil, status.Errorf(codes.Internal, "failed to get table: %v", err)
	}
	if table == nil {
		return nil, status.Errorf(codes.NotFound, "table not found: %s", name)
	}
	if table.ArrowSchema() == nil {
		s.logger.Error("Table returned nil Arrow schema", "table", name)
		return nil, status.Errorf(codes.Internal, "table %s has nil Arrow schema", name)
	}
	return table, nil
}
