package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GetFlightInfo validates a query and returns its schema and ticket.
// This RPC allows clients to discover the result schema before fetching data,
// and rejects malformed filters before any data is scanned.
//
// The descriptor is either PATH [table_name] (all rows, all columns) or
// CMD with a FlightRequest JSON body.
// Returns FlightInfo with:
//   - Schema: projected Arrow schema of the result
//   - Ticket: opaque byte slice replaying the validated request
//   - Endpoints: Single endpoint with the ticket
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	ctx = EnrichContextMetadata(ctx)

	s.logger.Debug("GetFlightInfo called",
		"type", desc.GetType(),
		"path_length", len(desc.GetPath()),
		"cmd_size", len(desc.GetCmd()),
		"trace_id", TraceIDFromContext(ctx),
	)

	td, err := parseDescriptor(desc)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	query, err := s.prepare(ctx, td)
	if err != nil {
		s.logger.Debug("GetFlightInfo rejected request",
			"table", td.Table,
			"error", err,
		)
		return nil, err
	}

	// Generate ticket
	ticket, err := EncodeTicket(td)
	if err != nil {
		s.logger.Error("Failed to encode ticket",
			"table", td.Table,
			"error", err,
		)
		return nil, status.Errorf(codes.Internal, "failed to encode ticket: %v", err)
	}

	flightInfo := &flight.FlightInfo{
		Schema:           flight.SerializeSchema(query.schema, s.allocator),
		FlightDescriptor: desc,
		Endpoint: []*flight.FlightEndpoint{
			{
				Ticket: &flight.Ticket{
					Ticket: ticket,
				},
			},
		},
		TotalRecords: -1, // Unknown until the mask is evaluated
		TotalBytes:   -1,
	}

	s.logger.Debug("GetFlightInfo successful",
		"table", td.Table,
		"filter", describeNode(query.node),
		"num_fields", query.schema.NumFields(),
	)

	return flightInfo, nil
}
