package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ListFlights returns one FlightInfo per catalog table.
// This RPC allows clients to discover tables without executing queries.
//
// Each FlightInfo carries:
//   - PATH descriptor [table_name]
//   - Full Arrow schema of the table
//   - Ticket for an unfiltered scan
//
// Criteria parameter is currently ignored (returns all tables).
func (s *Server) ListFlights(criteria *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	s.logger.Debug("ListFlights called")

	tables, err := s.catalog.Tables(ctx)
	if err != nil {
		s.logger.Error("Failed to list tables", "error", err)
		return status.Errorf(codes.Internal, "failed to list tables: %v", err)
	}

	for _, table := range tables {
		schema := table.ArrowSchema()
		if schema == nil {
			s.logger.Error("Table returned nil Arrow schema", "table", table.Name())
			return status.Errorf(codes.Internal, "table %s has nil Arrow schema", table.Name())
		}

		ticket, err := EncodeTicket(&TicketData{Table: table.Name()})
		if err != nil {
			return status.Errorf(codes.Internal, "failed to encode ticket: %v", err)
		}

		flightInfo := &flight.FlightInfo{
			Schema: flight.SerializeSchema(schema, s.allocator),
			FlightDescriptor: &flight.FlightDescriptor{
				Type: flight.DescriptorPATH,
				Path: []string{table.Name()},
			},
			Endpoint: []*flight.FlightEndpoint{
				{
					Ticket: &flight.Ticket{
						Ticket: ticket,
					},
				},
			},
			TotalRecords: -1, // Unknown until scan
			TotalBytes:   -1, // Unknown until scan
		}

		if err := stream.Send(flightInfo); err != nil {
			s.logger.Error("Failed to send FlightInfo", "table", table.Name(), "error", err)
			return status.Errorf(codes.Internal, "failed to send flight info: %v", err)
		}
	}

	s.logger.Debug("ListFlights completed successfully", "tables", len(tables))

	return nil
}
