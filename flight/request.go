package flight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/arrowmask/catalog"
	"github.com/hugr-lab/arrowmask/filter"
)

// FlightRequest is the JSON body of a CMD descriptor:
//
//	{"table": "indices", "filter": {"&": [["aci", ">", 0.3]]}, "columns": ["ts", "aci"]}
type FlightRequest struct {
	Table   string      `json:"table"`
	Filter  filter.Spec `json:"filter,omitempty"`
	Columns []string    `json:"columns,omitempty"`
	Strict  bool        `json:"strict,omitempty"`
}

// ticketData converts the request to the ticket payload.
func (r *FlightRequest) ticketData() *TicketData {
	return &TicketData{
		Table:   r.Table,
		Filter:  r.Filter,
		Columns: r.Columns,
		Strict:  r.Strict,
	}
}

// parseDescriptor decodes a PATH ([table_name]) or CMD (FlightRequest JSON) descriptor.
func parseDescriptor(desc *flight.FlightDescriptor) (*TicketData, error) {
	switch desc.GetType() {
	case flight.DescriptorPATH:
		path := desc.GetPath()
		if len(path) != 1 {
			return nil, fmt.Errorf("%w: path must contain exactly 1 element: [table_name]", ErrInvalidRequest)
		}
		return &TicketData{Table: path[0]}, nil

	case flight.DescriptorCMD:
		var req FlightRequest
		if err := json.Unmarshal(desc.GetCmd(), &req); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return req.ticketData(), nil

	default:
		return nil, fmt.Errorf("%w: unsupported descriptor type %v", ErrInvalidRequest, desc.GetType())
	}
}

// preparedQuery is a validated request ready to be scanned.
type preparedQuery struct {
	table catalog.Table
	// node is nil when every row is selected.
	node filter.Node
	// schema is the projected output schema.
	schema *arrow.Schema
	opts   *filter.Options
}

// prepare resolves the table, builds the filter and checks every referenced
// column against the table schema. Errors are gRPC status errors.
func (s *Server) prepare(ctx context.Context, td *TicketData) (*preparedQuery, error) {
	table, err := s.lookupTable(ctx, td.Table)
	if err != nil {
		return nil, err
	}
	tableSchema := table.ArrowSchema()

	opts := s.filterOptions(td.Strict)
	node, err := filter.Build(td.Filter, opts)
	if err != nil {
		return nil, filterStatus(err)
	}

	for _, name := range filter.ColumnNames(node) {
		if !tableSchema.HasField(name) {
			return nil, filterStatus(fmt.Errorf("%w: %q in table %s", filter.ErrUnknownColumn, name, td.Table))
		}
	}

	schema, err := catalog.ProjectSchema(tableSchema, td.Columns)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid projection: %v", err)
	}

	return &preparedQuery{
		table:  table,
		node:   node,
		schema: schema,
		opts:   opts,
	}, nil
}

// scanColumns returns the columns a scan must deliver: the projection plus
// the filter columns. Nil means all columns.
func scanColumns(columns []string, node filter.Node) []string {
	if len(columns) == 0 {
		return nil
	}
	out := append([]string(nil), columns...)
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}
	for _, c := range filter.ColumnNames(node) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
