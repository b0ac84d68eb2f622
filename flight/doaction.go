package flight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/arrowmask/filter"
	"github.com/hugr-lab/arrowmask/internal/serialize"
)

// Action types served by DoAction.
const (
	// ActionDescribeFilter returns the canonical rendering of a filter.
	ActionDescribeFilter = "describe_filter"
	// ActionFilterSQL returns the DuckDB WHERE clause body of a filter.
	ActionFilterSQL = "filter_sql"
	// ActionListTables returns the catalog as zstd-compressed Arrow IPC.
	ActionListTables = "list_tables"
)

var actionTypes = []*flight.ActionType{
	{
		Type:        ActionDescribeFilter,
		Description: `Validate a filter and return its canonical expression. Body: {"filter": {...}, "table": "optional", "strict": false}`,
	},
	{
		Type:        ActionFilterSQL,
		Description: `Encode a filter as a DuckDB WHERE clause body. Body: {"filter": {...}, "column_mapping": {"name": "target"}}`,
	},
	{
		Type:        ActionListTables,
		Description: "List tables as zstd-compressed Arrow IPC (table_name, comment, column_names, table_schema)",
	},
}

// actionRequest is the JSON body of the filter actions.
type actionRequest struct {
	FlightRequest
	ColumnMapping     map[string]string `json:"column_mapping,omitempty"`
	ColumnExpressions map[string]string `json:"column_expressions,omitempty"`
}

// DoAction executes server actions.
// This RPC supports:
//   - describe_filter: canonical filter rendering
//   - filter_sql: DuckDB SQL pushdown of a filter
//   - list_tables: catalog listing
func (s *Server) DoAction(action *flight.Action, stream flight.FlightService_DoActionServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	s.logger.Debug("DoAction called",
		"type", action.GetType(),
		"body_size", len(action.GetBody()),
	)

	var (
		body []byte
		err  error
	)
	switch action.GetType() {
	case ActionDescribeFilter:
		body, err = s.describeFilter(ctx, action.GetBody())
	case ActionFilterSQL:
		body, err = s.filterSQL(ctx, action.GetBody())
	case ActionListTables:
		body, err = s.listTables(ctx)
	default:
		return status.Errorf(codes.Unimplemented, "unknown action type: %s", action.GetType())
	}
	if err != nil {
		s.logger.Debug("DoAction failed",
			"type", action.GetType(),
			"error", err,
		)
		return err
	}

	if err := stream.Send(&flight.Result{Body: body}); err != nil {
		s.logger.Error("Failed to send action result", "type", action.GetType(), "error", err)
		return status.Errorf(codes.Internal, "failed to send result: %v", err)
	}
	return nil
}

// ListActions advertises the supported action types.
func (s *Server) ListActions(_ *flight.Empty, stream flight.FlightService_ListActionsServer) error {
	for _, at := range actionTypes {
		if err := stream.Send(at); err != nil {
			return status.Errorf(codes.Internal, "failed to send action type: %v", err)
		}
	}
	return nil
}

// buildActionFilter decodes an action body and builds its filter.
// When a table is named, the filter columns are checked against it.
func (s *Server) buildActionFilter(ctx context.Context, body []byte) (*actionRequest, filter.Node, error) {
	var req actionRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, nil, status.Errorf(codes.InvalidArgument, "%v: %v", ErrInvalidRequest, err)
		}
	}

	if req.Table != "" {
		query, err := s.prepare(ctx, req.ticketData())
		if err != nil {
			return nil, nil, err
		}
		return &req, query.node, nil
	}

	node, err := filter.Build(req.Filter, s.filterOptions(req.Strict))
	if err != nil {
		return nil, nil, filterStatus(err)
	}
	return &req, node, nil
}

func (s *Server) describeFilter(ctx context.Context, body []byte) ([]byte, error) {
	_, node, err := s.buildActionFilter(ctx, body)
	if err != nil {
		return nil, err
	}
	return []byte(describeNode(node)), nil
}

func (s *Server) filterSQL(ctx context.Context, body []byte) ([]byte, error) {
	req, node, err := s.buildActionFilter(ctx, body)
	if err != nil {
		return nil, err
	}

	enc := filter.NewDuckDBEncoder(&filter.EncoderOptions{
		ColumnMapping:     req.ColumnMapping,
		ColumnExpressions: req.ColumnExpressions,
	})
	return []byte(enc.EncodeFilter(node)), nil
}

func (s *Server) listTables(ctx context.Context) ([]byte, error) {
	data, err := serialize.CompressCatalog(ctx, s.catalog, s.allocator)
	if err != nil {
		s.logger.Error("Failed to serialize catalog", "error", err)
		return nil, status.Errorf(codes.Internal, "failed to serialize catalog: %v", fmt.Errorf("list tables: %w", err))
	}
	return data, nil
}
