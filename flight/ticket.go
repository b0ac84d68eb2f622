package flight

import (
	"fmt"

	"github.com/hugr-lab/arrowmask/filter"
	"github.com/hugr-lab/arrowmask/internal/serialize"
)

// TicketData represents the decoded content of a Flight ticket.
// Tickets are opaque byte slices carrying everything DoGet needs to replay
// a validated request: table, filter specification and projection.
type TicketData struct {
	// Table is the table name (e.g., "indices", "detections")
	Table string `msgpack:"table"`

	// Filter is the filter specification in key order (optional, empty selects all rows)
	Filter filter.Spec `msgpack:"filter,omitempty"`

	// Columns to project (optional, nil means all columns)
	Columns []string `msgpack:"columns,omitempty"`

	// Strict requires every filter group label to be & or |
	Strict bool `msgpack:"strict,omitempty"`
}

// EncodeTicket creates an opaque ticket.
// The ticket is zstd-compressed MessagePack, which keeps filter key order.
// Returns error if encoding fails.
func EncodeTicket(td *TicketData) ([]byte, error) {
	if td == nil || td.Table == "" {
		return nil, fmt.Errorf("table name cannot be empty")
	}

	data, err := serialize.Marshal(td)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}

	return data, nil
}

// DecodeTicket parses an opaque ticket.
// Returns an error wrapping ErrInvalidTicket if the ticket is invalid or cannot be decoded.
func DecodeTicket(ticketBytes []byte) (*TicketData, error) {
	if len(ticketBytes) == 0 {
		return nil, fmt.Errorf("%w: ticket cannot be empty", ErrInvalidTicket)
	}

	var ticket TicketData
	if err := serialize.Unmarshal(ticketBytes, &ticket); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}

	if ticket.Table == "" {
		return nil, fmt.Errorf("%w: decoded ticket has empty table name", ErrInvalidTicket)
	}

	return &ticket, nil
}
