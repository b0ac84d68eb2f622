package flight

import (
	"errors"

	"github.com/apache/arrow-go/v18/arrow"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/arrowmask/filter"
)

var (
	// ErrInvalidTicket is returned when a ticket cannot be decoded.
	ErrInvalidTicket = errors.New("invalid ticket")
	// ErrInvalidRequest is returned when a descriptor or action body is malformed.
	ErrInvalidRequest = errors.New("invalid request")
)

// clientFilterErrors are filter failures caused by the request itself.
var clientFilterErrors = []error{
	filter.ErrUnknownOperator,
	filter.ErrInvalidOperatorForRange,
	filter.ErrInvalidOperatorForLeaf,
	filter.ErrInvalidValueKind,
	filter.ErrMalformedSpecification,
	filter.ErrUnknownColumn,
	filter.ErrUnsupportedValue,
	// Compute kernels report type mismatches (e.g. string vs. int) this way.
	arrow.ErrNotImplemented,
	arrow.ErrInvalid,
	arrow.ErrType,
}

// filterStatus converts a filter build or evaluation error to a gRPC error.
func filterStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, target := range clientFilterErrors {
		if errors.Is(err, target) {
			return status.Errorf(codes.InvalidArgument, "invalid filter: %v", err)
		}
	}
	return status.Errorf(codes.Internal, "filter evaluation failed: %v", err)
}
