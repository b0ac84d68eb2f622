package filter

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// compareScalar applies a comparison operator between every element of data
// and value. Rows where the comparison is null come back as false.
func compareScalar(ctx context.Context, op Operator, data arrow.Array, value any) (*array.Boolean, error) {
	if !op.IsComparison() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOperatorForLeaf, op)
	}

	sc, err := scalarFor(value, data.DataType())
	if err != nil {
		return nil, err
	}

	lhs := compute.NewDatum(data)
	defer lhs.Release()
	rhs := compute.NewDatum(sc)
	defer rhs.Release()

	mask, err := callFunction(ctx, op.function(), lhs, rhs)
	if err != nil {
		return nil, err
	}
	return nullsToFalse(ctx, mask), nil
}

// callBoolean folds two masks elementwise with the named boolean kernel.
func callBoolean(ctx context.Context, function string, left, right *array.Boolean) (*array.Boolean, error) {
	lhs := compute.NewDatum(left)
	defer lhs.Release()
	rhs := compute.NewDatum(right)
	defer rhs.Release()

	return callFunction(ctx, function, lhs, rhs)
}

func callFunction(ctx context.Context, function string, args ...compute.Datum) (*array.Boolean, error) {
	out, err := compute.CallFunction(ctx, function, nil, args...)
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", function, err)
	}
	defer out.Release()

	ad, ok := out.(*compute.ArrayDatum)
	if !ok {
		return nil, fmt.Errorf("compute %s: unexpected %v result", function, out.Kind())
	}

	arr := ad.MakeArray()
	mask, ok := arr.(*array.Boolean)
	if !ok {
		arr.Release()
		return nil, fmt.Errorf("compute %s: expected boolean result, got %s", function, arr.DataType())
	}
	return mask, nil
}

// nullsToFalse replaces null slots with false. The input is released when a
// new array is built.
func nullsToFalse(ctx context.Context, mask *array.Boolean) *array.Boolean {
	if mask.NullN() == 0 {
		return mask
	}
	defer mask.Release()

	bldr := array.NewBooleanBuilder(allocatorFrom(ctx))
	defer bldr.Release()

	bldr.Reserve(mask.Len())
	for i := 0; i < mask.Len(); i++ {
		bldr.UnsafeAppend(mask.IsValid(i) && mask.Value(i))
	}
	return bldr.NewBooleanArray()
}

type allocatorKey struct{}

// withAllocator stores mem in ctx for both the compute kernels and the
// builders of this package.
func withAllocator(ctx context.Context, mem memory.Allocator) context.Context {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	ctx = compute.WithAllocator(ctx, mem)
	return context.WithValue(ctx, allocatorKey{}, mem)
}

func allocatorFrom(ctx context.Context) memory.Allocator {
	if mem, ok := ctx.Value(allocatorKey{}).(memory.Allocator); ok {
		return mem
	}
	return memory.DefaultAllocator
}
