package filter

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/compute"
)

// Evaluate builds spec and evaluates it against rec.
// An empty spec yields a rule selecting every row with an empty expression.
// Neither rec nor spec is modified; evaluating the same inputs twice yields
// identical masks and strings.
func Evaluate(ctx context.Context, rec arrow.RecordBatch, spec Spec, opts *Options) (*Rule, error) {
	node, err := Build(spec, opts)
	if err != nil {
		return nil, err
	}
	return Compile(ctx, rec, node, opts)
}

// Compile evaluates a built expression tree against rec.
// A nil node selects every row.
func Compile(ctx context.Context, rec arrow.RecordBatch, node Node, opts *Options) (*Rule, error) {
	if opts == nil {
		opts = &Options{}
	}
	ctx = withAllocator(ctx, opts.Allocator)

	if node == nil {
		return allRows(allocatorFrom(ctx), int(rec.NumRows())), nil
	}
	return compileNode(ctx, rec, node)
}

func compileNode(ctx context.Context, rec arrow.RecordBatch, node Node) (*Rule, error) {
	switch n := node.(type) {
	case *Leaf:
		data, err := resolveColumn(rec, n.Column)
		if err != nil {
			return nil, err
		}
		return evalLeaf(ctx, n, data)

	case *Combine:
		if len(n.Children) == 0 {
			return nil, fmt.Errorf("%w: nothing to combine", ErrMalformedSpecification)
		}
		if len(n.Children) == 1 {
			return compileNode(ctx, rec, n.Children[0])
		}
		if !n.Op.IsCombinator() {
			return nil, fmt.Errorf("%w: %q cannot combine rules", ErrUnknownOperator, n.Op.String())
		}

		rules := make([]*Rule, 0, len(n.Children))
		defer func() {
			for _, r := range rules {
				r.Release()
			}
		}()
		for _, child := range n.Children {
			r, err := compileNode(ctx, rec, child)
			if err != nil {
				return nil, err
			}
			rules = append(rules, r)
		}
		return foldRules(ctx, n.Op, rules)

	default:
		return nil, fmt.Errorf("%w: unsupported node %T", ErrMalformedSpecification, node)
	}
}

// resolveColumn returns the vector a column reference points at.
func resolveColumn(rec arrow.RecordBatch, ref ColumnRef) (arrow.Array, error) {
	if ref.IsBound() {
		if int64(ref.Data.Len()) != rec.NumRows() {
			return nil, fmt.Errorf("%w: %s has %d rows, record has %d",
				ErrColumnLength, ref.Name, ref.Data.Len(), rec.NumRows())
		}
		return ref.Data, nil
	}

	indices := rec.Schema().FieldIndices(ref.Name)
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, ref.Name)
	}
	return rec.Column(indices[0]), nil
}

// Select returns the rows of rec for which rule is true.
// Caller MUST release the returned record.
func Select(ctx context.Context, rec arrow.RecordBatch, rule *Rule) (arrow.RecordBatch, error) {
	if int64(rule.Len()) != rec.NumRows() {
		return nil, fmt.Errorf("%w: mask has %d rows, record has %d", ErrColumnLength, rule.Len(), rec.NumRows())
	}
	out, err := compute.FilterRecordBatch(ctx, rec, rule.Mask(), compute.DefaultFilterOptions())
	if err != nil {
		return nil, fmt.Errorf("filter record: %w", err)
	}
	return out, nil
}
