package filter

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Column is a resolved column vector with the name used for rendering.
type Column struct {
	Name string
	Data arrow.Array
}

// Rule is an evaluated filter: one boolean per record row plus the canonical
// rendering of the expression. Null comparison results are stored as false.
// Caller MUST call Release() when done with the rule.
type Rule struct {
	mask *array.Boolean
	expr string
}

// Mask returns the predicate vector aligned to the record rows.
// The array is owned by the rule; call Retain() to keep it past Release().
func (r *Rule) Mask() *array.Boolean { return r.mask }

// String returns the canonical expression, empty when nothing is filtered.
func (r *Rule) String() string { return r.expr }

// GoString returns the debug representation "MaskRule: <expression>".
func (r *Rule) GoString() string { return "MaskRule: " + r.expr }

// Len returns the number of rows covered by the mask.
func (r *Rule) Len() int { return r.mask.Len() }

// Selected returns the number of rows for which the mask is true.
func (r *Rule) Selected() int {
	n := 0
	for i := 0; i < r.mask.Len(); i++ {
		if r.mask.Value(i) {
			n++
		}
	}
	return n
}

// Bools copies the mask into a []bool.
func (r *Rule) Bools() []bool {
	out := make([]bool, r.mask.Len())
	for i := range out {
		out[i] = r.mask.Value(i)
	}
	return out
}

// Release frees the mask array.
func (r *Rule) Release() {
	if r.mask != nil {
		r.mask.Release()
		r.mask = nil
	}
}

// NewLeafRule evaluates a single condition against a column vector.
// The optional end value turns the condition into a range; op must then be
// one of "()", "[)", "(]", "[]".
func NewLeafRule(ctx context.Context, column Column, op string, value, end any) (*Rule, error) {
	operator, err := ParseOperator(op)
	if err != nil {
		return nil, err
	}
	leaf, err := NewLeaf(ColumnRef{Name: column.Name}, operator, value, end)
	if err != nil {
		return nil, err
	}
	if column.Data == nil {
		return nil, fmt.Errorf("%w: %q has no data", ErrUnknownColumn, column.Name)
	}
	return evalLeaf(ctx, leaf, column.Data)
}

// NewCombinedRule folds rules left to right with op ("&" or "|").
// A single rule is returned unchanged without looking at op; otherwise the
// result is a new rule and the inputs keep their own masks.
func NewCombinedRule(ctx context.Context, op string, rules ...*Rule) (*Rule, error) {
	switch len(rules) {
	case 0:
		return nil, fmt.Errorf("%w: nothing to combine", ErrMalformedSpecification)
	case 1:
		return rules[0], nil
	}
	operator, err := ParseOperator(op)
	if err != nil {
		return nil, err
	}
	if !operator.IsCombinator() {
		return nil, fmt.Errorf("%w: %q cannot combine rules", ErrUnknownOperator, op)
	}
	return foldRules(ctx, operator, rules)
}

func evalLeaf(ctx context.Context, leaf *Leaf, data arrow.Array) (*Rule, error) {
	if !leaf.HasEnd() {
		mask, err := compareScalar(ctx, leaf.Op, data, leaf.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", leaf, err)
		}
		return &Rule{mask: mask, expr: leaf.String()}, nil
	}

	leftOp, rightOp := leaf.Op.Bounds()
	left, err := compareScalar(ctx, leftOp, data, leaf.Value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", leaf, err)
	}
	defer left.Release()

	right, err := compareScalar(ctx, rightOp, data, leaf.End)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", leaf, err)
	}
	defer right.Release()

	mask, err := callBoolean(ctx, OpAnd.function(), left, right)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", leaf, err)
	}
	return &Rule{mask: mask, expr: leaf.String()}, nil
}

func foldRules(ctx context.Context, op Operator, rules []*Rule) (*Rule, error) {
	acc := rules[0].mask
	acc.Retain()
	expr := "(" + rules[0].expr + ")"

	for _, rule := range rules[1:] {
		next, err := callBoolean(ctx, op.function(), acc, rule.mask)
		acc.Release()
		if err != nil {
			return nil, fmt.Errorf("combine %s: %w", op, err)
		}
		acc = next
		expr += " " + op.String() + " (" + rule.expr + ")"
	}

	return &Rule{mask: acc, expr: expr}, nil
}

// allRows returns a rule selecting every one of n rows.
func allRows(mem memory.Allocator, n int) *Rule {
	bldr := array.NewBooleanBuilder(mem)
	defer bldr.Release()

	bldr.Reserve(n)
	for i := 0; i < n; i++ {
		bldr.UnsafeAppend(true)
	}
	return &Rule{mask: bldr.NewBooleanArray()}
}
