package filter

import "fmt"

// NewLeaf validates and returns a single condition.
//
// Without an end value the operator must be a comparison and value a scalar.
// With an end value the operator must be one of the range kinds and both
// bounds must be scalars.
func NewLeaf(column ColumnRef, op Operator, value, end any) (*Leaf, error) {
	if end == nil {
		if isCollection(value) {
			return nil, fmt.Errorf("%s %s: %w", column.Name, op, ErrInvalidValueKind)
		}
		if !op.IsComparison() {
			return nil, fmt.Errorf("%s %s: %w", column.Name, op, ErrInvalidOperatorForLeaf)
		}
		if err := checkScalar(value); err != nil {
			return nil, fmt.Errorf("%s %s: %w", column.Name, op, err)
		}
		return &Leaf{Column: column, Op: op, Value: normalizeValue(value)}, nil
	}

	if !op.IsRange() {
		return nil, fmt.Errorf("%s %s: %w", column.Name, op, ErrInvalidOperatorForRange)
	}
	if err := checkScalar(value); err != nil {
		return nil, fmt.Errorf("%s %s start: %w", column.Name, op, err)
	}
	if err := checkScalar(end); err != nil {
		return nil, fmt.Errorf("%s %s end: %w", column.Name, op, err)
	}
	return &Leaf{Column: column, Op: op, Value: normalizeValue(value), End: normalizeValue(end)}, nil
}

// NewCombine folds children with a boolean combinator.
// A single child is returned unchanged and op is not checked.
func NewCombine(op Operator, children ...Node) (Node, error) {
	switch len(children) {
	case 0:
		return nil, fmt.Errorf("%w: nothing to combine", ErrMalformedSpecification)
	case 1:
		return children[0], nil
	}
	if !op.IsCombinator() {
		return nil, fmt.Errorf("%w: %q cannot combine rules", ErrUnknownOperator, op.String())
	}
	return &Combine{Op: op, Children: children}, nil
}

// leafFromTuple parses the operator token of a raw tuple and validates it.
func leafFromTuple(t Tuple) (*Leaf, error) {
	op, err := ParseOperator(t.Op)
	if err != nil {
		return nil, err
	}
	return NewLeaf(t.Column, op, t.Value, t.End)
}

// combineLabel folds children under a group label. The label is only parsed
// when there is something to fold, unless strict is set.
func combineLabel(label string, children []Node, strict bool) (Node, error) {
	if len(children) == 1 && !strict {
		return children[0], nil
	}
	op, err := ParseOperator(label)
	if err != nil {
		return nil, err
	}
	if strict && !op.IsCombinator() {
		return nil, fmt.Errorf("%w: %q cannot combine rules", ErrUnknownOperator, label)
	}
	return NewCombine(op, children...)
}

// ColumnNames returns the distinct names of the schema columns node reads,
// in first-use order. Pre-bound columns are not included.
func ColumnNames(node Node) []string {
	var names []string
	seen := make(map[string]bool)

	var visit func(Node)
	visit = func(n Node) {
		switch n := n.(type) {
		case *Leaf:
			if !n.Column.IsBound() && !seen[n.Column.Name] {
				seen[n.Column.Name] = true
				names = append(names, n.Column.Name)
			}
		case *Combine:
			for _, child := range n.Children {
				visit(child)
			}
		}
	}
	if node != nil {
		visit(node)
	}
	return names
}
