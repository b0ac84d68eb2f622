package filter

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ColumnRef names the column a condition applies to.
// When Data is set it is used as a pre-extracted column vector and Name is
// only used for rendering; otherwise Name is looked up in the record schema.
type ColumnRef struct {
	Name string
	Data arrow.Array
}

// IsBound reports whether the reference carries its own column vector.
func (c ColumnRef) IsBound() bool { return c.Data != nil }

// Tuple is one raw condition of the specification wire format:
// (column, operator, value) or (column, operator, value, end).
type Tuple struct {
	Column ColumnRef
	Op     string
	Value  any
	// End is nil when the condition has no end value.
	End any
}

// Entry is one key of a specification mapping. Exactly one of Tuples and
// Nested is populated.
type Entry struct {
	// Label is a combinator token (& or |) or, for single-child groups, any
	// placeholder string.
	Label  string
	Tuples []Tuple
	Nested Spec
}

// Spec is the nested-mapping filter specification in key order.
// An empty Spec selects every row.
type Spec []Entry

// IsEmpty reports whether the specification selects every row.
func (s Spec) IsEmpty() bool { return len(s) == 0 }

// Cond returns a (column, op, value) condition on a named column.
func Cond(column, op string, value any) Tuple {
	return Tuple{Column: ColumnRef{Name: column}, Op: op, Value: value}
}

// Range returns a (column, op, start, end) condition on a named column.
func Range(column, op string, start, end any) Tuple {
	return Tuple{Column: ColumnRef{Name: column}, Op: op, Value: start, End: end}
}

// Bound returns a column reference carrying its own vector.
func Bound(name string, data arrow.Array) ColumnRef {
	return ColumnRef{Name: name, Data: data}
}

// Group returns an entry labelling a list of conditions.
func Group(label string, tuples ...Tuple) Entry {
	if tuples == nil {
		tuples = []Tuple{}
	}
	return Entry{Label: label, Tuples: tuples}
}

// Nest returns an entry labelling a nested mapping.
func Nest(label string, entries ...Entry) Entry {
	if entries == nil {
		entries = Spec{}
	}
	return Entry{Label: label, Nested: entries}
}

// Node is a built filter expression: *Leaf or *Combine.
type Node interface {
	// String returns the canonical rendering of the expression.
	String() string

	nodeMarker()
}

// Leaf is a single column-vs-value or column-vs-range condition.
type Leaf struct {
	Column ColumnRef
	Op     Operator
	Value  any
	// End is set iff Op is a range operator.
	End any
}

func (*Leaf) nodeMarker() {}

// HasEnd reports whether the leaf is a range condition.
func (l *Leaf) HasEnd() bool { return l.End != nil }

// String renders "column op value" or "start leftSym column rightSym end".
func (l *Leaf) String() string {
	if l.HasEnd() {
		return l.Op.FormatRange(l.Column.Name, formatValue(l.Value), formatValue(l.End))
	}
	return l.Column.Name + " " + l.Op.String() + " " + formatValue(l.Value)
}

// Combine folds two or more children left to right with a boolean combinator.
type Combine struct {
	Op       Operator
	Children []Node
}

func (*Combine) nodeMarker() {}

// String renders "(child0) op (child1) op ...".
func (c *Combine) String() string {
	var sb strings.Builder
	for i, child := range c.Children {
		if i > 0 {
			sb.WriteString(" ")
			sb.WriteString(c.Op.String())
			sb.WriteString(" ")
		}
		sb.WriteString("(")
		sb.WriteString(child.String())
		sb.WriteString(")")
	}
	return sb.String()
}

// Options configures Build, Compile and Evaluate.
// A nil *Options uses defaults.
type Options struct {
	// StrictLabels requires every group label to be a boolean combinator,
	// including labels of single-child groups, which are otherwise never
	// checked and may be placeholders such as "1" or "None".
	StrictLabels bool

	// Allocator is used for mask arrays.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator
}
