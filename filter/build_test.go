package filter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildRendering(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want string
	}{
		{
			name: "single leaf",
			spec: Spec{Group("&", Cond("c", ">", 15))},
			want: "c > 15",
		},
		{
			name: "single range",
			spec: Spec{Group("&", Range("c", "[)", 15, 25))},
			want: "15 <= c < 25",
		},
		{
			name: "and of leaves",
			spec: Spec{Group("&", Cond("x", "<", 18), Cond("y", ">=", 40))},
			want: "(x < 18) & (y >= 40)",
		},
		{
			name: "nested singleton groups",
			spec: Spec{Nest("|",
				Group("1", Cond("x", "<", 18)),
				Group("2", Cond("y", ">=", 40)),
			)},
			want: "(x < 18) | (y >= 40)",
		},
		{
			name: "mixed nested and multi leaf",
			spec: Spec{Nest("|",
				Group("&", Cond("x", "<", 18), Cond("y", ">=", 40)),
				Group("None", Cond("x", ">", 25)),
			)},
			want: "((x < 18) & (y >= 40)) | (x > 25)",
		},
		{
			name: "left fold of three",
			spec: Spec{Group("|", Cond("x", "==", 1), Cond("x", "==", 2), Cond("x", "==", 3))},
			want: "(x == 1) | (x == 2) | (x == 3)",
		},
		{
			name: "singleton nested mapping adopts child",
			spec: Spec{Nest("anything", Group("&", Cond("x", "<", 5), Cond("y", ">", 50)))},
			want: "(x < 5) & (y > 50)",
		},
		{
			name: "deep nesting",
			spec: Spec{Nest("&",
				Nest("|",
					Group("a", Range("x", "[]", 2, 4)),
					Group("b", Cond("x", "!=", 20)),
				),
				Group("c", Cond("y", "<=", 55)),
			)},
			want: "((2 <= x <= 4) | (x != 20)) & (y <= 55)",
		},
		{
			name: "string and float values",
			spec: Spec{Group("&", Cond("site", "==", "reef"), Cond("aci", ">", 0.25))},
			want: "(site == reef) & (aci > 0.25)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Build(tt.spec, nil)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			if got := node.String(); got != tt.want {
				t.Errorf("expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	for _, spec := range []Spec{nil, {}} {
		node, err := Build(spec, nil)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if node != nil {
			t.Errorf("expected nil node for empty spec, got %v", node)
		}
	}
}

func TestBuildTree(t *testing.T) {
	spec := Spec{Nest("|",
		Group("&", Cond("x", "<", 18), Cond("y", ">=", 40)),
		Group("None", Cond("x", ">", 25)),
	)}

	node, err := Build(spec, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := &Combine{
		Op: OpOr,
		Children: []Node{
			&Combine{
				Op: OpAnd,
				Children: []Node{
					&Leaf{Column: ColumnRef{Name: "x"}, Op: OpLess, Value: int64(18)},
					&Leaf{Column: ColumnRef{Name: "y"}, Op: OpGreaterEqual, Value: int64(40)},
				},
			},
			&Leaf{Column: ColumnRef{Name: "x"}, Op: OpGreater, Value: int64(25)},
		},
	}
	if diff := cmp.Diff(want, node); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		opts *Options
		want error
	}{
		{
			name: "unknown leaf operator",
			spec: Spec{Group("&", Cond("x", "=", 1))},
			want: ErrUnknownOperator,
		},
		{
			name: "unknown combinator label",
			spec: Spec{Group("and", Cond("x", "<", 1), Cond("y", ">", 2))},
			want: ErrUnknownOperator,
		},
		{
			name: "comparison as combinator",
			spec: Spec{Group(">", Cond("x", "<", 1), Cond("y", ">", 2))},
			want: ErrUnknownOperator,
		},
		{
			name: "not as combinator",
			spec: Spec{Group("!", Cond("x", "<", 1), Cond("y", ">", 2))},
			want: ErrUnknownOperator,
		},
		{
			name: "end value with comparison",
			spec: Spec{Group("&", Range("x", ">", 1, 5))},
			want: ErrInvalidOperatorForRange,
		},
		{
			name: "range without end value",
			spec: Spec{Group("&", Cond("x", "[)", 1))},
			want: ErrInvalidOperatorForLeaf,
		},
		{
			name: "not as leaf",
			spec: Spec{Group("&", Cond("x", "!", 1))},
			want: ErrInvalidOperatorForLeaf,
		},
		{
			name: "collection without end value",
			spec: Spec{Group("&", Cond("x", "==", []any{1, 2}))},
			want: ErrInvalidValueKind,
		},
		{
			name: "collection as range bound",
			spec: Spec{Group("&", Range("x", "[]", []int{1, 2}, 5))},
			want: ErrInvalidValueKind,
		},
		{
			name: "null value",
			spec: Spec{Group("&", Cond("x", "==", nil))},
			want: ErrUnsupportedValue,
		},
		{
			name: "two root groups",
			spec: Spec{
				Group("&", Cond("x", "<", 1)),
				Group("|", Cond("y", ">", 2)),
			},
			want: ErrMalformedSpecification,
		},
		{
			name: "empty group",
			spec: Spec{Group("&")},
			want: ErrMalformedSpecification,
		},
		{
			name: "empty nested mapping",
			spec: Spec{Nest("&")},
			want: ErrMalformedSpecification,
		},
		{
			name: "strict placeholder label",
			spec: Spec{Group("None", Cond("x", ">", 25))},
			opts: &Options{StrictLabels: true},
			want: ErrUnknownOperator,
		},
		{
			name: "strict nested placeholder label",
			spec: Spec{Nest("|",
				Group("1", Cond("x", "<", 18)),
				Group("2", Cond("y", ">=", 40)),
			)},
			opts: &Options{StrictLabels: true},
			want: ErrUnknownOperator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.spec, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBuildStrictLabels(t *testing.T) {
	spec := Spec{Nest("|",
		Group("&", Cond("x", "<", 18), Cond("y", ">=", 40)),
		Group("&", Cond("x", ">", 25)),
	)}

	node, err := Build(spec, &Options{StrictLabels: true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := "((x < 18) & (y >= 40)) | (x > 25)"
	if node.String() != want {
		t.Errorf("expected '%s', got '%s'", want, node.String())
	}
}

func TestNewLeaf(t *testing.T) {
	leaf, err := NewLeaf(ColumnRef{Name: "c"}, OpGreater, 15, nil)
	if err != nil {
		t.Fatalf("NewLeaf failed: %v", err)
	}
	if leaf.String() != "c > 15" {
		t.Errorf("expected 'c > 15', got '%s'", leaf.String())
	}
	if leaf.HasEnd() {
		t.Error("comparison leaf should have no end value")
	}

	leaf, err = NewLeaf(ColumnRef{Name: "c"}, OpRangeLeftInclusive, 15, 25)
	if err != nil {
		t.Fatalf("NewLeaf failed: %v", err)
	}
	if leaf.String() != "15 <= c < 25" {
		t.Errorf("expected '15 <= c < 25', got '%s'", leaf.String())
	}
	if !leaf.HasEnd() {
		t.Error("range leaf should have an end value")
	}
}

func TestNewCombine(t *testing.T) {
	a := &Leaf{Column: ColumnRef{Name: "x"}, Op: OpLess, Value: int64(1)}
	b := &Leaf{Column: ColumnRef{Name: "y"}, Op: OpGreater, Value: int64(2)}

	// A single child is adopted without checking the operator.
	node, err := NewCombine(OpInvalid, a)
	if err != nil {
		t.Fatalf("NewCombine failed: %v", err)
	}
	if node != Node(a) {
		t.Errorf("expected the child itself, got %v", node)
	}

	if _, err := NewCombine(OpAnd); !errors.Is(err, ErrMalformedSpecification) {
		t.Errorf("expected ErrMalformedSpecification, got %v", err)
	}
	if _, err := NewCombine(OpEqual, a, b); !errors.Is(err, ErrUnknownOperator) {
		t.Errorf("expected ErrUnknownOperator, got %v", err)
	}

	node, err = NewCombine(OpOr, a, b)
	if err != nil {
		t.Fatalf("NewCombine failed: %v", err)
	}
	if node.String() != "(x < 1) | (y > 2)" {
		t.Errorf("unexpected rendering '%s'", node.String())
	}
}

func TestBuildDoesNotModifySpec(t *testing.T) {
	spec := Spec{Nest("|",
		Group("&", Cond("x", "<", 18), Cond("y", ">=", 40)),
		Group("None", Cond("x", ">", 25)),
	)}
	before, err := spec.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}

	if _, err := Build(spec, nil); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	after, err := spec.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("spec changed:\nbefore %s\nafter  %s", before, after)
	}
}

func TestColumnNames(t *testing.T) {
	spec := Spec{Nest("|",
		Group("&", Cond("y", "<", 18), Cond("x", ">=", 40)),
		Group("None", Range("y", "()", 1, 2)),
	)}

	got := ColumnNames(mustBuild(t, spec))
	if diff := cmp.Diff([]string{"y", "x"}, got); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if names := ColumnNames(nil); names != nil {
		t.Errorf("expected no columns for nil node, got %v", names)
	}
}
