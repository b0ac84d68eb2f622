package filter

import "fmt"

// Operator identifies a filter operator. The zero value is invalid.
type Operator uint8

const (
	OpInvalid Operator = iota

	// Comparison operators: column vs. scalar
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
	OpEqual
	OpNotEqual

	// Unary negation. Declared for token compatibility, not accepted by any constructor.
	OpNot

	// Boolean combinators
	OpAnd
	OpOr

	// Range operators: start <?> column <?> end
	OpRangeExclusive      // ()
	OpRangeLeftInclusive  // [)
	OpRangeRightInclusive // (]
	OpRangeInclusive      // []
)

// OperatorKind groups operators by how they can be used.
type OperatorKind uint8

const (
	KindInvalid OperatorKind = iota
	KindComparison
	KindUnary
	KindBoolean
	KindRange
)

func (k OperatorKind) String() string {
	switch k {
	case KindComparison:
		return "comparison"
	case KindUnary:
		return "unary"
	case KindBoolean:
		return "boolean"
	case KindRange:
		return "range"
	default:
		return "invalid"
	}
}

// operatorInfo is one row of the operator registry.
type operatorInfo struct {
	token string
	kind  OperatorKind

	// function is the Arrow compute function implementing the operator.
	function string

	// Range boundaries: column vs. start and column vs. end.
	left, right Operator
	// leftSym and rightSym render "start leftSym column rightSym end".
	leftSym, rightSym string
}

var operators = [...]operatorInfo{
	OpInvalid:      {},
	OpGreater:      {token: ">", kind: KindComparison, function: "greater"},
	OpGreaterEqual: {token: ">=", kind: KindComparison, function: "greater_equal"},
	OpLess:         {token: "<", kind: KindComparison, function: "less"},
	OpLessEqual:    {token: "<=", kind: KindComparison, function: "less_equal"},
	OpEqual:        {token: "==", kind: KindComparison, function: "equal"},
	OpNotEqual:     {token: "!=", kind: KindComparison, function: "not_equal"},
	OpNot:          {token: "!", kind: KindUnary},
	OpAnd:          {token: "&", kind: KindBoolean, function: "and"},
	OpOr:           {token: "|", kind: KindBoolean, function: "or"},
	OpRangeExclusive: {
		token: "()", kind: KindRange,
		left: OpGreater, right: OpLess, leftSym: "<", rightSym: "<",
	},
	OpRangeLeftInclusive: {
		token: "[)", kind: KindRange,
		left: OpGreaterEqual, right: OpLess, leftSym: "<=", rightSym: "<",
	},
	OpRangeRightInclusive: {
		token: "(]", kind: KindRange,
		left: OpGreater, right: OpLessEqual, leftSym: "<", rightSym: "<=",
	},
	OpRangeInclusive: {
		token: "[]", kind: KindRange,
		left: OpGreaterEqual, right: OpLessEqual, leftSym: "<=", rightSym: "<=",
	},
}

var operatorsByToken = func() map[string]Operator {
	m := make(map[string]Operator, len(operators))
	for op := OpGreater; int(op) < len(operators); op++ {
		m[operators[op].token] = op
	}
	return m
}()

// ParseOperator resolves an operator token such as ">=" or "[)".
// Returns an error wrapping ErrUnknownOperator for unrecognized tokens.
func ParseOperator(token string) (Operator, error) {
	op, ok := operatorsByToken[token]
	if !ok {
		return OpInvalid, fmt.Errorf("%w: %q", ErrUnknownOperator, token)
	}
	return op, nil
}

// Operators returns every registered operator in declaration order.
func Operators() []Operator {
	ops := make([]Operator, 0, len(operators)-1)
	for op := OpGreater; int(op) < len(operators); op++ {
		ops = append(ops, op)
	}
	return ops
}

func (o Operator) info() operatorInfo {
	if int(o) >= len(operators) {
		return operatorInfo{}
	}
	return operators[o]
}

// String returns the operator token.
func (o Operator) String() string {
	if t := o.info().token; t != "" {
		return t
	}
	return fmt.Sprintf("Operator(%d)", uint8(o))
}

// Kind returns the operator kind.
func (o Operator) Kind() OperatorKind { return o.info().kind }

// IsComparison reports whether o compares a column against a single value.
func (o Operator) IsComparison() bool { return o.Kind() == KindComparison }

// IsCombinator reports whether o can fold predicates (& or |).
func (o Operator) IsCombinator() bool { return o.Kind() == KindBoolean }

// IsRange reports whether o is one of the four range kinds.
func (o Operator) IsRange() bool { return o.Kind() == KindRange }

// Bounds returns the comparisons applied against the start and end values
// of a range operator. Both are OpInvalid for other kinds.
func (o Operator) Bounds() (left, right Operator) {
	info := o.info()
	return info.left, info.right
}

// Symbols returns the rendering symbols of a range operator.
func (o Operator) Symbols() (left, right string) {
	info := o.info()
	return info.leftSym, info.rightSym
}

// FormatRange renders "start leftSym column rightSym end".
func (o Operator) FormatRange(column, start, end string) string {
	l, r := o.Symbols()
	return start + " " + l + " " + column + " " + r + " " + end
}

func (o Operator) function() string { return o.info().function }
