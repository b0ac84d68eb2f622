package filter

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DuckDBEncoder encodes filter expressions to DuckDB SQL syntax.
type DuckDBEncoder struct {
	opts *EncoderOptions
}

// NewDuckDBEncoder creates a new DuckDB SQL encoder.
// If opts is nil, default options are used.
func NewDuckDBEncoder(opts *EncoderOptions) *DuckDBEncoder {
	if opts == nil {
		opts = &EncoderOptions{}
	}
	return &DuckDBEncoder{opts: opts}
}

// EncodeFilter converts a built filter to a WHERE clause body.
// Returns the condition portion without "WHERE" keyword.
// Returns empty string if the filter is nil or cannot be encoded.
func (e *DuckDBEncoder) EncodeFilter(node Node) string {
	if node == nil {
		return ""
	}
	return e.Encode(node)
}

// Encode converts a single expression to SQL.
// Returns empty string if expression is unsupported.
func (e *DuckDBEncoder) Encode(node Node) string {
	switch n := node.(type) {
	case *Leaf:
		return e.encodeLeaf(n)
	case *Combine:
		return e.encodeCombine(n)
	default:
		return ""
	}
}

// encodeLeaf encodes a comparison or range condition.
func (e *DuckDBEncoder) encodeLeaf(l *Leaf) string {
	col := e.encodeColumn(l.Column)
	if col == "" {
		return ""
	}

	if !l.HasEnd() {
		op := sqlComparison(l.Op)
		value := formatSQLValue(l.Value)
		if op == "" || value == "" {
			return ""
		}
		return col + " " + op + " " + value
	}

	leftOp, rightOp := l.Op.Bounds()
	start := formatSQLValue(l.Value)
	end := formatSQLValue(l.End)
	if start == "" || end == "" {
		return ""
	}
	if leftOp == OpGreaterEqual && rightOp == OpLessEqual {
		return "(" + col + " BETWEEN " + start + " AND " + end + ")"
	}
	return "(" + col + " " + sqlComparison(leftOp) + " " + start +
		" AND " + col + " " + sqlComparison(rightOp) + " " + end + ")"
}

// encodeCombine encodes AND/OR folds.
func (e *DuckDBEncoder) encodeCombine(c *Combine) string {
	var parts []string
	for _, child := range c.Children {
		encoded := e.Encode(child)
		if encoded != "" {
			parts = append(parts, encoded)
		}
	}

	// Handle unsupported expression rules:
	// - For OR: if any child is unsupported, skip entire OR
	// - For AND: skip unsupported children, keep others
	if c.Op == OpOr && len(parts) != len(c.Children) {
		return ""
	}

	if len(parts) == 0 {
		return ""
	}

	if len(parts) == 1 {
		return parts[0]
	}

	op := ") AND ("
	if c.Op == OpOr {
		op = ") OR ("
	}

	return "(" + strings.Join(parts, op) + ")"
}

// encodeColumn encodes a column reference.
// Pre-bound vectors have no SQL counterpart and are unsupported.
func (e *DuckDBEncoder) encodeColumn(ref ColumnRef) string {
	if ref.IsBound() {
		return ""
	}

	colName := ref.Name

	// Check for expression mapping first (takes precedence)
	if e.opts.ColumnExpressions != nil {
		if expr, ok := e.opts.ColumnExpressions[colName]; ok {
			return expr
		}
	}

	// Check for name mapping
	if e.opts.ColumnMapping != nil {
		if mapped, ok := e.opts.ColumnMapping[colName]; ok {
			colName = mapped
		}
	}

	return quoteIdentifier(colName)
}

func sqlComparison(op Operator) string {
	switch op {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "<>"
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return op.String()
	default:
		return ""
	}
}

// formatSQLValue encodes a scalar as a DuckDB literal.
func formatSQLValue(v any) string {
	switch x := normalizeValue(v).(type) {
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return quoteLiteral(x)
	case time.Time:
		return "TIMESTAMP " + quoteLiteral(x.UTC().Format("2006-01-02 15:04:05.999999"))
	default:
		return ""
	}
}
