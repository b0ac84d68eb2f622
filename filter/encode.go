package filter

import "strings"

// Encoder renders built filter expressions in a SQL dialect.
type Encoder interface {
	// Encode renders one expression, or returns "" when the dialect cannot
	// express it.
	Encode(node Node) string

	// EncodeFilter renders a whole filter as a WHERE clause body, without
	// the WHERE keyword. Parts that cannot be rendered are dropped so the
	// result selects at least the rows the mask selects.
	EncodeFilter(node Node) string
}

var _ Encoder = (*DuckDBEncoder)(nil)

// EncoderOptions renames columns on the way into SQL.
type EncoderOptions struct {
	// ColumnMapping renames columns. Unmapped columns keep their names.
	ColumnMapping map[string]string

	// ColumnExpressions replaces a column with a raw SQL expression and
	// wins over ColumnMapping.
	ColumnExpressions map[string]string
}

// duckdbReserved holds the keywords DuckDB lists as reserved in
// duckdb_keywords(). Unreserved keywords such as DATE or DAY are valid
// bare column names.
var duckdbReserved = map[string]struct{}{}

func init() {
	for _, kw := range strings.Fields(`
		ALL ANALYSE ANALYZE AND ANY ARRAY AS ASC ASYMMETRIC BOTH CASE CAST
		CHECK COLLATE COLUMN CONSTRAINT CREATE DEFAULT DEFERRABLE DESC
		DESCRIBE DISTINCT DO ELSE END EXCEPT FALSE FETCH FOR FOREIGN FROM
		GRANT GROUP HAVING IN INITIALLY INTERSECT INTO LATERAL LEADING LIMIT
		NOT NULL OFFSET ON ONLY OR ORDER PIVOT PIVOT_LONGER PIVOT_WIDER
		PLACING PRIMARY QUALIFY REFERENCES RETURNING SELECT SHOW SOME
		SUMMARIZE SYMMETRIC TABLE THEN TO TRAILING TRUE UNION UNIQUE UNPIVOT
		USING VARIADIC WHEN WHERE WINDOW WITH`) {
		duckdbReserved[kw] = struct{}{}
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteIdentifier leaves simple identifiers that are not reserved bare and
// double-quotes everything else.
func quoteIdentifier(name string) string {
	if isBareIdentifier(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isBareIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	_, reserved := duckdbReserved[strings.ToUpper(name)]
	return !reserved
}
