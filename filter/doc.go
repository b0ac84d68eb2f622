// Package filter compiles declarative filter specifications into row masks
// over Arrow records.
//
// A specification is a nested mapping from group labels to either a list of
// conditions or another mapping:
//
//	{"|": {"&": [["x", "<", 18], ["y", ">=", 40]], "None": [["x", ">", 25]]}}
//
// This package enables Flight server developers to:
//   - Parse specifications from JSON or MessagePack, preserving key order
//   - Build them into an expression tree (Leaf and Combine nodes)
//   - Evaluate the tree against an arrow.RecordBatch into a boolean mask
//   - Render the canonical expression string, e.g. "((x < 18) & (y >= 40)) | (x > 25)"
//   - Encode the tree to a DuckDB WHERE clause
//
// # Basic Usage
//
//	spec, err := filter.ParseJSON(data)
//	if err != nil {
//	    return err // Malformed JSON or specification
//	}
//
//	rule, err := filter.Evaluate(ctx, rec, spec, nil)
//	if err != nil {
//	    return err
//	}
//	defer rule.Release()
//
//	fmt.Println(rule.String()) // canonical expression
//	selected, err := filter.Select(ctx, rec, rule)
//
// # Operators
//
// Comparisons: > >= < <= == !=. Combinators: & |. Ranges take a start and
// an end value: () [) (] []; "[)" means start <= column < end. The token !
// is recognized but no condition or group accepts it.
//
// # Group Labels
//
// A label is only parsed as an operator when its group folds two or more
// rules, so single-child groups may use placeholders such as "1" or "None".
// Set Options.StrictLabels to require & or | on every label.
//
// Comparisons against null values yield false, so masks never contain nulls.
//
// # Encoding
//
//	enc := filter.NewDuckDBEncoder(&filter.EncoderOptions{
//	    ColumnMapping: map[string]string{"aci": "acoustic_complexity"},
//	})
//	where := enc.EncodeFilter(node)
//
// Conditions on pre-bound column vectors cannot be encoded. Under & they are
// skipped, under | the whole group is dropped, which yields the widest
// possible WHERE clause.
package filter
