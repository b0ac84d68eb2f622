package filter

import "errors"

// Errors returned while building or evaluating a filter.
// All of them abort the whole build; there is no partial mask.
var (
	// ErrUnknownOperator indicates a token that is not in the registry, or a
	// group label that must combine several rules but is not & or |.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrInvalidOperatorForRange indicates an end value given with a non-range operator.
	ErrInvalidOperatorForRange = errors.New("end value requires a range operator")

	// ErrInvalidOperatorForLeaf indicates a single-value condition whose
	// operator is not a comparison (range without end value, &, |, !).
	ErrInvalidOperatorForLeaf = errors.New("operator is not a comparison")

	// ErrInvalidValueKind indicates a collection where a scalar is required.
	ErrInvalidValueKind = errors.New("collection values require a range operator and end value")

	// ErrMalformedSpecification indicates a specification that does not
	// reduce to exactly one rule.
	ErrMalformedSpecification = errors.New("malformed filter specification")

	// ErrUnknownColumn indicates a column name missing from the record schema.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrColumnLength indicates a pre-bound column whose length differs from the record.
	ErrColumnLength = errors.New("column length does not match record")

	// ErrUnsupportedValue indicates a scalar type that cannot be compared.
	ErrUnsupportedValue = errors.New("unsupported value type")
)
