package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseJSON parses the JSON form of a filter specification, preserving key order:
//
//	{"|": {"&": [["x", "<", 18], ["y", ">=", 40]], "None": [["x", ">", 25]]}}
//
// Each key maps to either a list of conditions or a nested object.
// A condition is [column, operator, value] or [column, operator, start, end].
// Empty input, null and {} all yield an empty specification.
//
// Error conditions:
//   - Invalid JSON syntax
//   - Root that is not an object, group values that are neither list nor object
//   - Conditions with the wrong arity or a non-string column/operator
func ParseJSON(data []byte) (Spec, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("filter: invalid JSON: %w", err)
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("filter: %w: root must be an object", ErrMalformedSpecification)
	}

	spec, err := parseJSONObject(dec)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("filter: invalid JSON: trailing data after specification")
	}
	return spec, nil
}

// parseJSONObject reads object members up to and including the closing brace.
func parseJSONObject(dec *json.Decoder) (Spec, error) {
	spec := Spec{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		label, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid JSON: expected key, got %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		switch tok {
		case json.Delim('{'):
			nested, err := parseJSONObject(dec)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", label, err)
			}
			spec = append(spec, Entry{Label: label, Nested: nested})
		case json.Delim('['):
			tuples, err := parseJSONTuples(dec)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", label, err)
			}
			spec = append(spec, Entry{Label: label, Tuples: tuples})
		default:
			return nil, fmt.Errorf("%w: group %q must hold a list of conditions or an object",
				ErrMalformedSpecification, label)
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return spec, nil
}

// parseJSONTuples reads conditions up to and including the closing bracket.
func parseJSONTuples(dec *json.Decoder) ([]Tuple, error) {
	tuples := []Tuple{}
	for i := 0; dec.More(); i++ {
		var raw []any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("condition %d: %w: expected a list", i, ErrMalformedSpecification)
		}
		t, err := tupleFromSlice(raw)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		tuples = append(tuples, t)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return tuples, nil
}

// tupleFromSlice converts a decoded [column, op, value(, end)] list.
func tupleFromSlice(raw []any) (Tuple, error) {
	if len(raw) != 3 && len(raw) != 4 {
		return Tuple{}, fmt.Errorf("%w: condition needs 3 or 4 elements, got %d",
			ErrMalformedSpecification, len(raw))
	}
	column, ok := raw[0].(string)
	if !ok {
		return Tuple{}, fmt.Errorf("%w: column must be a string, got %T", ErrMalformedSpecification, raw[0])
	}
	op, ok := raw[1].(string)
	if !ok {
		return Tuple{}, fmt.Errorf("%w: operator must be a string, got %T", ErrMalformedSpecification, raw[1])
	}

	t := Tuple{
		Column: ColumnRef{Name: column},
		Op:     op,
		Value:  normalizeValue(raw[2]),
	}
	if len(raw) == 4 {
		t.End = normalizeValue(raw[3])
	}
	return t, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Spec) UnmarshalJSON(data []byte) error {
	spec, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*s = spec
	return nil
}

// MarshalJSON implements json.Marshaler, writing keys in specification order.
// Pre-bound column vectors are written by name only.
func (s Spec) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s Spec) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, entry := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Label)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')

		if entry.Nested != nil {
			if err := entry.Nested.writeJSON(buf); err != nil {
				return err
			}
			continue
		}

		buf.WriteByte('[')
		for j, t := range entry.Tuples {
			if j > 0 {
				buf.WriteByte(',')
			}
			data, err := json.Marshal(t.values())
			if err != nil {
				return fmt.Errorf("group %q condition %d: %w", entry.Label, j, err)
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return nil
}

// values returns the tuple as its wire list.
func (t Tuple) values() []any {
	if t.End != nil {
		return []any{t.Column.Name, t.Op, t.Value, t.End}
	}
	return []any{t.Column.Name, t.Op, t.Value}
}
