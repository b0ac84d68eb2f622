package filter

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// ParseMsgpack parses the MessagePack form of a filter specification.
// The layout mirrors the JSON form: a map of label to either an array of
// condition arrays or a nested map. Map order is preserved.
func ParseMsgpack(data []byte) (Spec, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var spec Spec
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&spec); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return spec, nil
}

var (
	_ msgpack.CustomEncoder = Spec(nil)
	_ msgpack.CustomDecoder = (*Spec)(nil)
)

// EncodeMsgpack implements msgpack.CustomEncoder.
func (s Spec) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(s)); err != nil {
		return err
	}
	for _, entry := range s {
		if err := enc.EncodeString(entry.Label); err != nil {
			return err
		}
		if entry.Nested != nil {
			if err := entry.Nested.EncodeMsgpack(enc); err != nil {
				return err
			}
			continue
		}
		if err := enc.EncodeArrayLen(len(entry.Tuples)); err != nil {
			return err
		}
		for _, t := range entry.Tuples {
			if err := enc.Encode(t.values()); err != nil {
				return fmt.Errorf("group %q: %w", entry.Label, err)
			}
		}
	}
	return nil
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (s *Spec) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	if n == -1 {
		*s = nil
		return nil
	}

	spec := make(Spec, 0, n)
	for i := 0; i < n; i++ {
		label, err := dec.DecodeString()
		if err != nil {
			return fmt.Errorf("%w: group key: %v", ErrMalformedSpecification, err)
		}

		code, err := dec.PeekCode()
		if err != nil {
			return err
		}
		switch {
		case isMsgpackMap(code):
			var nested Spec
			if err := nested.DecodeMsgpack(dec); err != nil {
				return fmt.Errorf("group %q: %w", label, err)
			}
			if nested == nil {
				nested = Spec{}
			}
			spec = append(spec, Entry{Label: label, Nested: nested})
		case isMsgpackArray(code):
			tuples, err := decodeMsgpackTuples(dec)
			if err != nil {
				return fmt.Errorf("group %q: %w", label, err)
			}
			spec = append(spec, Entry{Label: label, Tuples: tuples})
		default:
			return fmt.Errorf("%w: group %q must hold a list of conditions or a map",
				ErrMalformedSpecification, label)
		}
	}

	*s = spec
	return nil
}

func decodeMsgpackTuples(dec *msgpack.Decoder) ([]Tuple, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	tuples := make([]Tuple, 0, max(n, 0))
	for i := 0; i < n; i++ {
		raw, err := dec.DecodeSlice()
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w: expected a list", i, ErrMalformedSpecification)
		}
		t, err := tupleFromSlice(raw)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		tuples = append(tuples, t)
	}
	return tuples, nil
}

func isMsgpackMap(c byte) bool {
	return msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32
}

func isMsgpackArray(c byte) bool {
	return msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32
}
