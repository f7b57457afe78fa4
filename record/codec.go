package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/bytedance/sonic"
)

// ErrNotObject is returned when a JSON document is not an object.
var ErrNotObject = errors.New("record: JSON value is not an object")

// DecodeError reports an input line that could not be decoded into a record.
// Sources return it per line so the rest of the input can still be processed.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("record: line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Parse decodes a JSON object, preserving the order of its top-level keys.
func Parse(data []byte) (Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return Record{}, ErrNotObject
	}

	r := Record{values: make(map[string]any)}
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		k, err := jsonparser.ParseString(key)
		if err != nil {
			return fmt.Errorf("key: %w", err)
		}
		v, err := decodeValue(value, dataType)
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		r.Set(k, v)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return r, nil
}

func decodeValue(raw []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.String:
		return jsonparser.ParseString(raw)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(raw)
	case jsonparser.Number:
		return json.Number(raw), nil
	case jsonparser.Object, jsonparser.Array:
		// raw aliases the caller's buffer, which line readers reuse.
		if !sonic.Valid(raw) {
			return nil, fmt.Errorf("invalid JSON value %.40q", raw)
		}
		return json.RawMessage(bytes.Clone(raw)), nil
	default:
		return nil, fmt.Errorf("unsupported JSON value type %s", dataType)
	}
}

// MarshalJSON encodes the record as a JSON object with keys in record order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := sonic.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := sonic.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("record: field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the record, preserving key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
