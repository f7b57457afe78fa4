package record

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Well-known keys.
const (
	FieldID       = "id"
	FieldMetadata = "metadata"
)

// Record is an ordered mapping from keys to JSON-compatible values.
// The zero value is an empty record ready to use.
//
// Records decoded with Parse keep numbers as json.Number and nested objects
// and arrays as json.RawMessage, so values nobody sets are written back
// with their original digits and nested key order.
type Record struct {
	keys   []string
	values map[string]any
}

// New creates a record from alternating key-value pairs.
//
//	r := record.New("id", "q1", "input_text", "What is AI?")
func New(kvs ...any) Record {
	r := Record{}
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			r.Set(key, kvs[i+1])
		}
	}
	return r
}

// Set stores value under key. A new key is appended after the existing keys;
// an existing key keeps its position.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// String returns the value under key when it is a string.
// ok is false when the key is absent; err is set when the value is not a string.
func (r Record) String(key string) (s string, ok bool, err error) {
	v, ok := r.values[key]
	if !ok {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", true, fmt.Errorf("field %q is %T, not a string", key, v)
	}
	return s, true, nil
}

// ID returns the record identifier, or "" when absent. Numeric ids are
// rendered as their JSON text, never in exponent form for values set in Go.
func (r Record) ID() string {
	v, ok := r.values[FieldID]
	if !ok || v == nil {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", id)
	}
}

// Keys returns the keys in order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r Record) Len() int { return len(r.keys) }

// Clone returns a copy that can be modified without affecting r.
// Nested values are shared; operators replace values rather than mutate them.
func (r Record) Clone() Record {
	out := Record{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]any, len(r.values)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// Map returns the values as an unordered map.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
