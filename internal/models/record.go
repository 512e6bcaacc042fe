package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Record is a loosely typed row: column name to value, as read from or written to a resource table.
type Record map[string]any

// ErrEmptyPayload is returned by DecodeRecord when the body holds no fields.
var ErrEmptyPayload = errors.New("empty payload")

// DecodeRecord reads a JSON object. Integral numbers become int64, other numbers float64.
func DecodeRecord(r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyPayload
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}
	return Record(convertNumbers(raw).(map[string]any)), nil
}

// DecodeRecordBytes is DecodeRecord over a byte slice.
func DecodeRecordBytes(b []byte) (Record, error) {
	return DecodeRecord(bytes.NewReader(b))
}

func convertNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, item := range t {
			t[k] = convertNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = convertNumbers(item)
		}
		return t
	}
	return v
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Pop removes key and returns its value.
func (r Record) Pop(key string) (any, bool) {
	v, ok := r[key]
	if ok {
		delete(r, key)
	}
	return v, ok
}

// Keys returns the column names in lexical order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FlattenReferences replaces nested objects under the given keys with their "id" member.
func (r Record) FlattenReferences(keys ...string) {
	for _, k := range keys {
		if nested, ok := r[k].(map[string]any); ok {
			r[k] = nested["id"]
		}
	}
}

// IDOf extracts an integer identifier from a scalar or from an object with an "id" member.
// ok is false when no usable identifier is present.
func IDOf(v any) (int64, bool) {
	if m, isMap := v.(map[string]any); isMap {
		v = m["id"]
	}
	switch t := v.(type) {
	case int64:
		return t, t != 0
	case int:
		return int64(t), t != 0
	case int32:
		return int64(t), t != 0
	case float64:
		if t == float64(int64(t)) {
			return int64(t), t != 0
		}
	case string:
		if i, err := strconv.ParseInt(t, 10, 64); err == nil {
			return i, i != 0
		}
	}
	return 0, false
}

// IDsOf collects identifiers from a list of scalars or objects. Entries without an id are skipped.
func IDsOf(v any) ([]int64, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if id, ok := IDOf(item); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Records converts a JSON list of objects into records.
func Records(v any) ([]Record, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected an object, got %T", item)
		}
		out = append(out, Record(m))
	}
	return out, nil
}
