package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueType is the declared type of a filterable field.
type ValueType int

const (
	TypeString ValueType = iota
	TypeInt
	TypeBool
	TypeFloat
	TypeDate
	TypeTimestamp
)

func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "inteiro"
	case TypeBool:
		return "booleano"
	case TypeFloat:
		return "número"
	case TypeDate:
		return "data"
	case TypeTimestamp:
		return "data/hora"
	}
	return "texto"
}

// Field is one filterable field of a resource.
type Field struct {
	Name   string
	Column string
	Type   ValueType
	// Text fields matched with accent/case-insensitive LIKE instead of equality.
	Fuzzy bool
	// Optional correlated subquery (without its WHERE terminator) the predicate is nested into,
	// e.g. "SELECT 1 FROM x WHERE x.parent = c.id". The predicate is appended with AND inside EXISTS.
	Exists string
}

// RangeAlias maps a pair of query parameters onto a BETWEEN over one field.
type RangeAlias struct {
	From  string
	To    string
	Field string
}

// Resource describes a tenant table exposed over REST.
type Resource struct {
	Name  string
	Table string
	// Select is the base statement up to and including FROM and JOINs.
	Select       string
	Fields       []Field
	SearchField  string
	DefaultOrder string
	Identity     string
	References   []string
	Required     []string
	// Columns stripped from every record returned to clients. A dotted name such as
	// usuario.senha strips a member of an embedded object.
	Hidden       []string
	RangeAliases []RangeAlias
}

// Field looks up a filterable field by name.
func (r *Resource) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// IdentityColumn returns the primary key column, "id" when unset.
func (r *Resource) IdentityColumn() string {
	if r.Identity == "" {
		return "id"
	}
	return r.Identity
}

// ParseValue converts a raw query-string value into the field's declared type.
func (f Field) ParseValue(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Type {
	case TypeInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("valor %q inválido para %s (%s)", raw, f.Name, f.Type)
		}
		return n, nil
	case TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("valor %q inválido para %s (%s)", raw, f.Name, f.Type)
		}
		return b, nil
	case TypeFloat:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("valor %q inválido para %s (%s)", raw, f.Name, f.Type)
		}
		return n, nil
	case TypeDate:
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, fmt.Errorf("valor %q inválido para %s (%s)", raw, f.Name, f.Type)
		}
		return d, nil
	case TypeTimestamp:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("valor %q inválido para %s (%s)", raw, f.Name, f.Type)
	}
	return raw, nil
}

// accepts reports whether v is a valid Go value for the field's type.
func (f Field) accepts(v any) bool {
	switch f.Type {
	case TypeInt:
		switch v.(type) {
		case int, int32, int64:
			return true
		}
	case TypeBool:
		_, ok := v.(bool)
		return ok
	case TypeFloat:
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
	case TypeDate, TypeTimestamp:
		_, ok := v.(time.Time)
		return ok
	default:
		_, ok := v.(string)
		return ok
	}
	return false
}
