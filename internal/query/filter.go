// Package query turns typed filter sets into parameterized SQL for tenant resources.
package query

import "fmt"

// PredicateKind selects how a criterion is rendered.
type PredicateKind int

const (
	Exact PredicateKind = iota
	Range
	Fuzzy
	IsNull
)

func (k PredicateKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Range:
		return "range"
	case Fuzzy:
		return "fuzzy"
	case IsNull:
		return "is_null"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Criterion is one filter value. Only the members of its kind are meaningful.
type Criterion struct {
	Kind  PredicateKind
	Value any
	Lo    any
	Hi    any
}

func EqualTo(v any) Criterion { return Criterion{Kind: Exact, Value: v} }
func Between(lo, hi any) Criterion { return Criterion{Kind: Range, Lo: lo, Hi: hi} }
func Matching(term string) Criterion { return Criterion{Kind: Fuzzy, Value: term} }
func Null() Criterion { return Criterion{Kind: IsNull} }

type filterEntry struct {
	field     string
	criterion Criterion
}

// FilterSet is an ordered, immutable set of field criteria. Adding a field twice replaces it.
type FilterSet struct {
	entries []filterEntry
}

// NewFilterSet is a convenience for building a set in place.
func NewFilterSet() FilterSet { return FilterSet{} }

// With returns a copy of the set carrying field -> c.
func (s FilterSet) With(field string, c Criterion) FilterSet {
	out := make([]filterEntry, 0, len(s.entries)+1)
	replaced := false
	for _, e := range s.entries {
		if e.field == field {
			out = append(out, filterEntry{field: field, criterion: c})
			replaced = true
			continue
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, filterEntry{field: field, criterion: c})
	}
	return FilterSet{entries: out}
}

// Get returns the criterion registered for field.
func (s FilterSet) Get(field string) (Criterion, bool) {
	for _, e := range s.entries {
		if e.field == field {
			return e.criterion, true
		}
	}
	return Criterion{}, false
}

func (s FilterSet) Len() int { return len(s.entries) }

// Fields returns the filtered field names in insertion order.
func (s FilterSet) Fields() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.field
	}
	return names
}

// Page carries optional LIMIT and OFFSET values.
type Page struct {
	Limit  *int
	Offset *int
}

// PageOf builds a page from plain ints. Negative values mean "not given".
func PageOf(limit, offset int) Page {
	var p Page
	if limit >= 0 {
		p.Limit = &limit
	}
	if offset >= 0 {
		p.Offset = &offset
	}
	return p
}
