package query

import (
	"net/url"
	"sort"
	"strings"

	"kidspace/internal/common"
)

// Reserved query parameters that never become filters.
const (
	ParamLimit  = "limit"
	ParamOffset = "offset"
)

var nullSentinels = map[string]struct{}{"null": {}, "NULL": {}, "none": {}}

// ParseFilters converts query-string values into a FilterSet for res.
//
// A single value is an exact match (fuzzy for free-text fields), two values of the same
// parameter form a range, and a null sentinel selects IS NULL. Empty values are ignored.
// Unknown parameters and values that do not parse as the field's type are client errors.
func ParseFilters(res *Resource, values url.Values) (FilterSet, error) {
	set := NewFilterSet()

	consumed := map[string]bool{ParamLimit: true, ParamOffset: true}
	for _, alias := range res.RangeAliases {
		from := strings.TrimSpace(values.Get(alias.From))
		to := strings.TrimSpace(values.Get(alias.To))
		consumed[alias.From], consumed[alias.To] = true, true
		if from == "" && to == "" {
			continue
		}
		if from == "" || to == "" {
			return FilterSet{}, common.NewClientInputError("%s e %s devem ser informados juntos", alias.From, alias.To)
		}
		f, ok := res.Field(alias.Field)
		if !ok {
			return FilterSet{}, common.NewClientInputError("filtro desconhecido: %s", alias.Field)
		}
		lo, err := f.ParseValue(from)
		if err != nil {
			return FilterSet{}, common.NewClientInputError("%s", err.Error())
		}
		hi, err := f.ParseValue(to)
		if err != nil {
			return FilterSet{}, common.NewClientInputError("%s", err.Error())
		}
		set = set.With(f.Name, Between(lo, hi))
	}

	names := make([]string, 0, len(values))
	for name := range values {
		if !consumed[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	sort.SliceStable(names, func(i, j int) bool { return fieldRank(res, names[i]) < fieldRank(res, names[j]) })

	for _, name := range names {
		f, ok := res.Field(name)
		if !ok {
			return FilterSet{}, common.NewClientInputError("filtro desconhecido: %s", name)
		}
		c, present, err := parseCriterion(f, values[name])
		if err != nil {
			return FilterSet{}, err
		}
		if present {
			set = set.With(f.Name, c)
		}
	}
	return set, nil
}

func parseCriterion(f Field, raw []string) (Criterion, bool, error) {
	vals := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			vals = append(vals, v)
		}
	}

	switch len(vals) {
	case 0:
		return Criterion{}, false, nil
	case 1:
		v := vals[0]
		if _, isNull := nullSentinels[v]; isNull {
			return Null(), true, nil
		}
		if f.Fuzzy {
			return Matching(v), true, nil
		}
		parsed, err := f.ParseValue(v)
		if err != nil {
			return Criterion{}, false, common.NewClientInputError("%s", err.Error())
		}
		return EqualTo(parsed), true, nil
	case 2:
		lo, err := f.ParseValue(vals[0])
		if err != nil {
			return Criterion{}, false, common.NewClientInputError("%s", err.Error())
		}
		hi, err := f.ParseValue(vals[1])
		if err != nil {
			return Criterion{}, false, common.NewClientInputError("%s", err.Error())
		}
		return Between(lo, hi), true, nil
	}
	return Criterion{}, false, common.NewClientInputError("filtro %s aceita no máximo dois valores", f.Name)
}

// fieldRank keeps predicate order stable by declaring order; unknown names sort last.
func fieldRank(res *Resource, name string) int {
	for i, f := range res.Fields {
		if f.Name == name {
			return i
		}
	}
	return len(res.Fields)
}
