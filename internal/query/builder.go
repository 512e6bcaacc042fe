package query

import (
	"fmt"
	"strconv"
	"strings"

	"kidspace/internal/common"
)

// statement accumulates positional arguments so every placeholder is paired with its value.
type statement struct {
	args []any
}

func (s *statement) bind(v any) string {
	s.args = append(s.args, v)
	return "$" + strconv.Itoa(len(s.args))
}

// Build renders the list statement for res. Predicates appear in the order the filters were added,
// joined by AND; ordering uses similarity ranking when the search field is fuzzily filtered; LIMIT and
// OFFSET are appended last and only when given.
func Build(res *Resource, filters FilterSet, page Page) (string, []any, error) {
	st := &statement{}

	where := make([]string, 0, filters.Len())
	for _, e := range filters.entries {
		f, ok := res.Field(e.field)
		if !ok {
			return "", nil, common.NewClientInputError("filtro desconhecido: %s", e.field)
		}
		pred, err := st.predicate(f, e.criterion)
		if err != nil {
			return "", nil, err
		}
		if f.Exists != "" {
			pred = "EXISTS (" + f.Exists + " AND " + pred + ")"
		}
		where = append(where, pred)
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(res.Select))
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	if order := st.order(res, filters); order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(order)
	}

	if page.Limit != nil {
		if *page.Limit < 0 {
			return "", nil, common.NewClientInputError("limit inválido: %d", *page.Limit)
		}
		sb.WriteString(" LIMIT ")
		sb.WriteString(st.bind(*page.Limit))
	}
	if page.Offset != nil {
		if *page.Offset < 0 {
			return "", nil, common.NewClientInputError("offset inválido: %d", *page.Offset)
		}
		sb.WriteString(" OFFSET ")
		sb.WriteString(st.bind(*page.Offset))
	}

	return sb.String(), st.args, nil
}

func (s *statement) predicate(f Field, c Criterion) (string, error) {
	switch c.Kind {
	case Exact:
		if !f.accepts(c.Value) {
			return "", invalidValue(f, c.Value)
		}
		return fmt.Sprintf("%s = %s", f.Column, s.bind(c.Value)), nil
	case Range:
		if !f.accepts(c.Lo) {
			return "", invalidValue(f, c.Lo)
		}
		if !f.accepts(c.Hi) {
			return "", invalidValue(f, c.Hi)
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", f.Column, s.bind(c.Lo), s.bind(c.Hi)), nil
	case Fuzzy:
		term, ok := c.Value.(string)
		if !ok || f.Type != TypeString {
			return "", common.NewClientInputError("busca textual não suportada para %s", f.Name)
		}
		return fmt.Sprintf("unaccent(lower(%s)) LIKE unaccent(lower(%s))", f.Column, s.bind(LikePattern(term))), nil
	case IsNull:
		return f.Column + " IS NULL", nil
	}
	return "", common.NewClientInputError("tipo de filtro inválido para %s: %s", f.Name, c.Kind)
}

func (s *statement) order(res *Resource, filters FilterSet) string {
	if res.SearchField != "" {
		if c, ok := filters.Get(res.SearchField); ok && c.Kind == Fuzzy {
			if f, ok := res.Field(res.SearchField); ok {
				term, _ := c.Value.(string)
				return fmt.Sprintf("similarity(unaccent(lower(%s)), unaccent(lower(%s))) DESC",
					f.Column, s.bind(strings.ToLower(strings.TrimSpace(term))))
			}
		}
	}
	return res.DefaultOrder
}

// LikePattern lower-cases and trims term and wraps it in % unless the caller supplied a wildcard.
func LikePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if strings.Contains(term, "%") {
		return term
	}
	return "%" + term + "%"
}

func invalidValue(f Field, v any) error {
	return common.NewClientInputError("valor %v inválido para %s (%s)", v, f.Name, f.Type)
}
