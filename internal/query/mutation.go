package query

import (
	"regexp"
	"strconv"
	"strings"

	"kidspace/internal/common"
	"kidspace/internal/models"

	"github.com/jackc/pgx/v5"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Equal is an identity condition used by UPDATE and DELETE.
type Equal struct {
	Column string
	Value  any
}

// ByID is the usual single-column identity condition.
func ByID(column string, id int64) Equal {
	return Equal{Column: column, Value: id}
}

// QuoteColumn validates a payload key and quotes it for use as a column name.
func QuoteColumn(name string) (string, error) {
	if !identifierPattern.MatchString(name) {
		return "", common.NewClientInputError("campo inválido: %q", name)
	}
	return pgx.Identifier{name}.Sanitize(), nil
}

// InsertStatement renders INSERT for the record's columns. When returning is set the
// statement ends with RETURNING <returning>.
func InsertStatement(table string, rec models.Record, returning string) (string, []any, error) {
	if len(rec) == 0 {
		return "", nil, common.NewClientInputError("nenhum campo informado")
	}

	keys := rec.Keys()
	cols := make([]string, len(keys))
	holders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		col, err := QuoteColumn(k)
		if err != nil {
			return "", nil, err
		}
		cols[i] = col
		holders[i] = "$" + strconv.Itoa(i+1)
		args[i] = rec[k]
	}

	sql := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(holders, ", ") + ")"
	if returning != "" {
		ret, err := QuoteColumn(returning)
		if err != nil {
			return "", nil, err
		}
		sql += " RETURNING " + ret
	}
	return sql, args, nil
}

// SetClause renders "col" = $n pairs for every record key not in skip, numbering from start.
func SetClause(rec models.Record, start int, skip ...string) (string, []any, error) {
	excluded := make(map[string]bool, len(skip))
	for _, s := range skip {
		excluded[s] = true
	}

	var (
		parts []string
		args  []any
	)
	for _, k := range rec.Keys() {
		if excluded[k] {
			continue
		}
		col, err := QuoteColumn(k)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, col+" = $"+strconv.Itoa(start+len(args)))
		args = append(args, rec[k])
	}
	if len(parts) == 0 {
		return "", nil, common.NewClientInputError("nenhum campo para atualizar")
	}
	return strings.Join(parts, ", "), args, nil
}

// UpdateStatement renders UPDATE with SET taken from the record and WHERE from the identity
// conditions. Identity columns present in the record are never part of SET.
func UpdateStatement(table string, rec models.Record, where ...Equal) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, common.NewClientInputError("identificador obrigatório para atualização")
	}
	skip := make([]string, len(where))
	for i, w := range where {
		skip[i] = w.Column
	}

	set, args, err := SetClause(rec, 1, skip...)
	if err != nil {
		return "", nil, err
	}
	cond, condArgs, err := whereClause(where, len(args)+1)
	if err != nil {
		return "", nil, err
	}
	return "UPDATE " + table + " SET " + set + " WHERE " + cond, append(args, condArgs...), nil
}

// DeleteStatement renders DELETE restricted by the identity conditions.
func DeleteStatement(table string, where ...Equal) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, common.NewClientInputError("identificador obrigatório para exclusão")
	}
	cond, args, err := whereClause(where, 1)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + table + " WHERE " + cond, args, nil
}

func whereClause(where []Equal, start int) (string, []any, error) {
	parts := make([]string, len(where))
	args := make([]any, len(where))
	for i, w := range where {
		col, err := QuoteColumn(w.Column)
		if err != nil {
			return "", nil, err
		}
		parts[i] = col + " = $" + strconv.Itoa(start+i)
		args[i] = w.Value
	}
	return strings.Join(parts, " AND "), args, nil
}
