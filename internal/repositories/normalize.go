package repositories

import (
	"encoding/json"
	"strings"
	"time"

	"kidspace/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const timestampLayout = "2006-01-02T15:04:05.999999"

// CollectRecords drains rows into JSON-ready records.
func CollectRecords(rows pgx.Rows) ([]models.Record, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := make([]models.Record, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make(models.Record, len(values))
		for i, v := range values {
			var oid uint32
			name := ""
			if i < len(fields) {
				oid = fields[i].DataTypeOID
				name = fields[i].Name
			}
			rec[name] = NormalizeValue(v, oid)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizeValue converts one column value for JSON output.
//
// Dates and times become ISO-8601 strings, numerics become float64 and strings that look like
// JSON documents are decoded. A text column whose content happens to be valid JSON is decoded too.
func NormalizeValue(v any, oid uint32) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		switch oid {
		case pgtype.DateOID:
			return t.Format(time.DateOnly)
		case pgtype.TimestampOID:
			return t.Format(timestampLayout)
		}
		return t.Format(time.RFC3339Nano)
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(t).String()
	case string:
		return sniffJSON(t)
	case map[string]any, []any:
		return t
	}
	return v
}

func sniffJSON(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	switch trimmed[0] {
	case '{', '[', '"':
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded
		}
	}
	return s
}
