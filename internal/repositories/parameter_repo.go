package repositories

import (
	"context"

	"kidspace/internal/models"
	"kidspace/internal/query"
)

// ParameterRepository manages the single-row parametro table.
type ParameterRepository interface {
	Get(ctx context.Context) (models.Record, bool, error)
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, rec models.Record) error
	Update(ctx context.Context, rec models.Record) (int64, error)
}

type parameterRepo struct {
	db Database
}

func NewParameterRepo(db Database) ParameterRepository {
	return &parameterRepo{db: db}
}

func (r *parameterRepo) Get(ctx context.Context) (models.Record, bool, error) {
	rows, err := r.db.Query(ctx, "SELECT * FROM parametro LIMIT 1")
	if err != nil {
		return nil, false, err
	}
	records, err := CollectRecords(rows)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return records[0], true, nil
}

func (r *parameterRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM parametro").Scan(&count)
	return count, err
}

func (r *parameterRepo) Insert(ctx context.Context, rec models.Record) error {
	sql, args, err := query.InsertStatement(TableParametro, rec, "")
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Update rewrites the single settings row, whatever its key.
func (r *parameterRepo) Update(ctx context.Context, rec models.Record) (int64, error) {
	set, args, err := query.SetClause(rec, 1)
	if err != nil {
		return 0, err
	}
	sql := "UPDATE parametro SET " + set + " WHERE ctid = (SELECT ctid FROM parametro LIMIT 1)"
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
