package repositories

import (
	"context"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/internal/query"
)

// RecordRepository runs generic reads and writes against one tenant connection.
type RecordRepository interface {
	List(ctx context.Context, res *query.Resource, filters query.FilterSet, page query.Page) ([]models.Record, error)
	GetByID(ctx context.Context, res *query.Resource, id int64) (models.Record, error)
	Insert(ctx context.Context, table string, rec models.Record) (int64, error)
	Update(ctx context.Context, table string, rec models.Record, where ...query.Equal) (int64, error)
	Delete(ctx context.Context, table string, where ...query.Equal) (int64, error)
	Exists(ctx context.Context, table string, id int64) (bool, error)
}

type recordRepo struct {
	db Database
}

func NewRecordRepo(db Database) RecordRepository {
	return &recordRepo{db: db}
}

func (r *recordRepo) List(ctx context.Context, res *query.Resource, filters query.FilterSet, page query.Page) ([]models.Record, error) {
	sql, args, err := query.Build(res, filters, page)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return CollectRecords(rows)
}

func (r *recordRepo) GetByID(ctx context.Context, res *query.Resource, id int64) (models.Record, error) {
	filters := query.NewFilterSet().With(res.IdentityColumn(), query.EqualTo(id))
	records, err := r.List(ctx, res, filters, query.Page{})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, common.NewNotFoundError("")
	}
	return records[0], nil
}

// Insert writes rec and returns the generated id.
func (r *recordRepo) Insert(ctx context.Context, table string, rec models.Record) (int64, error) {
	sql, args, err := query.InsertStatement(table, rec, "id")
	if err != nil {
		return 0, err
	}
	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Update returns the number of rows matched by the identity conditions.
func (r *recordRepo) Update(ctx context.Context, table string, rec models.Record, where ...query.Equal) (int64, error) {
	sql, args, err := query.UpdateStatement(table, rec, where...)
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *recordRepo) Delete(ctx context.Context, table string, where ...query.Equal) (int64, error) {
	sql, args, err := query.DeleteStatement(table, where...)
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *recordRepo) Exists(ctx context.Context, table string, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
