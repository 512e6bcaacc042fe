package repositories

import (
	"context"

	"kidspace/internal/models"

	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	GetByLogin(ctx context.Context, login string) (models.Record, error)
}

type userRepo struct {
	db Database
}

func NewUserRepo(db Database) UserRepository {
	return &userRepo{db: db}
}

// GetByLogin returns pgx.ErrNoRows when no user has that login.
func (r *userRepo) GetByLogin(ctx context.Context, login string) (models.Record, error) {
	rows, err := r.db.Query(ctx, "SELECT * FROM usuario WHERE login = $1 LIMIT 1", login)
	if err != nil {
		return nil, err
	}
	records, err := CollectRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pgx.ErrNoRows
	}
	return records[0], nil
}
