package repositories

import (
	"context"
	"errors"

	"kidspace/internal/models"
	"kidspace/internal/query"

	"github.com/jackc/pgx/v5"
)

// ChildImage is a stored photo blob of one child.
type ChildImage struct {
	ID   int64
	Data []byte
}

// ChildRepository handles the guardian relationship and image blobs of children.
type ChildRepository interface {
	UpsertGuardian(ctx context.Context, guardian models.Record) (int64, error)
	LinkGuardian(ctx context.Context, childID, guardianID int64, parentesco any) error
	UnlinkGuardians(ctx context.Context, childID int64) error
	ListImages(ctx context.Context, limit, offset int) ([]ChildImage, error)
}

type childRepo struct {
	db Database
}

func NewChildRepo(db Database) ChildRepository {
	return &childRepo{db: db}
}

// UpsertGuardian matches an existing guardian by documento (or by id when no documento is sent),
// updates it with the remaining fields, and inserts a new guardian otherwise.
func (r *childRepo) UpsertGuardian(ctx context.Context, guardian models.Record) (int64, error) {
	data := guardian.Clone()
	rawID, _ := data.Pop("id")

	var existing int64
	if doc, ok := data["documento"]; ok && doc != nil {
		err := r.db.QueryRow(ctx, "SELECT id FROM responsavel WHERE documento = $1", doc).Scan(&existing)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return 0, err
		}
	} else if id, ok := models.IDOf(rawID); ok {
		existing = id
	}

	records := NewRecordRepo(r.db)
	if existing != 0 {
		if len(data) > 0 {
			if _, err := records.Update(ctx, TableResponsavel, data, query.ByID("id", existing)); err != nil {
				return 0, err
			}
		}
		return existing, nil
	}
	return records.Insert(ctx, TableResponsavel, data)
}

func (r *childRepo) LinkGuardian(ctx context.Context, childID, guardianID int64, parentesco any) error {
	query := `
		INSERT INTO crianca_responsavel (crianca_id, responsavel_id, parentesco)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.Exec(ctx, query, childID, guardianID, parentesco)
	return err
}

func (r *childRepo) UnlinkGuardians(ctx context.Context, childID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM crianca_responsavel WHERE crianca_id = $1", childID)
	return err
}

func (r *childRepo) ListImages(ctx context.Context, limit, offset int) ([]ChildImage, error) {
	query := `
		SELECT id, imagem
		FROM crianca
		WHERE imagem IS NOT NULL
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []ChildImage
	for rows.Next() {
		var img ChildImage
		if err := rows.Scan(&img.ID, &img.Data); err != nil {
			return nil, err
		}
		if len(img.Data) == 0 {
			continue
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
