package services

import (
	"context"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/internal/query"
	"kidspace/internal/repositories"

	"go.uber.org/zap"
)

const guardiansKey = "responsaveis"

// ChildService writes a child together with its guardians as one unit of work.
type ChildService interface {
	Create(ctx context.Context, db repositories.TxStarter, rec models.Record) (int64, error)
	Update(ctx context.Context, db repositories.TxStarter, id int64, rec models.Record) error
	Delete(ctx context.Context, db repositories.TxStarter, id int64) error
}

type childService struct {
	logger *zap.Logger
}

func NewChildService(logger *zap.Logger) ChildService {
	return &childService{logger: logger}
}

func (s *childService) Create(ctx context.Context, db repositories.TxStarter, rec models.Record) (int64, error) {
	data := rec.Clone()
	guardians, _, err := popGuardians(data)
	if err != nil {
		return 0, err
	}
	data.Pop("id")
	if len(data) == 0 {
		return 0, common.NewClientInputError(common.MsgNoData)
	}

	var childID int64
	err = repositories.WithTx(ctx, db, func(tx repositories.Database) error {
		id, err := repositories.NewRecordRepo(tx).Insert(ctx, repositories.TableCrianca, data)
		if err != nil {
			return err
		}
		childID = id
		return saveGuardians(ctx, tx, id, guardians)
	})
	if err != nil {
		s.logger.Warn("child create rolled back", zap.Error(err))
		return 0, common.NewPersistenceError(err)
	}
	return childID, nil
}

// Update rewrites the child's columns and, when the payload carries a guardian list, replaces
// every guardian link with the new list.
func (s *childService) Update(ctx context.Context, db repositories.TxStarter, id int64, rec models.Record) error {
	data := rec.Clone()
	guardians, replace, err := popGuardians(data)
	if err != nil {
		return err
	}
	data.Pop("id")

	err = repositories.WithTx(ctx, db, func(tx repositories.Database) error {
		records := repositories.NewRecordRepo(tx)
		exists, err := records.Exists(ctx, repositories.TableCrianca, id)
		if err != nil {
			return err
		}
		if !exists {
			return common.NewNotFoundError("Criança não encontrada")
		}

		if len(data) > 0 {
			if _, err := records.Update(ctx, repositories.TableCrianca, data, query.ByID("id", id)); err != nil {
				return err
			}
		}
		if !replace {
			return nil
		}
		if err := repositories.NewChildRepo(tx).UnlinkGuardians(ctx, id); err != nil {
			return err
		}
		return saveGuardians(ctx, tx, id, guardians)
	})
	if err != nil {
		return common.NewPersistenceError(err)
	}
	return nil
}

func (s *childService) Delete(ctx context.Context, db repositories.TxStarter, id int64) error {
	err := repositories.WithTx(ctx, db, func(tx repositories.Database) error {
		if err := repositories.NewChildRepo(tx).UnlinkGuardians(ctx, id); err != nil {
			return err
		}
		affected, err := repositories.NewRecordRepo(tx).Delete(ctx, repositories.TableCrianca, query.ByID("id", id))
		if err != nil {
			return err
		}
		if affected == 0 {
			return common.NewNotFoundError("Criança não encontrada")
		}
		return nil
	})
	if err != nil {
		return common.NewPersistenceError(err)
	}
	return nil
}

func popGuardians(data models.Record) ([]models.Record, bool, error) {
	raw, present := data.Pop(guardiansKey)
	if !present || raw == nil {
		return nil, false, nil
	}
	guardians, err := models.Records(raw)
	if err != nil {
		return nil, false, common.NewClientInputError("%s inválido: %v", guardiansKey, err)
	}
	return guardians, true, nil
}

func saveGuardians(ctx context.Context, tx repositories.Database, childID int64, guardians []models.Record) error {
	children := repositories.NewChildRepo(tx)
	for _, g := range guardians {
		guardian := g.Clone()
		parentesco, _ := guardian.Pop("parentesco")
		guardianID, err := children.UpsertGuardian(ctx, guardian)
		if err != nil {
			return err
		}
		if err := children.LinkGuardian(ctx, childID, guardianID, parentesco); err != nil {
			return err
		}
	}
	return nil
}
