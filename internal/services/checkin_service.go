package services

import (
	"context"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/internal/query"
	"kidspace/internal/repositories"

	"go.uber.org/zap"
)

const (
	activitiesKey        = "atividades"
	checkoutGuardiansKey = "responsaveis_possiveis_checkout"
)

// CheckinService writes a check-in together with its activity and checkout-guardian links.
type CheckinService interface {
	Create(ctx context.Context, db repositories.TxStarter, rec models.Record) (int64, error)
	Update(ctx context.Context, db repositories.TxStarter, id int64, rec models.Record) error
	Delete(ctx context.Context, db repositories.TxStarter, id int64) error
}

type checkinService struct {
	logger *zap.Logger
}

func NewCheckinService(logger *zap.Logger) CheckinService {
	return &checkinService{logger: logger}
}

type checkinLinks struct {
	activities        []int64
	replaceActivities bool
	guardians         []int64
	replaceGuardians  bool
}

func splitCheckin(rec models.Record) (models.Record, checkinLinks, error) {
	data := rec.Clone()
	var links checkinLinks

	if raw, ok := data.Pop(activitiesKey); ok {
		ids, err := models.IDsOf(raw)
		if err != nil {
			return nil, links, common.NewClientInputError("%s inválido: %v", activitiesKey, err)
		}
		links.activities, links.replaceActivities = ids, true
	}
	if raw, ok := data.Pop(checkoutGuardiansKey); ok {
		ids, err := models.IDsOf(raw)
		if err != nil {
			return nil, links, common.NewClientInputError("%s inválido: %v", checkoutGuardiansKey, err)
		}
		links.guardians, links.replaceGuardians = ids, true
	}
	data.Pop("id")
	data.FlattenReferences(repositories.Checkins.References...)
	return data, links, nil
}

func (s *checkinService) Create(ctx context.Context, db repositories.TxStarter, rec models.Record) (int64, error) {
	data, links, err := splitCheckin(rec)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, common.NewClientInputError(common.MsgNoData)
	}

	var checkinID int64
	err = repositories.WithTx(ctx, db, func(tx repositories.Database) error {
		id, err := repositories.NewRecordRepo(tx).Insert(ctx, repositories.TableCheckin, data)
		if err != nil {
			return err
		}
		checkinID = id

		checkins := repositories.NewCheckinRepo(tx)
		if err := checkins.LinkActivities(ctx, id, links.activities); err != nil {
			return err
		}
		return checkins.LinkCheckoutGuardians(ctx, id, links.guardians)
	})
	if err != nil {
		s.logger.Warn("checkin create rolled back", zap.Error(err))
		return 0, common.NewPersistenceError(err)
	}
	return checkinID, nil
}

// Update rewrites the check-in row and replaces each link list present in the payload.
func (s *checkinService) Update(ctx context.Context, db repositories.TxStarter, id int64, rec models.Record) error {
	data, links, err := splitCheckin(rec)
	if err != nil {
		return err
	}

	err = repositories.WithTx(ctx, db, func(tx repositories.Database) error {
		records := repositories.NewRecordRepo(tx)
		exists, err := records.Exists(ctx, repositories.TableCheckin, id)
		if err != nil {
			return err
		}
		if !exists {
			return common.NewNotFoundError("Check-in não encontrado")
		}
		if len(data) > 0 {
			if _, err := records.Update(ctx, repositories.TableCheckin, data, query.ByID("id", id)); err != nil {
				return err
			}
		}

		checkins := repositories.NewCheckinRepo(tx)
		if links.replaceActivities {
			if err := checkins.UnlinkActivities(ctx, id); err != nil {
				return err
			}
			if err := checkins.LinkActivities(ctx, id, links.activities); err != nil {
				return err
			}
		}
		if links.replaceGuardians {
			if err := checkins.UnlinkCheckoutGuardians(ctx, id); err != nil {
				return err
			}
			if err := checkins.LinkCheckoutGuardians(ctx, id, links.guardians); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return common.NewPersistenceError(err)
	}
	return nil
}

func (s *checkinService) Delete(ctx context.Context, db repositories.TxStarter, id int64) error {
	err := repositories.WithTx(ctx, db, func(tx repositories.Database) error {
		checkins := repositories.NewCheckinRepo(tx)
		if err := checkins.UnlinkActivities(ctx, id); err != nil {
			return err
		}
		if err := checkins.UnlinkCheckoutGuardians(ctx, id); err != nil {
			return err
		}
		affected, err := repositories.NewRecordRepo(tx).Delete(ctx, repositories.TableCheckin, query.ByID("id", id))
		if err != nil {
			return err
		}
		if affected == 0 {
			return common.NewNotFoundError("Check-in não encontrado")
		}
		return nil
	})
	if err != nil {
		return common.NewPersistenceError(err)
	}
	return nil
}
