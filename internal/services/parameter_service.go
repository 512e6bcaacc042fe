package services

import (
	"context"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/internal/repositories"
)

const (
	MsgNoParameter     = "Nenhum parâmetro cadastrado"
	msgParameterExists = "Parâmetro já existe"
	msgParameterAbsent = "Parâmetro ainda não existe"
)

// ParameterService manages the tenant's single settings row.
type ParameterService interface {
	Get(ctx context.Context, db repositories.Database) (models.Record, error)
	Create(ctx context.Context, db repositories.TxStarter, rec models.Record) error
	Update(ctx context.Context, db repositories.TxStarter, rec models.Record) error
}

type parameterService struct{}

func NewParameterService() ParameterService {
	return &parameterService{}
}

func (s *parameterService) Get(ctx context.Context, db repositories.Database) (models.Record, error) {
	rec, found, err := repositories.NewParameterRepo(db).Get(ctx)
	if err != nil {
		return nil, common.NewPersistenceError(err)
	}
	if !found {
		return nil, common.NewNotFoundError(MsgNoParameter)
	}
	return rec, nil
}

func (s *parameterService) Create(ctx context.Context, db repositories.TxStarter, rec models.Record) error {
	if len(rec) == 0 {
		return common.NewClientInputError(common.MsgNoData)
	}
	err := repositories.WithTx(ctx, db, func(tx repositories.Database) error {
		params := repositories.NewParameterRepo(tx)
		count, err := params.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return common.NewClientInputError(msgParameterExists)
		}
		return params.Insert(ctx, rec)
	})
	if err != nil {
		return common.NewPersistenceError(err)
	}
	return nil
}

func (s *parameterService) Update(ctx context.Context, db repositories.TxStarter, rec models.Record) error {
	if len(rec) == 0 {
		return common.NewClientInputError(common.MsgNoData)
	}
	err := repositories.WithTx(ctx, db, func(tx repositories.Database) error {
		affected, err := repositories.NewParameterRepo(tx).Update(ctx, rec)
		if err != nil {
			return err
		}
		if affected == 0 {
			return common.NewNotFoundError(msgParameterAbsent)
		}
		return nil
	})
	if err != nil {
		return common.NewPersistenceError(err)
	}
	return nil
}
