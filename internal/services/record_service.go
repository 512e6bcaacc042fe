package services

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/internal/query"
	"kidspace/internal/repositories"

	"go.uber.org/zap"
)

// WriteHook adjusts a payload before it is written. It may reject the payload.
type WriteHook func(rec models.Record, creating bool) error

// RecordService implements list/get/create/update/delete for any registered resource.
type RecordService interface {
	List(ctx context.Context, db repositories.Database, res *query.Resource, params url.Values) ([]models.Record, error)
	Get(ctx context.Context, db repositories.Database, res *query.Resource, id int64) (models.Record, error)
	Create(ctx context.Context, db repositories.Database, res *query.Resource, rec models.Record) (int64, error)
	Update(ctx context.Context, db repositories.Database, res *query.Resource, id int64, rec models.Record) error
	Delete(ctx context.Context, db repositories.Database, res *query.Resource, id int64) error
}

type recordService struct {
	hooks  map[string]WriteHook
	logger *zap.Logger
}

func NewRecordService(logger *zap.Logger) RecordService {
	return &recordService{
		hooks: map[string]WriteHook{
			repositories.Usuarios.Name: hashPasswordHook,
		},
		logger: logger,
	}
}

func (s *recordService) List(ctx context.Context, db repositories.Database, res *query.Resource, params url.Values) ([]models.Record, error) {
	filters, err := query.ParseFilters(res, params)
	if err != nil {
		return nil, err
	}
	page, err := PageFromParams(params)
	if err != nil {
		return nil, err
	}

	records, err := repositories.NewRecordRepo(db).List(ctx, res, filters, page)
	if err != nil {
		return nil, common.NewPersistenceError(err)
	}
	for _, rec := range records {
		hide(res, rec)
	}
	return records, nil
}

func (s *recordService) Get(ctx context.Context, db repositories.Database, res *query.Resource, id int64) (models.Record, error) {
	rec, err := repositories.NewRecordRepo(db).GetByID(ctx, res, id)
	if err != nil {
		return nil, common.NewPersistenceError(err)
	}
	hide(res, rec)
	return rec, nil
}

func (s *recordService) Create(ctx context.Context, db repositories.Database, res *query.Resource, rec models.Record) (int64, error) {
	data, err := s.prepare(res, rec, true)
	if err != nil {
		return 0, err
	}
	for _, field := range res.Required {
		if isBlank(data[field]) {
			return 0, common.NewClientInputError("campo obrigatório: %s", field)
		}
	}

	id, err := repositories.NewRecordRepo(db).Insert(ctx, res.Table, data)
	if err != nil {
		return 0, common.NewPersistenceError(err)
	}
	s.logger.Debug("record created", zap.String("resource", res.Name), zap.Int64("id", id))
	return id, nil
}

func (s *recordService) Update(ctx context.Context, db repositories.Database, res *query.Resource, id int64, rec models.Record) error {
	data, err := s.prepare(res, rec, false)
	if err != nil {
		return err
	}
	for _, field := range res.Required {
		if v, ok := data[field]; ok && isBlank(v) {
			return common.NewClientInputError("campo obrigatório: %s", field)
		}
	}

	affected, err := repositories.NewRecordRepo(db).Update(ctx, res.Table, data, query.ByID(res.IdentityColumn(), id))
	if err != nil {
		return common.NewPersistenceError(err)
	}
	if affected == 0 {
		return common.NewNotFoundError("")
	}
	return nil
}

func (s *recordService) Delete(ctx context.Context, db repositories.Database, res *query.Resource, id int64) error {
	affected, err := repositories.NewRecordRepo(db).Delete(ctx, res.Table, query.ByID(res.IdentityColumn(), id))
	if err != nil {
		return common.NewPersistenceError(err)
	}
	if affected == 0 {
		return common.NewNotFoundError("")
	}
	return nil
}

// prepare copies the payload, drops the client-sent identity and flattens nested references.
func (s *recordService) prepare(res *query.Resource, rec models.Record, creating bool) (models.Record, error) {
	data := rec.Clone()
	data.Pop(res.IdentityColumn())
	data.FlattenReferences(res.References...)
	if hook, ok := s.hooks[res.Name]; ok {
		if err := hook(data, creating); err != nil {
			return nil, err
		}
	}
	if len(data) == 0 {
		return nil, common.NewClientInputError(common.MsgNoData)
	}
	return data, nil
}

// PageFromParams reads the optional limit and offset parameters.
func PageFromParams(params url.Values) (query.Page, error) {
	var page query.Page
	for _, name := range []string{query.ParamLimit, query.ParamOffset} {
		raw := strings.TrimSpace(params.Get(name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return query.Page{}, common.NewClientInputError("parâmetro %s inválido: %q", name, raw)
		}
		if name == query.ParamLimit {
			page.Limit = &n
		} else {
			page.Offset = &n
		}
	}
	return page, nil
}

func hide(res *query.Resource, rec models.Record) {
	for _, col := range res.Hidden {
		parent, member, nested := strings.Cut(col, ".")
		if !nested {
			delete(rec, col)
			continue
		}
		if obj, ok := rec[parent].(map[string]any); ok {
			delete(obj, member)
		}
	}
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
