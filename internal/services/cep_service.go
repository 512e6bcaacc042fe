package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"kidspace/internal/caching"
	"kidspace/internal/common"
	"kidspace/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const msgCEPNotFound = "CEP não encontrado"

// CEPService looks up Brazilian postal codes on ViaCEP.
type CEPService interface {
	Lookup(ctx context.Context, cep string) (models.Record, error)
}

type cepService struct {
	client   *resty.Client
	cache    caching.CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCEPService builds the client. Lookups are never retried.
func NewCEPService(baseURL string, timeout time.Duration, cache caching.CacheService, cacheTTL time.Duration, logger *zap.Logger) CEPService {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &cepService{
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// NormalizeCEP strips everything but digits and requires exactly eight of them.
func NormalizeCEP(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
	if len(digits) != 8 {
		return "", common.NewClientInputError("CEP inválido: %q", raw)
	}
	return digits, nil
}

func (s *cepService) Lookup(ctx context.Context, cep string) (models.Record, error) {
	digits, err := NormalizeCEP(cep)
	if err != nil {
		return nil, err
	}
	key := "cep:" + digits

	if cached, found, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cep cache read failed", zap.String("cep", digits), zap.Error(err))
	} else if found {
		if rec, err := models.DecodeRecordBytes(cached); err == nil {
			return rec, nil
		}
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("cep", digits).
		Get("/ws/{cep}/json/")
	if err != nil {
		if ctx.Err() != nil {
			return nil, common.NewPersistenceError(ctx.Err())
		}
		return nil, common.NewUpstreamError(err.Error(), err)
	}
	if resp.IsError() {
		err := fmt.Errorf("viacep returned %s", resp.Status())
		return nil, common.NewUpstreamError(err.Error(), err)
	}

	rec, err := models.DecodeRecordBytes(resp.Body())
	if err != nil {
		return nil, common.NewUpstreamError("resposta inválida do ViaCEP", err)
	}
	if _, ok := rec["erro"]; ok {
		return nil, common.NewNotFoundError(msgCEPNotFound)
	}

	if err := s.cache.Set(ctx, key, resp.Body(), s.cacheTTL); err != nil {
		s.logger.Warn("cep cache write failed", zap.String("cep", digits), zap.Error(err))
	}
	return rec, nil
}
