package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/internal/repositories"

	"go.uber.org/zap"
)

const (
	DefaultExportLimit = 50000
	childImageFolder   = "criança"
	msgMissingParts    = "Pasta e imagem são obrigatórios"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ImageService stores uploaded images and exports child photos under the tenant's cnpj prefix.
type ImageService interface {
	Upload(ctx context.Context, tenant *models.Tenant, folder, filename string, reader io.Reader, size int64, contentType string) (string, error)
	ExportChildImages(ctx context.Context, db repositories.Database, tenant *models.Tenant, limit, offset int) ([]string, error)
}

type imageService struct {
	storage StorageService
	logger  *zap.Logger
}

func NewImageService(storage StorageService, logger *zap.Logger) ImageService {
	return &imageService{storage: storage, logger: logger}
}

func (s *imageService) Upload(ctx context.Context, tenant *models.Tenant, folder, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	folder = sanitizeFolder(folder)
	name := SanitizeFilename(filename)
	if folder == "" || name == "" || reader == nil {
		return "", common.NewClientInputError(msgMissingParts)
	}

	key := path.Join(tenant.CNPJ, folder, name)
	if err := s.storage.Upload(ctx, key, reader, size, contentType); err != nil {
		return "", common.NewUpstreamError(fmt.Sprintf("Falha ao enviar imagem: %v", err), err)
	}
	s.logger.Info("image uploaded", zap.String("tenant", tenant.Nome), zap.String("key", key))
	return key, nil
}

// ExportChildImages copies one page of child photo blobs to storage and returns the written keys.
func (s *imageService) ExportChildImages(ctx context.Context, db repositories.Database, tenant *models.Tenant, limit, offset int) ([]string, error) {
	if limit < 0 || offset < 0 {
		return nil, common.NewClientInputError("limit e offset devem ser não negativos")
	}
	images, err := repositories.NewChildRepo(db).ListImages(ctx, limit, offset)
	if err != nil {
		return nil, common.NewPersistenceError(err)
	}

	keys := make([]string, 0, len(images))
	for _, img := range images {
		key := path.Join(tenant.CNPJ, childImageFolder, fmt.Sprintf("%d.png", img.ID))
		contentType := http.DetectContentType(img.Data)
		if err := s.storage.Upload(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), contentType); err != nil {
			s.logger.Error("image export aborted", zap.String("tenant", tenant.Nome), zap.Int64("crianca", img.ID), zap.Int("exported", len(keys)), zap.Error(err))
			return nil, common.NewUpstreamError(err.Error(), err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// SanitizeFilename keeps the base name and replaces anything outside [A-Za-z0-9._-] with "_".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	return name
}

// sanitizeFolder rejects traversal by cleaning each segment on its own.
func sanitizeFolder(folder string) string {
	var parts []string
	for _, seg := range strings.Split(strings.ReplaceAll(folder, "\\", "/"), "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		parts = append(parts, seg)
	}
	return strings.Join(parts, "/")
}
