package services

import (
	"context"
	"errors"
	"strings"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/internal/repositories"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "Usuário ou senha inválidos"

type AuthService interface {
	Login(ctx context.Context, db repositories.Database, req *models.LoginRequest) (models.Record, error)
}

type authService struct {
	logger *zap.Logger
}

func NewAuthService(logger *zap.Logger) AuthService {
	return &authService{logger: logger}
}

// Login checks the credentials against the tenant's usuario table and returns the user
// record without its password hash.
func (s *authService) Login(ctx context.Context, db repositories.Database, req *models.LoginRequest) (models.Record, error) {
	if req == nil || strings.TrimSpace(req.Login) == "" || req.Senha == "" {
		return nil, common.NewClientInputError("login e senha são obrigatórios")
	}

	user, err := repositories.NewUserRepo(db).GetByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewUnauthorizedError(msgInvalidCredentials)
		}
		return nil, common.NewPersistenceError(err)
	}

	hash, _ := user[models.PasswordColumn].(string)
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Senha)) != nil {
		s.logger.Info("login rejected", zap.String("login", req.Login))
		return nil, common.NewUnauthorizedError(msgInvalidCredentials)
	}

	delete(user, models.PasswordColumn)
	return user, nil
}

// hashPasswordHook replaces a plain senha with its bcrypt hash. An empty senha on update keeps the
// stored one; a value that is already a bcrypt hash is written unchanged.
func hashPasswordHook(rec models.Record, creating bool) error {
	raw, ok := rec[models.PasswordColumn]
	if !ok {
		return nil
	}
	plain, isString := raw.(string)
	if !isString || plain == "" {
		if creating {
			return common.NewClientInputError("campo obrigatório: %s", models.PasswordColumn)
		}
		delete(rec, models.PasswordColumn)
		return nil
	}
	if _, err := bcrypt.Cost([]byte(plain)); err == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return common.NewClientInputError("senha inválida: %v", err)
	}
	rec[models.PasswordColumn] = string(hash)
	return nil
}
