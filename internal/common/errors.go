package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Kind classifies an AppError and decides the HTTP status sent to the client.
type Kind int

const (
	KindPersistence Kind = iota
	KindTenant
	KindConnection
	KindClientInput
	KindNotFound
	KindUnauthorized
	KindUpstream
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindTenant:
		return "tenant"
	case KindConnection:
		return "connection"
	case KindClientInput:
		return "client_input"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstream:
		return "upstream"
	case KindTimeout:
		return "timeout"
	default:
		return "persistence"
	}
}

// Status maps the kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindTenant:
		return http.StatusForbidden
	case KindClientInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// AppError carries the client-facing message and the underlying cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

const (
	MsgInvalidTenant = "Tenant inválido ou inativo."
	MsgNoData        = "Dados não fornecidos"
	MsgTimeout       = "Tempo limite da requisição excedido"
	MsgNotFound      = "Registro não encontrado"
)

func NewTenantError(err error) *AppError {
	return &AppError{Kind: KindTenant, Message: MsgInvalidTenant, Err: err}
}

func NewConnectionError(err error) *AppError {
	msg := "Falha ao conectar ao banco do tenant"
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &AppError{Kind: KindConnection, Message: msg, Err: err}
}

func NewClientInputError(format string, args ...any) *AppError {
	return &AppError{Kind: KindClientInput, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(message string) *AppError {
	if message == "" {
		message = MsgNotFound
	}
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

// NewPersistenceError wraps a store failure. Deadline and not-found causes keep their own kind.
func NewPersistenceError(err error) *AppError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, context.DeadlineExceeded):
		return &AppError{Kind: KindTimeout, Message: MsgTimeout, Err: err}
	case errors.Is(err, pgx.ErrNoRows):
		return &AppError{Kind: KindNotFound, Message: MsgNotFound, Err: err}
	}
	return &AppError{Kind: KindPersistence, Message: err.Error(), Err: err}
}

func NewUpstreamError(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

// AsAppError classifies any error, defaulting to persistence.
func AsAppError(err error) *AppError {
	return NewPersistenceError(err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
