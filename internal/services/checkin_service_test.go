package services

import (
	"context"
	"errors"
	"testing"

	"kidspace/internal/common"
	"kidspace/internal/models"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCheckinMock(t *testing.T) pgxmock.PgxConnIface {
	t.Helper()
	mock, err := pgxmock.NewConn()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close(context.Background())
	})
	return mock
}

func TestCheckinCreate_FlattensReferencesAndLinks(t *testing.T) {
	mock := newCheckinMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO checkin \(`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(20)))
	mock.ExpectExec("INSERT INTO checkin_atividade").
		WithArgs(int64(20), int64(1)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO checkin_atividade").
		WithArgs(int64(20), int64(2)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	id, err := NewCheckinService(zap.NewNop()).Create(context.Background(), mock, models.Record{
		"crianca":    map[string]any{"id": int64(3), "nome": "Ana"},
		"atividades": []any{int64(1), map[string]any{"id": int64(2)}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(20), id)
}

func TestCheckinCreate_RollsBackOnLinkFailure(t *testing.T) {
	mock := newCheckinMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO checkin \(`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(20)))
	mock.ExpectExec("INSERT INTO checkin_responsavel_checkout").
		WithArgs(int64(20), int64(8)).
		WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	_, err := NewCheckinService(zap.NewNop()).Create(context.Background(), mock, models.Record{
		"crianca":                         int64(3),
		"responsaveis_possiveis_checkout": []any{int64(8)},
	})

	assert.True(t, common.IsKind(err, common.KindPersistence))
}

func TestCheckinUpdate_ReplacesOnlyPresentLists(t *testing.T) {
	mock := newCheckinMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(20)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("DELETE FROM checkin_atividade").
		WithArgs(int64(20)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("INSERT INTO checkin_atividade").
		WithArgs(int64(20), int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := NewCheckinService(zap.NewNop()).Update(context.Background(), mock, 20, models.Record{
		"atividades": []any{int64(5)},
	})

	assert.NoError(t, err)
}

func TestCheckinInvalidLinkList(t *testing.T) {
	_, err := NewCheckinService(zap.NewNop()).Create(context.Background(), nil, models.Record{
		"crianca":    int64(3),
		"atividades": "1,2",
	})

	assert.True(t, common.IsKind(err, common.KindClientInput))
}

func TestCheckinDelete_RemovesLinksFirst(t *testing.T) {
	mock := newCheckinMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM checkin_atividade").
		WithArgs(int64(20)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM checkin_responsavel_checkout").
		WithArgs(int64(20)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM checkin WHERE`).
		WithArgs(int64(20)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	assert.NoError(t, NewCheckinService(zap.NewNop()).Delete(context.Background(), mock, 20))
}
