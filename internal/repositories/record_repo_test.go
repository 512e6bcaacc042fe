package repositories

import (
	"context"
	"regexp"
	"testing"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/internal/query"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RecordRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxConnIface
	repo    RecordRepository
	context context.Context
}

func (suite *RecordRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewConn()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewRecordRepo(mock)
	suite.context = context.Background()
}

func (suite *RecordRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close(suite.context)
}

func TestRecordRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RecordRepoTestSuite))
}

func (suite *RecordRepoTestSuite) TestList_PaginatesInDefaultOrder() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM responsavel ORDER BY nome ASC LIMIT $1 OFFSET $2")).
		WithArgs(2, 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "nome"}).
			AddRow(int64(3), "Carla").
			AddRow(int64(4), "Davi"))

	records, err := suite.repo.List(suite.context, Responsaveis, query.NewFilterSet(), query.PageOf(2, 2))

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []models.Record{
		{"id": int64(3), "nome": "Carla"},
		{"id": int64(4), "nome": "Davi"},
	}, records)
}

func (suite *RecordRepoTestSuite) TestList_EmptyResultIsEmptySlice() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM atividade WHERE unaccent(lower(descricao)) LIKE unaccent(lower($1))")).
		WithArgs("%pintura%", "pintura").
		WillReturnRows(pgxmock.NewRows([]string{"id", "descricao"}))

	filters := query.NewFilterSet().With("descricao", query.Matching("Pintura"))
	records, err := suite.repo.List(suite.context, Atividades, filters, query.Page{})

	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), records)
	assert.Empty(suite.T(), records)
}

func (suite *RecordRepoTestSuite) TestList_InvalidFilterNeverReachesDatabase() {
	filters := query.NewFilterSet().With("senha", query.EqualTo("x"))

	_, err := suite.repo.List(suite.context, Usuarios, filters, query.Page{})

	assert.True(suite.T(), common.IsKind(err, common.KindClientInput))
}

func (suite *RecordRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM natureza WHERE id = $1 ORDER BY id DESC")).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "descricao"}))

	_, err := suite.repo.GetByID(suite.context, Naturezas, 9)

	assert.True(suite.T(), common.IsKind(err, common.KindNotFound))
}

func (suite *RecordRepoTestSuite) TestInsert_ReturnsID() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO natureza ("descricao") VALUES ($1) RETURNING "id"`)).
		WithArgs("Mensalidade").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(12)))

	id, err := suite.repo.Insert(suite.context, "natureza", models.Record{"descricao": "Mensalidade"})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(12), id)
}

func (suite *RecordRepoTestSuite) TestUpdate_ReportsAffectedRows() {
	suite.mock.ExpectExec(regexp.QuoteMeta(`UPDATE natureza SET "descricao" = $1 WHERE "id" = $2`)).
		WithArgs("Taxa", int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	affected, err := suite.repo.Update(suite.context, "natureza", models.Record{"descricao": "Taxa"}, query.ByID("id", 5))

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(0), affected)
}

func (suite *RecordRepoTestSuite) TestDelete() {
	suite.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM natureza WHERE "id" = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	affected, err := suite.repo.Delete(suite.context, "natureza", query.ByID("id", 5))

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), affected)
}

func (suite *RecordRepoTestSuite) TestExists() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM crianca WHERE id = $1)")).
		WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := suite.repo.Exists(suite.context, TableCrianca, 8)

	require.NoError(suite.T(), err)
	assert.True(suite.T(), exists)
}
