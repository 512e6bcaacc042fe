package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"kidspace/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockCacheService) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheService) Close() error {
	return m.Called().Error(0)
}

const sePostalBody = `{"cep":"01001-000","logradouro":"Praça da Sé","localidade":"São Paulo","uf":"SP"}`

type CEPServiceTestSuite struct {
	suite.Suite
	cache  *MockCacheService
	server *httptest.Server
	hits   atomic.Int32
	paths  chan string
}

func (suite *CEPServiceTestSuite) SetupTest() {
	suite.cache = &MockCacheService{}
	suite.cache.Test(suite.T())
	suite.hits.Store(0)
	suite.paths = make(chan string, 8)
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.hits.Add(1)
		suite.paths <- r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/ws/01001000/json/":
			_, _ = w.Write([]byte(sePostalBody))
		case "/ws/99999999/json/":
			_, _ = w.Write([]byte(`{"erro": "true"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
}

func (suite *CEPServiceTestSuite) TearDownTest() {
	suite.server.Close()
	suite.cache.AssertExpectations(suite.T())
}

func (suite *CEPServiceTestSuite) service() CEPService {
	return NewCEPService(suite.server.URL, 2*time.Second, suite.cache, 24*time.Hour, zap.NewNop())
}

func TestCEPServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CEPServiceTestSuite))
}

func (suite *CEPServiceTestSuite) TestLookup_FetchesAndCaches() {
	ctx := context.Background()
	suite.cache.On("Get", ctx, "cep:01001000").Return(nil, false, nil).Once()
	suite.cache.On("Set", ctx, "cep:01001000", mock.Anything, 24*time.Hour).Return(nil).Once()

	rec, err := suite.service().Lookup(ctx, "01001-000")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "SP", rec["uf"])
	assert.Equal(suite.T(), "/ws/01001000/json/", <-suite.paths)
}

func (suite *CEPServiceTestSuite) TestLookup_CacheHitSkipsUpstream() {
	ctx := context.Background()
	suite.cache.On("Get", ctx, "cep:01001000").Return([]byte(sePostalBody), true, nil).Once()

	rec, err := suite.service().Lookup(ctx, "01001000")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "São Paulo", rec["localidade"])
	assert.Equal(suite.T(), int32(0), suite.hits.Load())
}

func (suite *CEPServiceTestSuite) TestLookup_CacheFailureFallsThrough() {
	ctx := context.Background()
	suite.cache.On("Get", ctx, "cep:01001000").Return(nil, false, errors.New("redis down")).Once()
	suite.cache.On("Set", ctx, "cep:01001000", mock.Anything, 24*time.Hour).Return(errors.New("redis down")).Once()

	rec, err := suite.service().Lookup(ctx, "01001000")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "SP", rec["uf"])
}

func (suite *CEPServiceTestSuite) TestLookup_UnknownCEPIsNotFound() {
	ctx := context.Background()
	suite.cache.On("Get", ctx, "cep:99999999").Return(nil, false, nil).Once()

	_, err := suite.service().Lookup(ctx, "99999-999")
	require.Error(suite.T(), err)
	assert.True(suite.T(), common.IsKind(err, common.KindNotFound))
	assert.Equal(suite.T(), "CEP não encontrado", err.Error())
}

func (suite *CEPServiceTestSuite) TestLookup_UpstreamFailure() {
	ctx := context.Background()
	suite.cache.On("Get", ctx, "cep:12345678").Return(nil, false, nil).Once()

	_, err := suite.service().Lookup(ctx, "12345678")
	require.Error(suite.T(), err)
	assert.True(suite.T(), common.IsKind(err, common.KindUpstream))
	assert.Equal(suite.T(), http.StatusInternalServerError, common.KindUpstream.Status())
}

func (suite *CEPServiceTestSuite) TestLookup_MalformedCEP() {
	for _, cep := range []string{"", "123", "abc", "0100100000"} {
		_, err := suite.service().Lookup(context.Background(), cep)
		assert.True(suite.T(), common.IsKind(err, common.KindClientInput), cep)
	}
	assert.Equal(suite.T(), int32(0), suite.hits.Load())
}

func TestNormalizeCEP(t *testing.T) {
	got, err := NormalizeCEP(" 01.001-000 ")
	require.NoError(t, err)
	assert.Equal(t, "01001000", got)
}
