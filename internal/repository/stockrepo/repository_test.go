package stockrepo_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gogas/internal/domain"
	"gogas/internal/pkg/cache"
	"gogas/internal/pkg/logger"
	"gogas/internal/repository/stockrepo"
)

// MockUpstreamAPI é uma implementação mock do cliente da API remota.
type MockUpstreamAPI struct {
	mock.Mock
}

func (m *MockUpstreamAPI) GetStock(ctx context.Context, filter domain.StockFilter) ([]domain.StockRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockRecord), args.Error(1)
}

func (m *MockUpstreamAPI) AdjustStock(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error) {
	args := m.Called(ctx, adjustment)
	return args.Get(0).(domain.StockRecord), args.Error(1)
}

// MockCacheClient é uma implementação mock da interface cache.Client.
type MockCacheClient struct {
	mock.Mock
}

func (m *MockCacheClient) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheClient) GetInt(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockCacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheClient) Incr(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheClient) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// TestGetStock_CacheHit testa que o snapshot completo é servido do cache sem
// tocar a API remota.
func TestGetStock_CacheHit(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("error")

	repo := stockrepo.NewStockRepository(mockAPI, mockCache, 30*time.Second, mockLogger)

	cached := []domain.StockRecord{{ProductID: "p13", LocationID: "deposito-central", FullQuantity: 10}}
	payload, _ := json.Marshal(cached)

	mockCache.On("Get", mock.AnythingOfType("context.backgroundCtx"), "stock:snapshot:all").
		Return(string(payload), nil)

	records, err := repo.GetStock(context.Background(), domain.StockFilter{})

	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "p13", records[0].ProductID)
	mockAPI.AssertNotCalled(t, "GetStock", mock.Anything, mock.Anything)
}

// TestGetStock_CacheMiss_PopulatesCache testa o Cache-Aside: no MISS a busca
// vai à API remota e o resultado popula o cache com o TTL configurado.
func TestGetStock_CacheMiss_PopulatesCache(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("error")

	ttl := 30 * time.Second
	repo := stockrepo.NewStockRepository(mockAPI, mockCache, ttl, mockLogger)

	fetched := []domain.StockRecord{{ProductID: "p13", LocationID: "deposito-central", FullQuantity: 10}}

	mockCache.On("Get", mock.AnythingOfType("context.backgroundCtx"), "stock:snapshot:all").
		Return("", cache.ErrCacheMiss)
	mockAPI.On("GetStock", mock.AnythingOfType("context.backgroundCtx"), domain.StockFilter{}).
		Return(fetched, nil)
	mockCache.On("Set", mock.AnythingOfType("context.backgroundCtx"), "stock:snapshot:all", mock.Anything, ttl).
		Return(nil)

	records, err := repo.GetStock(context.Background(), domain.StockFilter{})

	assert.NoError(t, err)
	assert.Len(t, records, 1)
	mockAPI.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

// TestGetStock_Filtered_BypassesCache testa que buscas filtradas vão direto à
// API remota, sem consultar nem popular o snapshot em cache.
func TestGetStock_Filtered_BypassesCache(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("error")

	repo := stockrepo.NewStockRepository(mockAPI, mockCache, 30*time.Second, mockLogger)

	filter := domain.StockFilter{ProductID: "p13"}
	fetched := []domain.StockRecord{{ProductID: "p13", FullQuantity: 10}}

	mockAPI.On("GetStock", mock.AnythingOfType("context.backgroundCtx"), filter).
		Return(fetched, nil)

	records, err := repo.GetStock(context.Background(), filter)

	assert.NoError(t, err)
	assert.Len(t, records, 1)
	mockCache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestAdjust_Success_InvalidatesCache testa que um ajuste aplicado invalida o
// snapshot: a próxima leitura relê o estado recalculado pelo servidor.
func TestAdjust_Success_InvalidatesCache(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("error")

	repo := stockrepo.NewStockRepository(mockAPI, mockCache, 30*time.Second, mockLogger)

	adjustment := domain.StockAdjustmentRequest{
		ProductID:      "p13",
		LocationID:     "deposito-central",
		BottleType:     domain.BottleFull,
		AdjustmentType: domain.AdjustmentAdd,
		Quantity:       5,
	}
	updated := domain.StockRecord{ProductID: "p13", LocationID: "deposito-central", FullQuantity: 15}

	mockAPI.On("AdjustStock", mock.AnythingOfType("context.backgroundCtx"), adjustment).
		Return(updated, nil)
	mockCache.On("Delete", mock.AnythingOfType("context.backgroundCtx"), "stock:snapshot:all").
		Return(nil)

	record, err := repo.Adjust(context.Background(), adjustment)

	assert.NoError(t, err)
	assert.Equal(t, 15, record.FullQuantity)
	mockAPI.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

// TestAdjust_Fail_UpstreamError testa que a falha da API remota não invalida o cache.
func TestAdjust_Fail_UpstreamError(t *testing.T) {
	mockAPI := new(MockUpstreamAPI)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("error")

	repo := stockrepo.NewStockRepository(mockAPI, mockCache, 30*time.Second, mockLogger)

	adjustment := domain.StockAdjustmentRequest{
		ProductID:      "p13",
		LocationID:     "deposito-central",
		BottleType:     domain.BottleFull,
		AdjustmentType: domain.AdjustmentSubtract,
		Quantity:       5,
	}

	mockAPI.On("AdjustStock", mock.AnythingOfType("context.backgroundCtx"), adjustment).
		Return(domain.StockRecord{}, assert.AnError)

	_, err := repo.Adjust(context.Background(), adjustment)

	assert.Error(t, err)
	mockCache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
