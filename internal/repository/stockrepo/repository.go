package stockrepo

import (
	"context"
	"encoding/json"
	"time"

	"gogas/internal/domain"
	"gogas/internal/pkg/cache"
	"gogas/internal/pkg/logger"
)

// UpstreamAPI define o contrato que o Repositório de Estoque espera do
// cliente da API remota (implementado por apiclient.Client).
type UpstreamAPI interface {
	GetStock(ctx context.Context, filter domain.StockFilter) ([]domain.StockRecord, error)
	AdjustStock(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error)
}

// Chave de cache do snapshot completo de estoque.
const snapshotCacheKey = "stock:snapshot:all"

// StockRepository é a camada de acesso a dados de estoque. O dado autoritativo
// mora na API remota; aqui aplicamos Cache-Aside com TTL curto apenas para o
// snapshot completo — buscas filtradas vão direto ao servidor, e qualquer
// ajuste invalida o snapshot para forçar a releitura do estado pós-ajuste.
type StockRepository struct {
	API      UpstreamAPI
	Cache    cache.Client
	CacheTTL time.Duration
	logger   logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(api UpstreamAPI, cacheClient cache.Client, cacheTTL time.Duration, log logger.Logger) *StockRepository {
	return &StockRepository{
		API:      api,
		Cache:    cacheClient,
		CacheTTL: cacheTTL,
		logger:   log,
	}
}

// GetStock busca o snapshot de estoque, utilizando a estratégia Cache-Aside
// quando a busca não tem filtros.
func (r *StockRepository) GetStock(ctx context.Context, filter domain.StockFilter) ([]domain.StockRecord, error) {
	unfiltered := filter.ProductID == "" && filter.LocationID == ""

	if unfiltered {
		cachedData, err := r.Cache.Get(ctx, snapshotCacheKey)
		if err == nil {
			var records []domain.StockRecord
			if json.Unmarshal([]byte(cachedData), &records) == nil {
				// Cache HIT
				r.logger.Debug("Snapshot de estoque servido do cache.", map[string]interface{}{"records": len(records)})
				return records, nil
			}
		} else if err != cache.ErrCacheMiss {
			// Falha de cache não é fatal: degrada para a API remota.
			r.logger.Warn("Falha ao consultar cache de estoque, buscando direto na API.", map[string]interface{}{"error": err.Error()})
		}
	}

	records, err := r.API.GetStock(ctx, filter)
	if err != nil {
		return nil, err
	}

	if unfiltered {
		if payload, marshalErr := json.Marshal(records); marshalErr == nil {
			if cacheErr := r.Cache.Set(ctx, snapshotCacheKey, payload, r.CacheTTL); cacheErr != nil {
				r.logger.Warn("Falha ao popular cache de estoque.", map[string]interface{}{"error": cacheErr.Error()})
			}
		}
	}

	return records, nil
}

// Adjust emite o ajuste na API remota e invalida o snapshot em cache.
// A invalidação garante que o próximo GetStock releia o valor calculado pelo
// servidor — não há atualização otimista do lado do cliente.
func (r *StockRepository) Adjust(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error) {
	record, err := r.API.AdjustStock(ctx, adjustment)
	if err != nil {
		return domain.StockRecord{}, err
	}

	if cacheErr := r.Cache.Delete(ctx, snapshotCacheKey); cacheErr != nil {
		r.logger.Warn("Falha ao invalidar cache de estoque após ajuste.", map[string]interface{}{"error": cacheErr.Error()})
	}

	r.logger.Info("Ajuste de estoque aplicado pelo servidor.", map[string]interface{}{
		"product_id":  record.ProductID,
		"location_id": record.LocationID,
		"bottle_type": adjustment.BottleType,
	})
	return record, nil
}
