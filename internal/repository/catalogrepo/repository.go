package catalogrepo

import (
	"context"
	"encoding/json"
	"time"

	"gogas/internal/domain"
	"gogas/internal/pkg/cache"
	"gogas/internal/pkg/logger"
)

// UpstreamAPI define o contrato que o Repositório de Catálogo espera do
// cliente da API remota (implementado por apiclient.Client).
type UpstreamAPI interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	GetLocations(ctx context.Context) ([]domain.Location, error)
}

// Chaves de cache do catálogo.
const (
	productsCacheKey  = "catalog:products"
	locationsCacheKey = "catalog:locations"
)

// CatalogRepository serve os dados de formulário (produtos e locais) com
// Cache-Aside. O catálogo muda raramente, então o TTL aqui pode ser mais
// generoso que o do snapshot de estoque.
type CatalogRepository struct {
	API      UpstreamAPI
	Cache    cache.Client
	CacheTTL time.Duration
	logger   logger.Logger
}

// NewCatalogRepository cria e retorna uma nova instância do Repositório de Catálogo.
func NewCatalogRepository(api UpstreamAPI, cacheClient cache.Client, cacheTTL time.Duration, log logger.Logger) *CatalogRepository {
	return &CatalogRepository{
		API:      api,
		Cache:    cacheClient,
		CacheTTL: cacheTTL,
		logger:   log,
	}
}

// ListProducts lista o catálogo de produtos (Cache-Aside).
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	cachedData, err := r.Cache.Get(ctx, productsCacheKey)
	if err == nil {
		var products []domain.Product
		if json.Unmarshal([]byte(cachedData), &products) == nil {
			return products, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao consultar cache de produtos, buscando direto na API.", map[string]interface{}{"error": err.Error()})
	}

	products, err := r.API.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	if payload, marshalErr := json.Marshal(products); marshalErr == nil {
		if cacheErr := r.Cache.Set(ctx, productsCacheKey, payload, r.CacheTTL); cacheErr != nil {
			r.logger.Warn("Falha ao popular cache de produtos.", map[string]interface{}{"error": cacheErr.Error()})
		}
	}
	return products, nil
}

// ListLocations lista os pontos de estoque (Cache-Aside).
func (r *CatalogRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	cachedData, err := r.Cache.Get(ctx, locationsCacheKey)
	if err == nil {
		var locations []domain.Location
		if json.Unmarshal([]byte(cachedData), &locations) == nil {
			return locations, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao consultar cache de locais, buscando direto na API.", map[string]interface{}{"error": err.Error()})
	}

	locations, err := r.API.GetLocations(ctx)
	if err != nil {
		return nil, err
	}

	if payload, marshalErr := json.Marshal(locations); marshalErr == nil {
		if cacheErr := r.Cache.Set(ctx, locationsCacheKey, payload, r.CacheTTL); cacheErr != nil {
			r.logger.Warn("Falha ao popular cache de locais.", map[string]interface{}{"error": cacheErr.Error()})
		}
	}
	return locations, nil
}
