package catalogservice

import (
	"context"

	"gogas/internal/domain"
	"gogas/internal/pkg/logger"
)

// CatalogRepository define o contrato que o Serviço de Catálogo espera da
// camada de acesso a dados.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)
}

// Service é a estrutura que implementa a interface domain.CatalogService.
// Somente leitura: alimenta os seletores de produto e local dos formulários.
type Service struct {
	repo   CatalogRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Catálogo.
func NewService(repo CatalogRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListProducts lista o catálogo de produtos.
func (s *Service) ListProducts(ctx domain.Context) ([]domain.Product, error) {
	ctxGo := s.goContext(ctx, "ListProducts")

	products, err := s.repo.ListProducts(ctxGo)
	if err != nil {
		s.logger.Error("Falha ao listar produtos.", err)
		return nil, err
	}
	return products, nil
}

// ListLocations lista os pontos de estoque.
func (s *Service) ListLocations(ctx domain.Context) ([]domain.Location, error) {
	ctxGo := s.goContext(ctx, "ListLocations")

	locations, err := s.repo.ListLocations(ctxGo)
	if err != nil {
		s.logger.Error("Falha ao listar locais.", err)
		return nil, err
	}
	return locations, nil
}

// goContext converte domain.Context para context.Context (padrão das camadas).
func (s *Service) goContext(ctx domain.Context, operation string) context.Context {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para "+operation, nil)
	}
	return ctxGo
}
