package loanrepo

import (
	"context"
	"encoding/json"
	"time"

	"gogas/internal/domain"
	"gogas/internal/pkg/cache"
	"gogas/internal/pkg/logger"
)

// UpstreamAPI define o contrato que o Repositório de Comodatos espera do
// cliente da API remota (implementado por apiclient.Client).
type UpstreamAPI interface {
	GetContainerLoans(ctx context.Context) ([]domain.ContainerLoan, error)
	GetContainerLoanStats(ctx context.Context) (domain.LoanStats, error)
	CreateContainerLoan(ctx context.Context, payload domain.ContainerLoanPayload) (domain.ContainerLoan, error)
	UpdateContainerLoan(ctx context.Context, id string, payload domain.ContainerLoanPayload) (domain.ContainerLoan, error)
	ReturnContainerLoan(ctx context.Context, id string) (domain.ContainerLoan, error)
	CancelContainerLoan(ctx context.Context, id string) (domain.ContainerLoan, error)
	DeleteContainerLoanPermanent(ctx context.Context, id string) error
	UploadLoanContract(ctx context.Context, loanID string, contract domain.ContractFile) error
	DownloadLoanContract(ctx context.Context, loanID string) ([]byte, string, error)
}

// Chave de cache dos agregados de comodato.
const statsCacheKey = "loans:stats"

// LoanRepository é a camada de acesso a dados de comodatos. Os registros
// pertencem à API remota; apenas os agregados (stats) recebem Cache-Aside com
// TTL curto, invalidado a cada mutação para que a listagem sempre reflita o
// estado do servidor.
type LoanRepository struct {
	API      UpstreamAPI
	Cache    cache.Client
	CacheTTL time.Duration
	logger   logger.Logger
}

// NewLoanRepository cria e retorna uma nova instância do Repositório de Comodatos.
func NewLoanRepository(api UpstreamAPI, cacheClient cache.Client, cacheTTL time.Duration, log logger.Logger) *LoanRepository {
	return &LoanRepository{
		API:      api,
		Cache:    cacheClient,
		CacheTTL: cacheTTL,
		logger:   log,
	}
}

// ListLoans lista os comodatos direto da API remota (sem cache: a listagem é
// a tela principal e precisa refletir transições recém-aplicadas).
func (r *LoanRepository) ListLoans(ctx context.Context) ([]domain.ContainerLoan, error) {
	return r.API.GetContainerLoans(ctx)
}

// Stats busca os agregados, utilizando a estratégia Cache-Aside.
func (r *LoanRepository) Stats(ctx context.Context) (domain.LoanStats, error) {
	cachedData, err := r.Cache.Get(ctx, statsCacheKey)
	if err == nil {
		var stats domain.LoanStats
		if json.Unmarshal([]byte(cachedData), &stats) == nil {
			// Cache HIT
			return stats, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao consultar cache de agregados, buscando direto na API.", map[string]interface{}{"error": err.Error()})
	}

	stats, err := r.API.GetContainerLoanStats(ctx)
	if err != nil {
		return domain.LoanStats{}, err
	}

	if payload, marshalErr := json.Marshal(stats); marshalErr == nil {
		if cacheErr := r.Cache.Set(ctx, statsCacheKey, payload, r.CacheTTL); cacheErr != nil {
			r.logger.Warn("Falha ao popular cache de agregados.", map[string]interface{}{"error": cacheErr.Error()})
		}
	}
	return stats, nil
}

// invalidateStats descarta os agregados em cache após qualquer mutação.
func (r *LoanRepository) invalidateStats(ctx context.Context) {
	if err := r.Cache.Delete(ctx, statsCacheKey); err != nil {
		r.logger.Warn("Falha ao invalidar cache de agregados.", map[string]interface{}{"error": err.Error()})
	}
}

// CreateLoan cria um registro de comodato (formato legado de produto único).
func (r *LoanRepository) CreateLoan(ctx context.Context, payload domain.ContainerLoanPayload) (domain.ContainerLoan, error) {
	loan, err := r.API.CreateContainerLoan(ctx, payload)
	if err != nil {
		return domain.ContainerLoan{}, err
	}
	r.invalidateStats(ctx)
	return loan, nil
}

// UpdateLoan atualiza os campos editáveis de um comodato.
func (r *LoanRepository) UpdateLoan(ctx context.Context, id string, payload domain.ContainerLoanPayload) (domain.ContainerLoan, error) {
	loan, err := r.API.UpdateContainerLoan(ctx, id, payload)
	if err != nil {
		return domain.ContainerLoan{}, err
	}
	r.invalidateStats(ctx)
	return loan, nil
}

// ReturnLoan aplica a transição terminal Ativo → Devolvido.
func (r *LoanRepository) ReturnLoan(ctx context.Context, id string) (domain.ContainerLoan, error) {
	loan, err := r.API.ReturnContainerLoan(ctx, id)
	if err != nil {
		return domain.ContainerLoan{}, err
	}
	r.invalidateStats(ctx)
	return loan, nil
}

// CancelLoan aplica a transição terminal Ativo → Cancelado.
func (r *LoanRepository) CancelLoan(ctx context.Context, id string) (domain.ContainerLoan, error) {
	loan, err := r.API.CancelContainerLoan(ctx, id)
	if err != nil {
		return domain.ContainerLoan{}, err
	}
	r.invalidateStats(ctx)
	return loan, nil
}

// DeleteLoanPermanent exclui definitivamente um comodato. Irreversível.
func (r *LoanRepository) DeleteLoanPermanent(ctx context.Context, id string) error {
	if err := r.API.DeleteContainerLoanPermanent(ctx, id); err != nil {
		return err
	}
	r.invalidateStats(ctx)
	return nil
}

// UploadContract envia o contrato PDF vinculado a um comodato já criado.
func (r *LoanRepository) UploadContract(ctx context.Context, loanID string, contract domain.ContractFile) error {
	return r.API.UploadLoanContract(ctx, loanID, contract)
}

// DownloadContract baixa o binário do contrato de um comodato.
func (r *LoanRepository) DownloadContract(ctx context.Context, loanID string) ([]byte, string, error) {
	return r.API.DownloadLoanContract(ctx, loanID)
}
