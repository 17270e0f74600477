package loanservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"gogas/internal/domain"
	apperror "gogas/internal/errors"
	"gogas/internal/pkg/logger"
)

// LoanRepository define o contrato que o Serviço de Comodatos espera da
// camada de acesso a dados (registros e contratos via API remota).
type LoanRepository interface {
	ListLoans(ctx context.Context) ([]domain.ContainerLoan, error)
	Stats(ctx context.Context) (domain.LoanStats, error)
	CreateLoan(ctx context.Context, payload domain.ContainerLoanPayload) (domain.ContainerLoan, error)
	UpdateLoan(ctx context.Context, id string, payload domain.ContainerLoanPayload) (domain.ContainerLoan, error)
	ReturnLoan(ctx context.Context, id string) (domain.ContainerLoan, error)
	CancelLoan(ctx context.Context, id string) (domain.ContainerLoan, error)
	DeleteLoanPermanent(ctx context.Context, id string) error
	UploadContract(ctx context.Context, loanID string, contract domain.ContractFile) error
	DownloadContract(ctx context.Context, loanID string) ([]byte, string, error)
}

// Tamanho máximo do contrato anexado: 10MB, limite inclusivo.
const maxContractSize = 10 * 1024 * 1024

// Mensagens de validação e aviso exibidas ao usuário.
const (
	msgQuantityPositive  = "Quantidade deve ser maior que zero"
	msgDuplicateProduct  = "Não é permitido selecionar o mesmo produto mais de uma vez"
	msgContractPDFOnly   = "Apenas arquivos PDF são permitidos"
	msgContractTooLarge  = "Arquivo deve ter no máximo 10MB"
	msgContractSoftError = "Empréstimo salvo, mas erro ao enviar contrato"
	msgLineNotSent       = "Não enviado devido a falha na linha anterior"
)

// Service é a estrutura que implementa a interface domain.LoanService.
// Concentra o validador de comodatos e a orquestração em leque: o servidor só
// aceita registros de produto único, então uma submissão com N produtos vira
// N chamadas sequenciais, cada uma gerando um registro independente.
type Service struct {
	repo   LoanRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Comodatos.
func NewService(repo LoanRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListLoans lista todos os comodatos registrados.
func (s *Service) ListLoans(ctx domain.Context) ([]domain.ContainerLoan, error) {
	ctxGo := s.goContext(ctx, "ListLoans")

	loans, err := s.repo.ListLoans(ctxGo)
	if err != nil {
		s.logger.Error("Falha ao listar comodatos.", err)
		return nil, err
	}
	return loans, nil
}

// Stats busca os agregados de comodatos.
func (s *Service) Stats(ctx domain.Context) (domain.LoanStats, error) {
	ctxGo := s.goContext(ctx, "Stats")

	stats, err := s.repo.Stats(ctxGo)
	if err != nil {
		s.logger.Error("Falha ao buscar agregados de comodatos.", err)
		return domain.LoanStats{}, err
	}
	return stats, nil
}

// CreateLoan valida e submete um comodato multi-produto.
//
// Toda a validação (campos compartilhados, linhas, duplicatas e contrato)
// acontece ANTES de qualquer chamada de rede: uma submissão inválida nunca
// gera registro parcial. Passada a validação, as linhas são submetidas em
// sequência — uma falha no meio interrompe o restante, mas NÃO desfaz os
// registros já criados; o desfecho por linha volta em CreateLoanResult e a
// falha parcial é sinalizada como PartialFailureError.
//
// O contrato, se presente, é enviado em um segundo passo de rede, vinculado
// ao primeiro registro criado com sucesso. Falha nesse passo é um aviso
// brando (ContractWarning), nunca um rollback.
func (s *Service) CreateLoan(ctx domain.Context, request domain.ContainerLoanRequest, contract *domain.ContractFile) (domain.CreateLoanResult, error) {
	s.logger.Debug("Iniciando criação de comodato no serviço.", map[string]interface{}{
		"entity_name": request.EntityName,
		"items":       len(request.Items),
		"contract":    contract != nil,
	})

	result := validateLoanRequest(request)
	if contract != nil {
		validateContract(*contract, &result)
	}
	if !result.OK() {
		s.logger.Warn("Comodato rejeitado na validação.", map[string]interface{}{"error": result.First()})
		return domain.CreateLoanResult{}, apperror.NewFieldValidationError(result)
	}

	ctxGo := s.goContext(ctx, "CreateLoan")

	// Submissão em leque: uma chamada por linha, campos compartilhados
	// repetidos, ordem preservada. Sequencial de propósito — uma falha fica
	// atribuída a uma linha específica.
	outcome := domain.CreateLoanResult{Lines: make([]domain.LoanLineResult, 0, len(request.Items))}
	var firstLoanID string
	var lineErr error

	for _, item := range request.Items {
		line := domain.LoanLineResult{
			LineID:    uuid.New().String(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}

		if lineErr != nil {
			line.Error = msgLineNotSent
			outcome.Lines = append(outcome.Lines, line)
			continue
		}

		loan, err := s.repo.CreateLoan(ctxGo, buildPayload(request, item))
		if err != nil {
			s.logger.Error("Falha ao criar linha de comodato no servidor.", err)
			line.Error = err.Error()
			lineErr = err
			outcome.Lines = append(outcome.Lines, line)
			continue
		}

		line.LoanID = loan.ID
		if firstLoanID == "" {
			firstLoanID = loan.ID
		}
		outcome.Lines = append(outcome.Lines, line)
	}

	// Segundo passo: contrato vinculado ao primeiro registro criado.
	if contract != nil && firstLoanID != "" {
		if err := s.repo.UploadContract(ctxGo, firstLoanID, *contract); err != nil {
			s.logger.Warn("Comodato criado, mas o envio do contrato falhou.", map[string]interface{}{
				"loan_id": firstLoanID,
				"error":   err.Error(),
			})
			outcome.ContractWarning = msgContractSoftError
		}
	}

	if lineErr != nil {
		return outcome, apperror.NewPartialFailureError(lineErr.Error(), outcome.Lines, lineErr)
	}

	s.logger.Info("Comodato criado com sucesso.", map[string]interface{}{
		"entity_name": request.EntityName,
		"lines":       len(outcome.Lines),
		"loan_id":     firstLoanID,
	})
	return outcome, nil
}

// UpdateLoan valida e reenvia os campos editáveis de um comodato existente.
// O registro do servidor é de produto único, então a atualização aceita
// exatamente uma linha.
func (s *Service) UpdateLoan(ctx domain.Context, id string, request domain.ContainerLoanRequest) (domain.ContainerLoan, error) {
	result := validateLoanRequest(request)
	if len(request.Items) > 1 {
		result.Add(domain.FieldItems, "Atualização aceita apenas um produto por registro")
	}
	if !result.OK() {
		return domain.ContainerLoan{}, apperror.NewFieldValidationError(result)
	}

	ctxGo := s.goContext(ctx, "UpdateLoan")

	loan, err := s.repo.UpdateLoan(ctxGo, id, buildPayload(request, request.Items[0]))
	if err != nil {
		s.logger.Error("Falha ao atualizar comodato.", err)
		return domain.ContainerLoan{}, err
	}

	s.logger.Info("Comodato atualizado com sucesso.", map[string]interface{}{"loan_id": loan.ID})
	return loan, nil
}

// ReturnLoan aplica a transição Ativo → Devolvido. A transição só é oferecida
// enquanto o comodato está Ativo; estados terminais nunca retrocedem.
func (s *Service) ReturnLoan(ctx domain.Context, id string) (domain.ContainerLoan, error) {
	ctxGo := s.goContext(ctx, "ReturnLoan")

	if err := s.guardActive(ctxGo, id, "devolvido"); err != nil {
		return domain.ContainerLoan{}, err
	}

	loan, err := s.repo.ReturnLoan(ctxGo, id)
	if err != nil {
		s.logger.Error("Falha ao devolver comodato.", err)
		return domain.ContainerLoan{}, err
	}

	s.logger.Info("Comodato devolvido.", map[string]interface{}{"loan_id": id})
	return loan, nil
}

// CancelLoan aplica a transição Ativo → Cancelado.
func (s *Service) CancelLoan(ctx domain.Context, id string) (domain.ContainerLoan, error) {
	ctxGo := s.goContext(ctx, "CancelLoan")

	if err := s.guardActive(ctxGo, id, "cancelado"); err != nil {
		return domain.ContainerLoan{}, err
	}

	loan, err := s.repo.CancelLoan(ctxGo, id)
	if err != nil {
		s.logger.Error("Falha ao cancelar comodato.", err)
		return domain.ContainerLoan{}, err
	}

	s.logger.Info("Comodato cancelado.", map[string]interface{}{"loan_id": id})
	return loan, nil
}

// DeleteLoanPermanent exclui definitivamente um comodato. Diferente de
// devolver/cancelar, a exclusão é alcançável de qualquer estado, inclusive
// terminais, e é irreversível.
func (s *Service) DeleteLoanPermanent(ctx domain.Context, id string) error {
	ctxGo := s.goContext(ctx, "DeleteLoanPermanent")

	if err := s.repo.DeleteLoanPermanent(ctxGo, id); err != nil {
		s.logger.Error("Falha ao excluir comodato definitivamente.", err)
		return err
	}

	s.logger.Info("Comodato excluído definitivamente.", map[string]interface{}{"loan_id": id})
	return nil
}

// UploadContract valida e envia um contrato para um comodato já existente.
func (s *Service) UploadContract(ctx domain.Context, id string, contract domain.ContractFile) error {
	var result domain.ValidationResult
	validateContract(contract, &result)
	if !result.OK() {
		return apperror.NewFieldValidationError(result)
	}

	ctxGo := s.goContext(ctx, "UploadContract")

	if err := s.repo.UploadContract(ctxGo, id, contract); err != nil {
		s.logger.Error("Falha ao enviar contrato.", err)
		return err
	}

	s.logger.Info("Contrato enviado.", map[string]interface{}{"loan_id": id, "file": contract.Name})
	return nil
}

// DownloadContract baixa o binário do contrato de um comodato.
func (s *Service) DownloadContract(ctx domain.Context, id string) ([]byte, string, error) {
	ctxGo := s.goContext(ctx, "DownloadContract")

	content, contentType, err := s.repo.DownloadContract(ctxGo, id)
	if err != nil {
		s.logger.Error("Falha ao baixar contrato.", err)
		return nil, "", err
	}
	return content, contentType, nil
}

// guardActive bloqueia transições de devolução/cancelamento quando o comodato
// não está mais Ativo. O servidor também valida; o bloqueio aqui evita a
// chamada de rede e devolve uma mensagem acionável.
func (s *Service) guardActive(ctx context.Context, id string, action string) error {
	loans, err := s.repo.ListLoans(ctx)
	if err != nil {
		s.logger.Error("Falha ao verificar status do comodato.", err)
		return err
	}
	for _, loan := range loans {
		if loan.ID != id {
			continue
		}
		if loan.Status != domain.LoanActive {
			return apperror.NewConflictError("Apenas comodatos ativos podem ser " + action + "s. Status atual: " + string(loan.Status))
		}
		return nil
	}
	// Não encontrado na listagem: deixa o servidor decidir (pode ter sido
	// criado por outra sessão depois do último fetch).
	return nil
}

// validateLoanRequest aplica as regras de cliente sobre a submissão:
// campos compartilhados obrigatórios, quantidade positiva por linha e
// proibição de produto duplicado entre linhas. Qualquer violação bloqueia a
// submissão inteira — não existe envio parcial de um formulário inválido.
func validateLoanRequest(request domain.ContainerLoanRequest) domain.ValidationResult {
	var result domain.ValidationResult

	if !request.Direction.IsValid() {
		result.Add(domain.FieldDirection, "Direção do empréstimo inválida")
	}
	if strings.TrimSpace(request.EntityName) == "" {
		result.Add(domain.FieldEntityName, "Nome da entidade é obrigatório")
	}
	if request.LoanDate == "" {
		result.Add(domain.FieldLoanDate, "Data do empréstimo é obrigatória")
	}
	if request.LocationID == "" {
		result.Add(domain.FieldLocation, "Local é obrigatório")
	}
	if len(request.Items) == 0 {
		result.Add(domain.FieldItems, "Adicione pelo menos um produto")
	}

	seen := make(map[string]bool, len(request.Items))
	for _, item := range request.Items {
		if item.ProductID == "" {
			result.Add(domain.FieldProduct, "Produto é obrigatório")
			continue
		}
		if item.Quantity <= 0 {
			result.Add(domain.FieldQuantity, msgQuantityPositive)
		}
		if seen[item.ProductID] {
			result.Add(domain.FieldItems, msgDuplicateProduct)
		}
		seen[item.ProductID] = true
	}

	return result
}

// validateContract aplica as regras do arquivo de contrato: somente PDF e no
// máximo 10MB (limite inclusivo — exatamente 10MB passa).
func validateContract(contract domain.ContractFile, result *domain.ValidationResult) {
	if contract.MIMEType != "application/pdf" {
		result.Add(domain.FieldContract, msgContractPDFOnly)
	}
	if contract.Size > maxContractSize {
		result.Add(domain.FieldContract, msgContractTooLarge)
	}
}

// buildPayload monta o payload legado de produto único de uma linha,
// repetindo os campos compartilhados da submissão.
func buildPayload(request domain.ContainerLoanRequest, item domain.LoanLineItem) domain.ContainerLoanPayload {
	return domain.ContainerLoanPayload{
		Direction:          request.Direction,
		EntityType:         request.EntityType,
		EntityName:         request.EntityName,
		EntityContact:      request.EntityContact,
		EntityAddress:      request.EntityAddress,
		LocationID:         request.LocationID,
		ProductID:          item.ProductID,
		Quantity:           item.Quantity,
		LoanDate:           request.LoanDate,
		ExpectedReturnDate: request.ExpectedReturnDate,
		Notes:              request.Notes,
	}
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
