package loanservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gogas/internal/domain"
	apperror "gogas/internal/errors"
	"gogas/internal/pkg/logger"
	"gogas/internal/service/loanservice"
)

// MockLoanRepository é uma implementação mock da interface LoanRepository.
// Funciona como espião da orquestração em leque: os testes contam exatamente
// quantas chamadas de criação foram emitidas e com quais payloads.
type MockLoanRepository struct {
	mock.Mock
	createdPayloads []domain.ContainerLoanPayload
}

func (m *MockLoanRepository) ListLoans(ctx context.Context) ([]domain.ContainerLoan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContainerLoan), args.Error(1)
}

func (m *MockLoanRepository) Stats(ctx context.Context) (domain.LoanStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.LoanStats), args.Error(1)
}

func (m *MockLoanRepository) CreateLoan(ctx context.Context, payload domain.ContainerLoanPayload) (domain.ContainerLoan, error) {
	m.createdPayloads = append(m.createdPayloads, payload)
	args := m.Called(ctx, payload)
	return args.Get(0).(domain.ContainerLoan), args.Error(1)
}

func (m *MockLoanRepository) UpdateLoan(ctx context.Context, id string, payload domain.ContainerLoanPayload) (domain.ContainerLoan, error) {
	args := m.Called(ctx, id, payload)
	return args.Get(0).(domain.ContainerLoan), args.Error(1)
}

func (m *MockLoanRepository) ReturnLoan(ctx context.Context, id string) (domain.ContainerLoan, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ContainerLoan), args.Error(1)
}

func (m *MockLoanRepository) CancelLoan(ctx context.Context, id string) (domain.ContainerLoan, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ContainerLoan), args.Error(1)
}

func (m *MockLoanRepository) DeleteLoanPermanent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLoanRepository) UploadContract(ctx context.Context, loanID string, contract domain.ContractFile) error {
	args := m.Called(ctx, loanID, contract)
	return args.Error(0)
}

func (m *MockLoanRepository) DownloadContract(ctx context.Context, loanID string) ([]byte, string, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func validRequest(items ...domain.LoanLineItem) domain.ContainerLoanRequest {
	return domain.ContainerLoanRequest{
		Direction:  domain.LoanOutbound,
		EntityName: "Restaurante Bom Sabor",
		LocationID: "deposito-central",
		LoanDate:   "2025-06-10",
		Items:      items,
	}
}

// TestCreateLoan_Fail_DuplicateProduct testa que produto repetido entre linhas
// bloqueia a submissão inteira: zero chamadas de rede.
func TestCreateLoan_Fail_DuplicateProduct(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	request := validRequest(
		domain.LoanLineItem{ProductID: "p13", Quantity: 2},
		domain.LoanLineItem{ProductID: "p45", Quantity: 1},
		domain.LoanLineItem{ProductID: "p13", Quantity: 3},
	)

	_, err := svc.CreateLoan(context.Background(), request, nil)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "mesmo produto mais de uma vez")
	mockRepo.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "UploadContract", mock.Anything, mock.Anything, mock.Anything)
}

// TestCreateLoan_Success_SingleLine testa que uma linha única gera exatamente
// uma chamada no formato legado de produto único.
func TestCreateLoan_Success_SingleLine(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	request := validRequest(domain.LoanLineItem{ProductID: "p13", Quantity: 4})

	mockRepo.On("CreateLoan", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.ContainerLoanPayload")).
		Return(domain.ContainerLoan{ID: "loan-1", Status: domain.LoanActive}, nil)

	result, err := svc.CreateLoan(context.Background(), request, nil)

	assert.NoError(t, err)
	assert.Len(t, result.Lines, 1)
	assert.Equal(t, "loan-1", result.Lines[0].LoanID)
	assert.Empty(t, result.ContractWarning)

	mockRepo.AssertNumberOfCalls(t, "CreateLoan", 1)
	payload := mockRepo.createdPayloads[0]
	assert.Equal(t, "p13", payload.ProductID)
	assert.Equal(t, 4, payload.Quantity)
	assert.Equal(t, "Restaurante Bom Sabor", payload.EntityName)
	assert.Equal(t, "2025-06-10", payload.LoanDate)
}

// TestCreateLoan_Success_MultiLine testa o leque: N linhas → N chamadas
// sequenciais, campos compartilhados repetidos, par produto/quantidade distinto.
func TestCreateLoan_Success_MultiLine(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	request := validRequest(
		domain.LoanLineItem{ProductID: "p13", Quantity: 2},
		domain.LoanLineItem{ProductID: "p45", Quantity: 1},
		domain.LoanLineItem{ProductID: "p20", Quantity: 6},
	)

	mockRepo.On("CreateLoan", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.ContainerLoanPayload")).
		Return(domain.ContainerLoan{ID: "loan-1", Status: domain.LoanActive}, nil).Once()
	mockRepo.On("CreateLoan", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.ContainerLoanPayload")).
		Return(domain.ContainerLoan{ID: "loan-2", Status: domain.LoanActive}, nil).Once()
	mockRepo.On("CreateLoan", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.ContainerLoanPayload")).
		Return(domain.ContainerLoan{ID: "loan-3", Status: domain.LoanActive}, nil).Once()

	result, err := svc.CreateLoan(context.Background(), request, nil)

	assert.NoError(t, err)
	assert.Len(t, result.Lines, 3)
	mockRepo.AssertNumberOfCalls(t, "CreateLoan", 3)

	// Ordem preservada e campos compartilhados idênticos em todas as chamadas.
	expectedProducts := []string{"p13", "p45", "p20"}
	expectedQuantities := []int{2, 1, 6}
	for i, payload := range mockRepo.createdPayloads {
		assert.Equal(t, expectedProducts[i], payload.ProductID)
		assert.Equal(t, expectedQuantities[i], payload.Quantity)
		assert.Equal(t, "Restaurante Bom Sabor", payload.EntityName)
		assert.Equal(t, "deposito-central", payload.LocationID)
		assert.Equal(t, "2025-06-10", payload.LoanDate)
	}
}

// TestCreateLoan_PartialFailure_SecondLineFails testa o cenário do formulário:
// 3 linhas, a segunda falha → a primeira persiste (sem rollback), a terceira
// não é enviada, e a falha parcial volta com o desfecho por linha.
func TestCreateLoan_PartialFailure_SecondLineFails(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	request := validRequest(
		domain.LoanLineItem{ProductID: "p13", Quantity: 2},
		domain.LoanLineItem{ProductID: "p45", Quantity: 1},
		domain.LoanLineItem{ProductID: "p20", Quantity: 6},
	)

	mockRepo.On("CreateLoan", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.ContainerLoanPayload")).
		Return(domain.ContainerLoan{ID: "loan-1", Status: domain.LoanActive}, nil).Once()
	mockRepo.On("CreateLoan", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.ContainerLoanPayload")).
		Return(domain.ContainerLoan{}, apperror.NewUpstreamError("Produto sem estoque disponível", 422, nil)).Once()

	result, err := svc.CreateLoan(context.Background(), request, nil)

	assert.Error(t, err)
	assert.IsType(t, &apperror.PartialFailureError{}, err)

	// Apenas duas chamadas: a terceira linha não é tentada após a falha.
	mockRepo.AssertNumberOfCalls(t, "CreateLoan", 2)

	assert.Len(t, result.Lines, 3)
	assert.Equal(t, "loan-1", result.Lines[0].LoanID) // persiste, sem rollback
	assert.Empty(t, result.Lines[0].Error)
	assert.Empty(t, result.Lines[1].LoanID)
	assert.Contains(t, result.Lines[1].Error, "sem estoque")
	assert.Empty(t, result.Lines[2].LoanID)
	assert.NotEmpty(t, result.Lines[2].Error)
}

// TestCreateLoan_Fail_ContractNotPDF testa que um PNG é rejeitado independente
// do tamanho, antes de qualquer chamada de rede.
func TestCreateLoan_Fail_ContractNotPDF(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	request := validRequest(domain.LoanLineItem{ProductID: "p13", Quantity: 1})
	contract := &domain.ContractFile{Name: "contrato.png", MIMEType: "image/png", Size: 100}

	_, err := svc.CreateLoan(context.Background(), request, contract)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Apenas arquivos PDF são permitidos")
	mockRepo.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)
}

// TestCreateLoan_ContractSizeBoundary testa o limite inclusivo de 10MB:
// exatamente 10MB passa, um byte a mais é rejeitado.
func TestCreateLoan_ContractSizeBoundary(t *testing.T) {
	const tenMB = 10 * 1024 * 1024

	mockLogger := logger.NewLogger("error")
	request := validRequest(domain.LoanLineItem{ProductID: "p13", Quantity: 1})

	// 10MB + 1 byte: rejeitado, zero chamadas.
	mockRepo := new(MockLoanRepository)
	svc := loanservice.NewService(mockRepo, mockLogger)
	tooBig := &domain.ContractFile{Name: "contrato.pdf", MIMEType: "application/pdf", Size: tenMB + 1}

	_, err := svc.CreateLoan(context.Background(), request, tooBig)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no máximo 10MB")
	mockRepo.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)

	// Exatamente 10MB: aceito, comodato criado e contrato enviado.
	mockRepo = new(MockLoanRepository)
	svc = loanservice.NewService(mockRepo, mockLogger)
	exact := &domain.ContractFile{Name: "contrato.pdf", MIMEType: "application/pdf", Size: tenMB}

	mockRepo.On("CreateLoan", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.ContainerLoanPayload")).
		Return(domain.ContainerLoan{ID: "loan-1", Status: domain.LoanActive}, nil)
	mockRepo.On("UploadContract", mock.AnythingOfType("context.backgroundCtx"), "loan-1", *exact).
		Return(nil)

	result, err := svc.CreateLoan(context.Background(), request, exact)

	assert.NoError(t, err)
	assert.Empty(t, result.ContractWarning)
	mockRepo.AssertExpectations(t)
}

// TestCreateLoan_SoftWarning_ContractUploadFails testa o aviso brando: os
// registros criados permanecem e a falha do contrato não vira erro.
func TestCreateLoan_SoftWarning_ContractUploadFails(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	request := validRequest(domain.LoanLineItem{ProductID: "p13", Quantity: 1})
	contract := &domain.ContractFile{Name: "contrato.pdf", MIMEType: "application/pdf", Size: 2048}

	mockRepo.On("CreateLoan", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.ContainerLoanPayload")).
		Return(domain.ContainerLoan{ID: "loan-1", Status: domain.LoanActive}, nil)
	mockRepo.On("UploadContract", mock.AnythingOfType("context.backgroundCtx"), "loan-1", *contract).
		Return(apperror.NewUpstreamError("Falha no armazenamento de arquivos", 500, nil))

	result, err := svc.CreateLoan(context.Background(), request, contract)

	assert.NoError(t, err) // aviso brando, não erro
	assert.Equal(t, "Empréstimo salvo, mas erro ao enviar contrato", result.ContractWarning)
	assert.Equal(t, "loan-1", result.Lines[0].LoanID)
	mockRepo.AssertExpectations(t)
}

// TestCreateLoan_Fail_MissingEntityName testa os campos compartilhados obrigatórios.
func TestCreateLoan_Fail_MissingEntityName(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	request := validRequest(domain.LoanLineItem{ProductID: "p13", Quantity: 1})
	request.EntityName = "   " // em branco não conta como preenchido

	_, err := svc.CreateLoan(context.Background(), request, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Nome da entidade é obrigatório")
	mockRepo.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)
}

// TestCreateLoan_Fail_ZeroQuantityLine testa quantidade inválida por linha.
func TestCreateLoan_Fail_ZeroQuantityLine(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	request := validRequest(
		domain.LoanLineItem{ProductID: "p13", Quantity: 1},
		domain.LoanLineItem{ProductID: "p45", Quantity: 0},
	)

	_, err := svc.CreateLoan(context.Background(), request, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Quantidade deve ser maior que zero")
	mockRepo.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)
}

// TestReturnLoan_Fail_NotActive testa o bloqueio de transição: um comodato já
// devolvido não pode ser devolvido de novo.
func TestReturnLoan_Fail_NotActive(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	loans := []domain.ContainerLoan{{ID: "loan-1", Status: domain.LoanReturned}}
	mockRepo.On("ListLoans", mock.AnythingOfType("context.backgroundCtx")).Return(loans, nil)

	_, err := svc.ReturnLoan(context.Background(), "loan-1")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertNotCalled(t, "ReturnLoan", mock.Anything, mock.Anything)
}

// TestCancelLoan_Success_Active testa a transição Ativo → Cancelado.
func TestCancelLoan_Success_Active(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	loans := []domain.ContainerLoan{{ID: "loan-1", Status: domain.LoanActive}}
	cancelled := domain.ContainerLoan{ID: "loan-1", Status: domain.LoanCancelled}

	mockRepo.On("ListLoans", mock.AnythingOfType("context.backgroundCtx")).Return(loans, nil)
	mockRepo.On("CancelLoan", mock.AnythingOfType("context.backgroundCtx"), "loan-1").Return(cancelled, nil)

	result, err := svc.CancelLoan(context.Background(), "loan-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.LoanCancelled, result.Status)
	mockRepo.AssertExpectations(t)
}

// TestDeleteLoanPermanent_Success_TerminalState testa que a exclusão
// definitiva é alcançável mesmo de estados terminais (sem guarda de status).
func TestDeleteLoanPermanent_Success_TerminalState(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	mockRepo.On("DeleteLoanPermanent", mock.AnythingOfType("context.backgroundCtx"), "loan-1").Return(nil)

	err := svc.DeleteLoanPermanent(context.Background(), "loan-1")

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "ListLoans", mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestUpdateLoan_Fail_MultipleItems testa que a atualização aceita uma linha só.
func TestUpdateLoan_Fail_MultipleItems(t *testing.T) {
	mockRepo := new(MockLoanRepository)
	mockLogger := logger.NewLogger("error")

	svc := loanservice.NewService(mockRepo, mockLogger)

	request := validRequest(
		domain.LoanLineItem{ProductID: "p13", Quantity: 1},
		domain.LoanLineItem{ProductID: "p45", Quantity: 2},
	)

	_, err := svc.UpdateLoan(context.Background(), "loan-1", request)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "apenas um produto")
	mockRepo.AssertNotCalled(t, "UpdateLoan", mock.Anything, mock.Anything, mock.Anything)
}
