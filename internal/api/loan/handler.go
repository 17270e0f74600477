package loan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gogas/internal/domain"
	apperror "gogas/internal/errors"
	"gogas/internal/pkg/logger"
)

// LoanService define o contrato que o Handler espera da camada de Serviço.
type LoanService interface {
	ListLoans(ctx domain.Context) ([]domain.ContainerLoan, error)
	Stats(ctx domain.Context) (domain.LoanStats, error)
	CreateLoan(ctx domain.Context, request domain.ContainerLoanRequest, contract *domain.ContractFile) (domain.CreateLoanResult, error)
	UpdateLoan(ctx domain.Context, id string, request domain.ContainerLoanRequest) (domain.ContainerLoan, error)
	ReturnLoan(ctx domain.Context, id string) (domain.ContainerLoan, error)
	CancelLoan(ctx domain.Context, id string) (domain.ContainerLoan, error)
	DeleteLoanPermanent(ctx domain.Context, id string) error
	UploadContract(ctx domain.Context, id string, contract domain.ContractFile) error
	DownloadContract(ctx domain.Context, id string) ([]byte, string, error)
}

// Limite de leitura do multipart: folga acima dos 10MB do contrato para que
// um arquivo de 10MB + 1 byte chegue inteiro ao validador e seja rejeitado
// com a mensagem correta, e não com um erro de transporte.
const maxMultipartMemory = 12 << 20

// Handler agrupa todos os métodos de Handler de comodatos.
type Handler struct {
	Service LoanService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc LoanService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		// Sucesso
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	// TRATAMENTO DE ERROS
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
		Fields:   apperror.FieldsOf(err),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// LoansHandler lida com GET (listagem) e POST (criação) em /v1/loans.
func (h *Handler) LoansHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listLoans(w, r)
	case http.MethodPost:
		h.createLoan(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// listLoans lida com a requisição GET /v1/loans.
// @Summary Lista os comodatos
// @Description Lista todos os comodatos registrados no servidor remoto.
// @Tags loans
// @Produce json
// @Success 200 {array} domain.ContainerLoan "Comodatos"
// @Failure 502 {object} domain.ErrorResponse "Falha de comunicação com o servidor"
// @Router /loans [get]
func (h *Handler) listLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Service.ListLoans(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, loans, nil, http.StatusOK)
}

// createLoan lida com a requisição POST /v1/loans.
// Aceita JSON puro ou multipart/form-data com o campo "data" (JSON da
// submissão) e o arquivo opcional "contract" (PDF, até 10MB).
// @Summary Cria um comodato (multi-produto)
// @Description Valida a submissão e a serializa em N registros de produto único no servidor. Falha parcial responde 207 com o desfecho por linha; registros já criados não são desfeitos.
// @Tags loans
// @Accept json
// @Produce json
// @Param loan body domain.ContainerLoanRequest true "Submissão de comodato"
// @Success 201 {object} domain.CreateLoanResult "Todas as linhas criadas"
// @Failure 400 {object} domain.ErrorResponse "Validação de cliente falhou"
// @Failure 207 {object} domain.CreateLoanResult "Falha parcial: parte das linhas criadas"
// @Router /loans [post]
func (h *Handler) createLoan(w http.ResponseWriter, r *http.Request) {
	request, contract, err := h.decodeLoanSubmission(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	result, err := h.Service.CreateLoan(r.Context(), request, contract)
	if err != nil {
		// Falha parcial: responde 207 com o desfecho por linha — as linhas
		// criadas antes da falha persistem e o formulário permanece editável.
		var partialErr *apperror.PartialFailureError
		if errors.As(err, &partialErr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusMultiStatus)
			json.NewEncoder(w).Encode(struct {
				Message string `json:"message"`
				domain.CreateLoanResult
			}{Message: partialErr.Error(), CreateLoanResult: result})
			return
		}
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, result, nil, http.StatusCreated)
}

// decodeLoanSubmission extrai a submissão e o contrato opcional da requisição.
func (h *Handler) decodeLoanSubmission(r *http.Request) (domain.ContainerLoanRequest, *domain.ContractFile, error) {
	var request domain.ContainerLoanRequest

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			return request, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
		}
		return request, nil, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return request, nil, apperror.NewValidationError("Formulário multipart inválido.")
	}

	if err := json.Unmarshal([]byte(r.FormValue("data")), &request); err != nil {
		return request, nil, apperror.NewValidationError("Campo 'data' inválido. Verifique o formato JSON.")
	}

	file, header, err := r.FormFile("contract")
	if err == http.ErrMissingFile {
		return request, nil, nil
	}
	if err != nil {
		return request, nil, apperror.NewValidationError("Arquivo de contrato inválido.")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return request, nil, apperror.NewInternalError("Falha ao ler arquivo de contrato.", err)
	}

	return request, &domain.ContractFile{
		Name:     header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Size:     int64(len(content)),
		Content:  content,
	}, nil
}

// StatsHandler lida com a requisição GET /v1/loans/stats.
// @Summary Agregados de comodatos
// @Tags loans
// @Produce json
// @Success 200 {object} domain.LoanStats "Agregados"
// @Failure 502 {object} domain.ErrorResponse "Falha de comunicação com o servidor"
// @Router /loans/stats [get]
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, stats, nil, http.StatusOK)
}

// LoanByIDHandler despacha as rotas /v1/loans/{id}[/return|/cancel|/contract].
func (h *Handler) LoanByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/loans/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "ID do comodato ausente", http.StatusBadRequest)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodPut:
			h.updateLoan(w, r, id)
		case http.MethodDelete:
			h.deleteLoan(w, r, id)
		default:
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "return":
		h.transition(w, r, id, h.Service.ReturnLoan)
	case "cancel":
		h.transition(w, r, id, h.Service.CancelLoan)
	case "contract":
		h.contract(w, r, id)
	default:
		http.Error(w, "Rota não encontrada", http.StatusNotFound)
	}
}

// updateLoan lida com a requisição PUT /v1/loans/{id}.
// @Summary Atualiza um comodato
// @Tags loans
// @Accept json
// @Produce json
// @Param id path string true "ID do comodato"
// @Param loan body domain.ContainerLoanRequest true "Campos editáveis (uma linha)"
// @Success 200 {object} domain.ContainerLoan "Comodato atualizado"
// @Failure 400 {object} domain.ErrorResponse "Validação de cliente falhou"
// @Router /loans/{id} [put]
func (h *Handler) updateLoan(w http.ResponseWriter, r *http.Request, id string) {
	var request domain.ContainerLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	loan, err := h.Service.UpdateLoan(r.Context(), id, request)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, loan, nil, http.StatusOK)
}

// deleteLoan lida com a requisição DELETE /v1/loans/{id} (exclusão definitiva).
// @Summary Exclui definitivamente um comodato
// @Description Ação destrutiva e irreversível, alcançável de qualquer status.
// @Tags loans
// @Param id path string true "ID do comodato"
// @Success 204 "Excluído"
// @Failure 502 {object} domain.ErrorResponse "Falha de comunicação com o servidor"
// @Router /loans/{id} [delete]
func (h *Handler) deleteLoan(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.Service.DeleteLoanPermanent(r.Context(), id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, nil, nil, http.StatusNoContent)
}

// transition aplica uma transição terminal (return ou cancel) via POST.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, id string, apply func(domain.Context, string) (domain.ContainerLoan, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	loan, err := apply(r.Context(), id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, loan, nil, http.StatusOK)
}

// contract lida com GET (download) e POST (upload) em /v1/loans/{id}/contract.
// @Summary Upload/Download do contrato de um comodato
// @Tags loans
// @Param id path string true "ID do comodato"
// @Router /loans/{id}/contract [post]
func (h *Handler) contract(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		content, contentType, err := h.Service.DownloadContract(r.Context(), id)
		if err != nil {
			h.handleServiceResponse(w, r, nil, err, http.StatusOK)
			return
		}
		if contentType == "" {
			contentType = "application/pdf"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		w.Write(content)

	case http.MethodPost:
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formulário multipart inválido."), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("contract")
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Arquivo de contrato ausente."), http.StatusBadRequest)
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewInternalError("Falha ao ler arquivo de contrato.", err), http.StatusBadRequest)
			return
		}

		contract := domain.ContractFile{
			Name:     header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
			Size:     int64(len(content)),
			Content:  content,
		}
		if err := h.Service.UploadContract(r.Context(), id, contract); err != nil {
			h.handleServiceResponse(w, r, nil, err, http.StatusOK)
			return
		}
		h.handleServiceResponse(w, r, map[string]string{"status": "Contrato enviado"}, nil, http.StatusCreated)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
