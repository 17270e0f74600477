package stock

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gogas/internal/domain"
	apperror "gogas/internal/errors"
	"gogas/internal/pkg/logger"
)

// StockService define o contrato que o Handler espera da camada de Serviço.
type StockService interface {
	GetStock(ctx domain.Context, filter domain.StockFilter) ([]domain.StockRecord, error)
	Preview(ctx domain.Context, adjustment domain.StockAdjustmentRequest) (domain.StockPreview, error)
	Adjust(ctx domain.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error)
}

// Handler agrupa todos os métodos de Handler de estoque.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StockService, log logger.Logger) *Handler {
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

// GetStockHandler lida com a requisição GET /v1/stock.
// @Summary Lista o snapshot de estoque
// @Description Busca o snapshot atual de estoque na API remota, opcionalmente filtrado por produto e local.
// @Tags stock
// @Produce json
// @Param product_id query string false "Filtra por produto"
// @Param location_id query string false "Filtra por local"
// @Success 200 {array} domain.StockRecord "Snapshot de estoque"
// @Failure 502 {object} domain.ErrorResponse "Falha de comunicação com o servidor"
// @Router /stock [get]
func (h *Handler) GetStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	filter := domain.StockFilter{
		ProductID:  r.URL.Query().Get("product_id"),
		LocationID: r.URL.Query().Get("location_id"),
	}

	records, err := h.Service.GetStock(ctx, filter)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, records, nil, http.StatusOK)
}

// AdjustStockHandler lida com a requisição POST /v1/stock/adjust.
// @Summary Aplica um ajuste de estoque
// @Description Valida e emite um ajuste (add, subtract, set) sobre um contador de estoque. Ajustes inválidos são rejeitados antes de qualquer chamada de rede.
// @Tags stock
// @Accept json
// @Produce json
// @Param adjustment body domain.StockAdjustmentRequest true "Ajuste a aplicar"
// @Success 200 {object} domain.StockRecord "Registro recalculado pelo servidor"
// @Failure 400 {object} domain.ErrorResponse "Validação de cliente falhou"
// @Failure 502 {object} domain.ErrorResponse "Falha de comunicação com o servidor"
// @Router /stock/adjust [post]
func (h *Handler) AdjustStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	var adjustment domain.StockAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&adjustment); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	record, err := h.Service.Adjust(ctx, adjustment)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, record, nil, http.StatusOK)
}

// PreviewStockHandler lida com a requisição POST /v1/stock/adjust/preview.
// @Summary Calcula a prévia consultiva de um ajuste
// @Description Retorna o valor que o contador teria após o ajuste. Subtrações maiores que o estoque atual são truncadas em zero APENAS na prévia; a submissão equivalente é rejeitada.
// @Tags stock
// @Accept json
// @Produce json
// @Param adjustment body domain.StockAdjustmentRequest true "Ajuste a prever"
// @Success 200 {object} domain.StockPreview "Prévia consultiva"
// @Failure 400 {object} domain.ErrorResponse "Campos de alvo inválidos"
// @Router /stock/adjust/preview [post]
func (h *Handler) PreviewStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	var adjustment domain.StockAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&adjustment); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	preview, err := h.Service.Preview(ctx, adjustment)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, preview, nil, http.StatusOK)
}
