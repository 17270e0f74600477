package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"gogas/internal/domain"
	apperror "gogas/internal/errors"
	"gogas/internal/pkg/logger"
	"gogas/internal/pkg/token"
)

// Envelope é o formato de resposta padronizado da API remota da distribuidora.
// Toda resposta JSON chega como {success, data?, error?}.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client é o cliente HTTP da API remota da distribuidora. Toda a lógica de
// negócio (aritmética de estoque, cálculo financeiro) vive do outro lado;
// este cliente só transporta payloads já validados e traduz falhas para a
// taxonomia de erros do GoGas.
type Client struct {
	baseURL  string
	http     *http.Client
	tokenSvc token.TokenService
	logger   logger.Logger
}

// NewClient cria e retorna uma nova instância do cliente da API remota.
// Esta função é chamada no main.go.
func NewClient(baseURL string, timeout time.Duration, tokenSvc token.TokenService, log logger.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		tokenSvc: tokenSvc,
		logger:   log,
	}
}

// do executa uma requisição JSON contra a API remota e desserializa env.Data
// em out (quando out não é nil). Falhas de rede e respostas com success=false
// viram UpstreamError; 404 vira NotFoundError com a mensagem do servidor.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperror.NewInternalError("Falha ao serializar payload da requisição.", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperror.NewInternalError("Falha ao montar requisição para a API remota.", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(req); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Falha de rede ao chamar a API remota.", err)
		return apperror.NewUpstreamError("", 0, err)
	}
	defer resp.Body.Close()

	var env Envelope
	if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr != nil {
		c.logger.Error("Resposta da API remota não é um envelope JSON válido.", decodeErr)
		return apperror.NewUpstreamError("", resp.StatusCode, decodeErr)
	}

	if resp.StatusCode == http.StatusNotFound {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("%s %s", method, path)
		}
		return apperror.NewNotFoundError(msg)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		c.logger.Warn("API remota respondeu com erro.", map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
			"error":  env.Error,
		})
		return apperror.NewUpstreamError(env.Error, resp.StatusCode, nil)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperror.NewUpstreamError("Resposta do servidor em formato inesperado.", resp.StatusCode, err)
		}
	}
	return nil
}

// authorize anexa a credencial de serviço e o identificador de requisição.
func (c *Client) authorize(req *http.Request) error {
	tokenString, err := c.tokenSvc.GenerateToken()
	if err != nil {
		return apperror.NewInternalError("Falha ao emitir credencial de serviço.", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokenString)
	req.Header.Set("X-Request-ID", uuid.New().String())
	return nil
}

// --- Estoque ---

// GetStock busca o snapshot de estoque, opcionalmente filtrado por produto e local.
func (c *Client) GetStock(ctx context.Context, filter domain.StockFilter) ([]domain.StockRecord, error) {
	query := url.Values{}
	if filter.ProductID != "" {
		query.Set("product_id", filter.ProductID)
	}
	if filter.LocationID != "" {
		query.Set("location_id", filter.LocationID)
	}

	var records []domain.StockRecord
	if err := c.do(ctx, http.MethodGet, "/stock", query, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AdjustStock emite um ajuste já validado e retorna o registro recalculado
// pelo servidor. O valor retornado é o autoritativo; nenhuma previsão de
// cliente deve sobrepor este resultado.
func (c *Client) AdjustStock(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error) {
	var record domain.StockRecord
	if err := c.do(ctx, http.MethodPost, "/stock/adjust", nil, adjustment, &record); err != nil {
		return domain.StockRecord{}, err
	}
	return record, nil
}

// --- Comodatos ---

// GetContainerLoans lista todos os comodatos registrados no servidor.
func (c *Client) GetContainerLoans(ctx context.Context) ([]domain.ContainerLoan, error) {
	var loans []domain.ContainerLoan
	if err := c.do(ctx, http.MethodGet, "/container-loans", nil, nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// GetContainerLoanStats busca os agregados de comodatos.
func (c *Client) GetContainerLoanStats(ctx context.Context) (domain.LoanStats, error) {
	var stats domain.LoanStats
	if err := c.do(ctx, http.MethodGet, "/container-loans/stats", nil, nil, &stats); err != nil {
		return domain.LoanStats{}, err
	}
	return stats, nil
}

// CreateContainerLoan cria um registro de comodato no formato legado de
// produto único aceito pelo servidor.
func (c *Client) CreateContainerLoan(ctx context.Context, payload domain.ContainerLoanPayload) (domain.ContainerLoan, error) {
	var loan domain.ContainerLoan
	if err := c.do(ctx, http.MethodPost, "/container-loans", nil, payload, &loan); err != nil {
		return domain.ContainerLoan{}, err
	}
	return loan, nil
}

// UpdateContainerLoan atualiza os campos editáveis de um comodato existente.
func (c *Client) UpdateContainerLoan(ctx context.Context, id string, payload domain.ContainerLoanPayload) (domain.ContainerLoan, error) {
	var loan domain.ContainerLoan
	if err := c.do(ctx, http.MethodPut, "/container-loans/"+id, nil, payload, &loan); err != nil {
		return domain.ContainerLoan{}, err
	}
	return loan, nil
}

// ReturnContainerLoan marca um comodato como Devolvido (transição terminal).
func (c *Client) ReturnContainerLoan(ctx context.Context, id string) (domain.ContainerLoan, error) {
	var loan domain.ContainerLoan
	if err := c.do(ctx, http.MethodPost, "/container-loans/"+id+"/return", nil, nil, &loan); err != nil {
		return domain.ContainerLoan{}, err
	}
	return loan, nil
}

// CancelContainerLoan marca um comodato como Cancelado (transição terminal).
func (c *Client) CancelContainerLoan(ctx context.Context, id string) (domain.ContainerLoan, error) {
	var loan domain.ContainerLoan
	if err := c.do(ctx, http.MethodPost, "/container-loans/"+id+"/cancel", nil, nil, &loan); err != nil {
		return domain.ContainerLoan{}, err
	}
	return loan, nil
}

// DeleteContainerLoanPermanent exclui definitivamente um comodato,
// independente do status. Irreversível.
func (c *Client) DeleteContainerLoanPermanent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/container-loans/"+id+"/permanent", nil, nil, nil)
}

// UploadLoanContract envia o contrato em PDF como multipart/form-data,
// vinculado a um comodato já criado.
func (c *Client) UploadLoanContract(ctx context.Context, loanID string, contract domain.ContractFile) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("contract", contract.Name)
	if err != nil {
		return apperror.NewInternalError("Falha ao montar multipart do contrato.", err)
	}
	if _, err := part.Write(contract.Content); err != nil {
		return apperror.NewInternalError("Falha ao escrever conteúdo do contrato.", err)
	}
	if err := writer.Close(); err != nil {
		return apperror.NewInternalError("Falha ao finalizar multipart do contrato.", err)
	}

	endpoint := c.baseURL + "/container-loans/" + loanID + "/contract"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return apperror.NewInternalError("Falha ao montar requisição de upload do contrato.", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := c.authorize(req); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Falha de rede ao enviar contrato.", err)
		return apperror.NewUpstreamError("", 0, err)
	}
	defer resp.Body.Close()

	var env Envelope
	if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr != nil {
		return apperror.NewUpstreamError("", resp.StatusCode, decodeErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return apperror.NewUpstreamError(env.Error, resp.StatusCode, nil)
	}
	return nil
}

// DownloadLoanContract baixa o binário do contrato de um comodato.
// Retorna o conteúdo e o Content-Type informado pelo servidor.
func (c *Client) DownloadLoanContract(ctx context.Context, loanID string) ([]byte, string, error) {
	endpoint := c.baseURL + "/container-loans/" + loanID + "/contract"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", apperror.NewInternalError("Falha ao montar requisição de download do contrato.", err)
	}
	if err := c.authorize(req); err != nil {
		return nil, "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Falha de rede ao baixar contrato.", err)
		return nil, "", apperror.NewUpstreamError("", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", apperror.NewNotFoundError(fmt.Sprintf("Contrato do comodato %s", loanID))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", apperror.NewUpstreamError("", resp.StatusCode, nil)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apperror.NewUpstreamError("Falha ao ler conteúdo do contrato.", resp.StatusCode, err)
	}
	return content, resp.Header.Get("Content-Type"), nil
}

// --- Catálogo ---

// GetProducts lista o catálogo de produtos da distribuidora.
func (c *Client) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetLocations lista os pontos de estoque da distribuidora.
func (c *Client) GetLocations(ctx context.Context) ([]domain.Location, error) {
	var locations []domain.Location
	if err := c.do(ctx, http.MethodGet, "/locations", nil, nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}
