package errors

import (
	"errors"
	"fmt"
	"net/http"

	"gogas/internal/domain"
)

// AppError é a interface central para todos os erros customizados do GoGas.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION", "UPSTREAM", "INTERNAL")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de cliente. Por contrato,
// nenhuma chamada de rede é emitida quando um destes é produzido: o erro é
// renderizado inline, ao lado do campo ofensor.
type ValidationError struct {
	Msg    string
	Fields []domain.FieldError
}

func (e *ValidationError) Error() string    { return e.Msg }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação com uma única mensagem.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NewFieldValidationError cria um erro de validação a partir do resultado
// acumulado de um formulário, preservando o mapeamento campo → mensagem.
func NewFieldValidationError(result domain.ValidationResult) AppError {
	return &ValidationError{Msg: result.First(), Fields: result.Errors}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito na regra de negócio (e.g., transição
// de status inválida em um comodato já encerrado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// UpstreamError representa uma falha de rede ou da API remota da
// distribuidora. Msg carrega a mensagem de erro do servidor quando presente,
// senão um texto genérico de fallback.
type UpstreamError struct {
	Msg        string
	StatusCode int // Status HTTP devolvido pelo servidor remoto (0 para falha de rede)
	Err        error
}

func (e *UpstreamError) Error() string    { return e.Msg }
func (e *UpstreamError) Category() string { return "UPSTREAM_ERROR" }
func (e *UpstreamError) HTTPStatus() int  { return http.StatusBadGateway } // 502
func (e *UpstreamError) Unwrap() error    { return e.Err }

// NewUpstreamError cria um erro de comunicação com a API remota.
func NewUpstreamError(msg string, statusCode int, err error) AppError {
	if msg == "" {
		msg = "Erro ao comunicar com o servidor. Tente novamente."
	}
	return &UpstreamError{Msg: msg, StatusCode: statusCode, Err: err}
}

// PartialFailureError representa a falha "branda" de um fluxo multi-etapas:
// passos anteriores foram concluídos e NÃO são desfeitos; apenas o restante
// falhou. Results preserva o desfecho de cada linha para o chamador.
type PartialFailureError struct {
	Msg     string
	Results []domain.LoanLineResult
	Err     error
}

func (e *PartialFailureError) Error() string    { return e.Msg }
func (e *PartialFailureError) Category() string { return "PARTIAL_FAILURE" }
func (e *PartialFailureError) HTTPStatus() int  { return http.StatusMultiStatus } // 207
func (e *PartialFailureError) Unwrap() error    { return e.Err }

// NewPartialFailureError cria um erro de falha parcial com os resultados por linha.
func NewPartialFailureError(msg string, results []domain.LoanLineResult, err error) AppError {
	return &PartialFailureError{Msg: msg, Results: results, Err: err}
}

// InternalError representa falhas inesperadas no serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro interno (para falhas de lógica não esperadas).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// --- Helpers para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP, categoria e mensagem.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratar como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}

// FieldsOf extrai o mapeamento campo → mensagem de um erro de validação,
// para renderização inline. Retorna nil para qualquer outro tipo de erro.
func FieldsOf(err error) []domain.FieldError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}
