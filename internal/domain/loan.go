package domain

import "time"

// LoanDirection indica o sentido do comodato de botijões.
type LoanDirection string

const (
	LoanOutbound LoanDirection = "Saída"   // botijões emprestados a terceiros
	LoanInbound  LoanDirection = "Entrada" // botijões recebidos de terceiros
)

// IsValid verifica se a direção do comodato é uma das duas suportadas.
func (d LoanDirection) IsValid() bool {
	return d == LoanOutbound || d == LoanInbound
}

// LoanStatus é o estado do ciclo de vida de um comodato.
//
// O registro nasce Ativo. Devolvido e Cancelado são terminais e alcançados
// apenas por ação explícita; nenhuma transição retrocede. A exclusão
// definitiva é uma ação destrutiva à parte, alcançável de qualquer estado.
type LoanStatus string

const (
	LoanActive    LoanStatus = "Ativo"
	LoanReturned  LoanStatus = "Devolvido"
	LoanCancelled LoanStatus = "Cancelado"
)

// ContainerLoan representa um comodato de botijões retornáveis entre a
// distribuidora e uma entidade externa, conforme registrado pelo servidor.
// O servidor só aceita registros de produto único: um formulário com N
// produtos vira N registros independentes (ver LoanLineResult).
type ContainerLoan struct {
	ID                 string        `json:"id"`
	Direction          LoanDirection `json:"direction"`
	EntityType         string        `json:"entity_type,omitempty"`
	EntityName         string        `json:"entity_name"`
	EntityContact      string        `json:"entity_contact,omitempty"`
	EntityAddress      string        `json:"entity_address,omitempty"`
	LocationID         string        `json:"location_id"`
	ProductID          string        `json:"product_id"`
	Quantity           int           `json:"quantity"`
	LoanDate           string        `json:"loan_date"`
	ExpectedReturnDate string        `json:"expected_return_date,omitempty"`
	ActualReturnDate   string        `json:"actual_return_date,omitempty"`
	Status             LoanStatus    `json:"status"`
	Notes              string        `json:"notes,omitempty"`
	HasContract        bool          `json:"has_contract"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// LoanLineItem é uma linha (produto, quantidade) do formulário de comodato.
type LoanLineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ContainerLoanRequest é o payload multi-produto do formulário de comodato.
// Os campos de entidade, datas, local e observações são compartilhados por
// todas as linhas na submissão.
type ContainerLoanRequest struct {
	Direction          LoanDirection  `json:"direction"`
	EntityType         string         `json:"entity_type,omitempty"`
	EntityName         string         `json:"entity_name"`
	EntityContact      string         `json:"entity_contact,omitempty"`
	EntityAddress      string         `json:"entity_address,omitempty"`
	LocationID         string         `json:"location_id"`
	LoanDate           string         `json:"loan_date"`
	ExpectedReturnDate string         `json:"expected_return_date,omitempty"`
	Notes              string         `json:"notes,omitempty"`
	Items              []LoanLineItem `json:"items"`
}

// ContainerLoanPayload é o formato legado, de produto único, que o servidor
// aceita em criações e atualizações de comodato. Uma submissão multi-produto
// é serializada em N payloads destes, um por linha, com os campos
// compartilhados repetidos (ver loanservice).
type ContainerLoanPayload struct {
	Direction          LoanDirection `json:"direction"`
	EntityType         string        `json:"entity_type,omitempty"`
	EntityName         string        `json:"entity_name"`
	EntityContact      string        `json:"entity_contact,omitempty"`
	EntityAddress      string        `json:"entity_address,omitempty"`
	LocationID         string        `json:"location_id"`
	ProductID          string        `json:"product_id"`
	Quantity           int           `json:"quantity"`
	LoanDate           string        `json:"loan_date"`
	ExpectedReturnDate string        `json:"expected_return_date,omitempty"`
	Notes              string        `json:"notes,omitempty"`
}

// ContractFile é o arquivo de contrato opcionalmente anexado a um comodato.
// Apenas PDF, no máximo 10MB; o envio acontece em um segundo passo de rede,
// após a criação do(s) registro(s).
type ContractFile struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Content  []byte `json:"-"`
}

// LoanLineResult é o desfecho individual de uma linha da submissão em leque.
// LoanID fica vazio quando a chamada da linha falhou ou não chegou a ser
// emitida; Error carrega a mensagem da falha, quando houver.
type LoanLineResult struct {
	LineID    string `json:"line_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	LoanID    string `json:"loan_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CreateLoanResult agrega o resultado de uma submissão de comodato:
// os desfechos por linha e o aviso brando do passo de contrato, se houver.
type CreateLoanResult struct {
	Lines           []LoanLineResult `json:"lines"`
	ContractWarning string           `json:"contract_warning,omitempty"`
}

// LoanStats são os agregados exibidos no topo da listagem de comodatos.
type LoanStats struct {
	Active        int `json:"active"`
	Returned      int `json:"returned"`
	Cancelled     int `json:"cancelled"`
	TotalBottles  int `json:"total_bottles"`
	ActiveBottles int `json:"active_bottles"`
}

// LoanService é a interface que a camada de Serviço de Comodatos DEVE implementar.
type LoanService interface {
	ListLoans(ctx Context) ([]ContainerLoan, error)
	Stats(ctx Context) (LoanStats, error)
	CreateLoan(ctx Context, request ContainerLoanRequest, contract *ContractFile) (CreateLoanResult, error)
	UpdateLoan(ctx Context, id string, request ContainerLoanRequest) (ContainerLoan, error)
	ReturnLoan(ctx Context, id string) (ContainerLoan, error)
	CancelLoan(ctx Context, id string) (ContainerLoan, error)
	DeleteLoanPermanent(ctx Context, id string) error
	UploadContract(ctx Context, id string, contract ContractFile) error
	DownloadContract(ctx Context, id string) ([]byte, string, error)
}
