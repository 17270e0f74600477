package domain

import "time"

// BottleType identifica qual dos três contadores independentes de um registro
// de estoque a operação afeta.
type BottleType string

const (
	BottleFull        BottleType = "full"        // Cheio
	BottleEmpty       BottleType = "empty"       // Vazio
	BottleMaintenance BottleType = "maintenance" // Manutenção
)

// IsValid verifica se o tipo de botijão é um dos três suportados.
func (b BottleType) IsValid() bool {
	switch b {
	case BottleFull, BottleEmpty, BottleMaintenance:
		return true
	}
	return false
}

// AdjustmentType identifica a operação de ajuste de estoque.
type AdjustmentType string

const (
	AdjustmentAdd      AdjustmentType = "add"
	AdjustmentSubtract AdjustmentType = "subtract"
	AdjustmentSet      AdjustmentType = "set"
)

// IsValid verifica se a operação de ajuste é uma das três suportadas.
func (a AdjustmentType) IsValid() bool {
	switch a {
	case AdjustmentAdd, AdjustmentSubtract, AdjustmentSet:
		return true
	}
	return false
}

// StockStatus é a classificação meramente visual de um registro de estoque em
// relação aos limites mínimo/máximo. Os limites são consultivos: nenhuma
// operação é bloqueada por eles.
type StockStatus string

const (
	StockLow    StockStatus = "baixo"
	StockNormal StockStatus = "normal"
	StockHigh   StockStatus = "alto"
)

// StockRecord representa o snapshot de estoque de um par (produto, local),
// conforme retornado pela API da distribuidora. Os três contadores são
// independentes e nunca negativos; o dono do estado é o servidor remoto —
// este registro é uma cópia efêmera, descartada a cada navegação.
type StockRecord struct {
	ProductID           string    `json:"product_id"`
	ProductName         string    `json:"product_name,omitempty"`
	LocationID          string    `json:"location_id"`
	LocationName        string    `json:"location_name,omitempty"`
	FullQuantity        int       `json:"full_quantity"`
	EmptyQuantity       int       `json:"empty_quantity"`
	MaintenanceQuantity int       `json:"maintenance_quantity"`
	MinStock            int       `json:"min_stock"`
	MaxStock            int       `json:"max_stock"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Counter retorna o valor atual do contador correspondente ao tipo de botijão.
func (s StockRecord) Counter(bottleType BottleType) int {
	switch bottleType {
	case BottleEmpty:
		return s.EmptyQuantity
	case BottleMaintenance:
		return s.MaintenanceQuantity
	default:
		return s.FullQuantity
	}
}

// Status classifica o contador de cheios contra os limites consultivos.
// MaxStock igual a zero significa "sem limite superior configurado".
func (s StockRecord) Status() StockStatus {
	if s.FullQuantity < s.MinStock {
		return StockLow
	}
	if s.MaxStock > 0 && s.FullQuantity > s.MaxStock {
		return StockHigh
	}
	return StockNormal
}

// StockAdjustmentRequest é o payload transiente de um ajuste de estoque.
// Existe apenas durante uma submissão de formulário; não é persistido aqui.
type StockAdjustmentRequest struct {
	ProductID      string         `json:"product_id"`
	LocationID     string         `json:"location_id"`
	BottleType     BottleType     `json:"bottle_type"`
	AdjustmentType AdjustmentType `json:"adjustment_type"`
	Quantity       int            `json:"quantity"`
	Reason         string         `json:"reason,omitempty"`
}

// StockPreview é a prévia consultiva exibida ao usuário enquanto digita.
// Clamped indica que uma subtração estourou o estoque atual e o valor exibido
// foi truncado em zero — a submissão do mesmo ajuste será rejeitada.
type StockPreview struct {
	CurrentQuantity int  `json:"current_quantity"`
	NewQuantity     int  `json:"new_quantity"`
	Clamped         bool `json:"clamped"`
}

// StockFilter define os parâmetros de busca do snapshot de estoque.
type StockFilter struct {
	ProductID  string
	LocationID string
}

// --- Interfaces de Contrato ---

// StockService é a interface que a camada de Serviço de Estoque DEVE implementar.
type StockService interface {
	GetStock(ctx Context, filter StockFilter) ([]StockRecord, error)
	Preview(ctx Context, adjustment StockAdjustmentRequest) (StockPreview, error)
	Adjust(ctx Context, adjustment StockAdjustmentRequest) (StockRecord, error)
}

// Context é uma interface que encapsula o Go context.Context.
// É usado para propagar o timeout e sinais de cancelamento pelas camadas.
// Isso evita a dependência direta do pacote "context".
type Context interface{}
