package domain

// Field identifica, como enum fechado, o campo de formulário ao qual um erro
// de validação pertence. Substitui os mapas de erro indexados por string
// aberta: um handler só consegue anexar erros a campos que existem.
type Field string

const (
	FieldProduct        Field = "product_id"
	FieldLocation       Field = "location_id"
	FieldBottleType     Field = "bottle_type"
	FieldAdjustmentType Field = "adjustment_type"
	FieldQuantity       Field = "quantity"
	FieldDirection      Field = "direction"
	FieldEntityName     Field = "entity_name"
	FieldLoanDate       Field = "loan_date"
	FieldItems          Field = "items"
	FieldContract       Field = "contract"
)

// FieldError associa uma mensagem de validação a um campo específico,
// para renderização inline ao lado do campo ofensor.
type FieldError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

// ValidationResult acumula os erros de validação de uma submissão.
// Zero erros significa submissão liberada para a rede.
type ValidationResult struct {
	Errors []FieldError `json:"errors,omitempty"`
}

// Add registra um erro de validação para um campo.
func (v *ValidationResult) Add(field Field, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

// OK informa se a submissão passou em todas as validações de cliente.
func (v ValidationResult) OK() bool {
	return len(v.Errors) == 0
}

// First retorna a mensagem do primeiro erro, ou string vazia se não houver.
// Útil para compor a mensagem principal de um erro de validação.
func (v ValidationResult) First() string {
	if len(v.Errors) == 0 {
		return ""
	}
	return v.Errors[0].Message
}
