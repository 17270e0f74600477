package domain

// Product é um item do catálogo da distribuidora (e.g., botijão P13, P45).
// Cópia efêmera, somente leitura: o cadastro de produtos pertence à API remota
// e é consumido aqui apenas para popular os formulários.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	IsActive    bool    `json:"is_active"`
}

// Location é um ponto de estoque da distribuidora (depósito, loja, veículo).
type Location struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	IsActive bool   `json:"is_active"`
}

// CatalogService é a interface que a camada de Serviço de Catálogo DEVE implementar.
type CatalogService interface {
	ListProducts(ctx Context) ([]Product, error)
	ListLocations(ctx Context) ([]Location, error)
}
