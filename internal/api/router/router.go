package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"gogas/internal/api/catalog"
	"gogas/internal/api/loan"
	"gogas/internal/api/stock"
)

// NewRouter configura e retorna o roteador HTTP principal do gateway.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(stockHandler *stock.Handler, loanHandler *loan.Handler, catalogHandler *catalog.Handler) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	// --- 1. Rotas de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Rotas do Módulo de Estoque (v1) ---
	mux.HandleFunc("/v1/stock", stockHandler.GetStockHandler)
	mux.HandleFunc("/v1/stock/adjust", stockHandler.AdjustStockHandler)
	mux.HandleFunc("/v1/stock/adjust/preview", stockHandler.PreviewStockHandler)

	// --- 3. Rotas do Módulo de Comodatos (v1) ---
	// O caminho exato /v1/loans/stats tem precedência sobre o prefixo /v1/loans/.
	mux.HandleFunc("/v1/loans", loanHandler.LoansHandler)
	mux.HandleFunc("/v1/loans/stats", loanHandler.StatsHandler)
	mux.HandleFunc("/v1/loans/", loanHandler.LoanByIDHandler)

	// --- 4. Rotas de Catálogo (dados de formulário) ---
	mux.HandleFunc("/v1/products", catalogHandler.ListProductsHandler)
	mux.HandleFunc("/v1/locations", catalogHandler.ListLocationsHandler)

	// --- 5. Documentação da API ---
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
