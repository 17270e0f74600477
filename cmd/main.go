package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"gogas/config"
	"gogas/internal/pkg/apiclient"
	"gogas/internal/pkg/cache"
	"gogas/internal/pkg/logger"
	"gogas/internal/pkg/middleware"
	"gogas/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"gogas/internal/api/catalog" // Handlers
	"gogas/internal/api/loan"
	"gogas/internal/api/router" // Roteador central
	"gogas/internal/api/stock"
	"gogas/internal/repository/catalogrepo" // Acesso a Dados (API remota + cache)
	"gogas/internal/repository/loanrepo"
	"gogas/internal/repository/stockrepo"
	"gogas/internal/service/catalogservice" // Lógica de Validação/Orquestração
	"gogas/internal/service/loanservice"
	"gogas/internal/service/stockservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando gateway GoGas...")
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	if err := godotenv.Load(); err != nil {
		// Se o arquivo .env não for encontrado, avisamos mas continuamos,
		// pois as variáveis essenciais podem estar no ambiente do sistema.
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Cache (Redis) — snapshot de estoque/catálogo e rate limiting
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	appLog.Info("Conexão Redis estabelecida.", nil)

	// B. Credencial de serviço (JWT enviado nas chamadas à API remota)
	tokenSvc := token.NewService(cfg.ServiceTokenKey, cfg.ServiceClientID, cfg.TokenExpiry)
	appLog.Debug("Serviço de Tokens JWT inicializado.", nil)

	// C. Cliente da API remota da distribuidora (dona do estado autoritativo)
	api := apiclient.NewClient(cfg.APIBaseURL, cfg.APITimeout, tokenSvc, appLog)
	appLog.Info("Cliente da API remota inicializado.", map[string]interface{}{"base_url": cfg.APIBaseURL})

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados sobre a API remota)
	stockRepo := stockrepo.NewStockRepository(api, cacheClient, cfg.CacheTTL, appLog)
	loanRepo := loanrepo.NewLoanRepository(api, cacheClient, cfg.CacheTTL, appLog)
	catalogRepo := catalogrepo.NewCatalogRepository(api, cacheClient, 10*cfg.CacheTTL, appLog)
	appLog.Debug("Repositórios inicializados.", nil)

	// B. Serviços (Validadores e Orquestração)
	stockSvc := stockservice.NewService(stockRepo, appLog)
	loanSvc := loanservice.NewService(loanRepo, appLog)
	catalogSvc := catalogservice.NewService(catalogRepo, appLog)
	appLog.Debug("Serviços inicializados.", nil)

	// C. Handlers (Camada de Apresentação)
	stockHandler := stock.NewHandler(stockSvc, appLog)
	loanHandler := loan.NewHandler(loanSvc, appLog)
	catalogHandler := catalog.NewHandler(catalogSvc, appLog)
	appLog.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(stockHandler, loanHandler, catalogHandler)

	// Middlewares globais, de fora para dentro: identificação da requisição,
	// log de acesso e rate limiting por IP apoiado no Redis.
	var handler http.Handler = r
	handler = middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)(handler)
	handler = middleware.AccessLog(appLog)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second, // uploads de contrato até 10MB
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Gateway GoGas ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
