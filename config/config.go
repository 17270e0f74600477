package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config armazena todas as configurações do gateway GoGas.
// Todos os campos são definidos com base nos requisitos do projeto
// (API remota, Cache, Credencial de serviço, Robustez).
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// API remota da distribuidora (dona de todo o estado autoritativo)
	APIBaseURL string
	APITimeout time.Duration

	// Cache (Redis) — snapshot de estoque/catálogo e rate limiting
	RedisAddr string
	CacheTTL  time.Duration

	// Credencial de serviço (JWT enviado nas chamadas à API remota)
	ServiceTokenKey string
	ServiceClientID string
	TokenExpiry     time.Duration

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() *Config {
	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. API remota
		// mustGetEnv garante que o gateway não inicie sem saber quem é o upstream
		APIBaseURL: mustGetEnv("API_BASE_URL"),
		APITimeout: getDurationEnv("API_TIMEOUT_SEC", 15) * time.Second, // 15s padrão

		// 3. Cache (Redis)
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:  getDurationEnv("CACHE_TTL_SEC", 30) * time.Second, // 30s padrão

		// 4. Credencial de serviço (JWT)
		ServiceTokenKey: mustGetEnv("SERVICE_TOKEN_KEY"),
		ServiceClientID: getEnv("SERVICE_CLIENT_ID", "gogas-gateway"),
		TokenExpiry:     getDurationEnv("SERVICE_TOKEN_EXPIRY_MIN", 5) * time.Minute, // 5 min padrão

		// 5. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute, // 1 min padrão
	}

	return cfg
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(value)
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
