package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService define o contrato para emissão do token de serviço enviado
// como credencial nas chamadas à API remota da distribuidora.
type TokenService interface {
	GenerateToken() (string, error)
}

// ServiceClaims define as informações carregadas no JWT de serviço.
// É obrigatório incorporar jwt.RegisteredClaims.
type ServiceClaims struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// Service implementa a interface TokenService
type Service struct {
	secretKey []byte
	clientID  string
	expiry    time.Duration
}

// NewService cria uma nova instância do serviço Token.
func NewService(secretKey, clientID string, expiry time.Duration) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		clientID:  clientID,
		expiry:    expiry,
	}
}

// GenerateToken cria um novo JWT assinado identificando este gateway perante
// a API remota. O token é de curta duração e regenerado por chamada; a
// autorização em si continua sendo decidida pelo servidor.
func (s *Service) GenerateToken() (string, error) {
	now := time.Now()
	claims := ServiceClaims{
		ClientID: s.clientID,
		Scope:    "stock:write loans:write catalog:read",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "GoGas-Gateway",
			Subject:   s.clientID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Assina o token com a chave secreta
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("falha ao assinar o token: %w", err)
	}

	return tokenString, nil
}
