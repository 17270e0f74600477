package stockservice

import (
	"context"

	"gogas/internal/domain"
	apperror "gogas/internal/errors"
	"gogas/internal/pkg/logger"
)

// StockRepository define o contrato que o Serviço de Estoque espera da camada
// de acesso a dados (snapshot e ajuste via API remota).
type StockRepository interface {
	GetStock(ctx context.Context, filter domain.StockFilter) ([]domain.StockRecord, error)
	Adjust(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error)
}

// Service é a estrutura que implementa a interface domain.StockService.
// Concentra o validador de ajuste de estoque: nenhum ajuste inválido chega à
// rede, e nenhum resultado é previsto localmente — o valor final é sempre o
// recalculado pelo servidor.
type Service struct {
	repo   StockRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo StockRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetStock busca o snapshot de estoque atual.
func (s *Service) GetStock(ctx domain.Context, filter domain.StockFilter) ([]domain.StockRecord, error) {
	ctxGo := s.goContext(ctx, "GetStock")

	records, err := s.repo.GetStock(ctxGo, filter)
	if err != nil {
		s.logger.Error("Falha ao buscar snapshot de estoque.", err)
		return nil, err
	}
	return records, nil
}

// Preview calcula a prévia consultiva exibida ao usuário durante a digitação.
// Uma subtração maior que o estoque atual é truncada em zero APENAS aqui:
// a submissão do mesmo ajuste é rejeitada (ver Adjust). Os dois comportamentos
// são intencionais e nomeados — a prévia orienta, a validação decide.
func (s *Service) Preview(ctx domain.Context, adjustment domain.StockAdjustmentRequest) (domain.StockPreview, error) {
	if result := validateTarget(adjustment); !result.OK() {
		return domain.StockPreview{}, apperror.NewFieldValidationError(result)
	}
	if adjustment.Quantity < 0 {
		var result domain.ValidationResult
		result.Add(domain.FieldQuantity, "Quantidade não pode ser negativa")
		return domain.StockPreview{}, apperror.NewFieldValidationError(result)
	}

	ctxGo := s.goContext(ctx, "Preview")
	current, err := s.currentCounter(ctxGo, adjustment)
	if err != nil {
		return domain.StockPreview{}, err
	}

	preview := domain.StockPreview{CurrentQuantity: current}
	switch adjustment.AdjustmentType {
	case domain.AdjustmentAdd:
		preview.NewQuantity = current + adjustment.Quantity
	case domain.AdjustmentSubtract:
		preview.NewQuantity = current - adjustment.Quantity
		if preview.NewQuantity < 0 {
			preview.NewQuantity = 0
			preview.Clamped = true
		}
	case domain.AdjustmentSet:
		preview.NewQuantity = adjustment.Quantity
	}
	return preview, nil
}

// Adjust valida e emite um ajuste de estoque. Em caso de falha de validação
// nenhuma chamada de rede é feita; em caso de sucesso o snapshot em cache é
// invalidado pelo repositório, forçando a releitura do valor do servidor.
//
// add e subtract NÃO são idempotentes (cada reenvio acumula); set é.
func (s *Service) Adjust(ctx domain.Context, adjustment domain.StockAdjustmentRequest) (domain.StockRecord, error) {
	s.logger.Debug("Iniciando ajuste de estoque no serviço.", map[string]interface{}{
		"product_id":      adjustment.ProductID,
		"location_id":     adjustment.LocationID,
		"bottle_type":     adjustment.BottleType,
		"adjustment_type": adjustment.AdjustmentType,
		"quantity":        adjustment.Quantity,
	})

	result := validateTarget(adjustment)
	validateQuantity(adjustment, &result)
	if !result.OK() {
		s.logger.Warn("Ajuste de estoque rejeitado na validação.", map[string]interface{}{"error": result.First()})
		return domain.StockRecord{}, apperror.NewFieldValidationError(result)
	}

	ctxGo := s.goContext(ctx, "Adjust")

	// subtract exige conhecer o contador atual: remover mais do que existe é
	// rejeitado aqui, nunca truncado — o truncamento só existe na prévia.
	if adjustment.AdjustmentType == domain.AdjustmentSubtract {
		current, err := s.currentCounter(ctxGo, adjustment)
		if err != nil {
			return domain.StockRecord{}, err
		}
		if adjustment.Quantity > current {
			var subtractResult domain.ValidationResult
			subtractResult.Add(domain.FieldQuantity, "Quantidade a remover é maior que o estoque atual")
			s.logger.Warn("Subtração maior que o estoque atual.", map[string]interface{}{
				"current":  current,
				"quantity": adjustment.Quantity,
			})
			return domain.StockRecord{}, apperror.NewFieldValidationError(subtractResult)
		}
	}

	record, err := s.repo.Adjust(ctxGo, adjustment)
	if err != nil {
		s.logger.Error("Falha ao aplicar ajuste de estoque no servidor.", err)
		return domain.StockRecord{}, err
	}

	s.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"product_id":   record.ProductID,
		"location_id":  record.LocationID,
		"new_quantity": record.Counter(adjustment.BottleType),
	})
	return record, nil
}

// validateTarget valida os campos de alvo do ajuste (produto, local, tipos).
func validateTarget(adjustment domain.StockAdjustmentRequest) domain.ValidationResult {
	var result domain.ValidationResult
	if adjustment.ProductID == "" {
		result.Add(domain.FieldProduct, "Produto é obrigatório")
	}
	if adjustment.LocationID == "" {
		result.Add(domain.FieldLocation, "Local é obrigatório")
	}
	if !adjustment.BottleType.IsValid() {
		result.Add(domain.FieldBottleType, "Tipo de botijão inválido")
	}
	if !adjustment.AdjustmentType.IsValid() {
		result.Add(domain.FieldAdjustmentType, "Tipo de ajuste inválido")
	}
	return result
}

// validateQuantity aplica a regra de quantidade por operação: add e subtract
// exigem quantidade estritamente positiva; set aceita zero como valor absoluto
// válido (zerar um contador é um ajuste legítimo).
func validateQuantity(adjustment domain.StockAdjustmentRequest, result *domain.ValidationResult) {
	switch adjustment.AdjustmentType {
	case domain.AdjustmentSet:
		if adjustment.Quantity < 0 {
			result.Add(domain.FieldQuantity, "Quantidade não pode ser negativa")
		}
	case domain.AdjustmentAdd, domain.AdjustmentSubtract:
		if adjustment.Quantity <= 0 {
			result.Add(domain.FieldQuantity, "Quantidade deve ser maior que zero")
		}
	}
}

// currentCounter busca o valor atual do contador alvo do ajuste.
// Registro inexistente no servidor equivale a contador zero.
func (s *Service) currentCounter(ctx context.Context, adjustment domain.StockAdjustmentRequest) (int, error) {
	records, err := s.repo.GetStock(ctx, domain.StockFilter{
		ProductID:  adjustment.ProductID,
		LocationID: adjustment.LocationID,
	})
	if err != nil {
		s.logger.Error("Falha ao buscar estoque atual para validação.", err)
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	return records[0].Counter(adjustment.BottleType), nil
}

// goContext converte domain.Context para context.Context (padrão das camadas).
func (s *Service) goContext(ctx domain.Context, operation string) context.Context {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para "+operation, nil)
	}
	return ctxGo
}
