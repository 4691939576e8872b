package stockservice

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"stockui/internal/catalog"
	"stockui/internal/domain"
	apperror "stockui/internal/errors"
	"stockui/internal/pkg/i18n"
	"stockui/internal/pkg/logger"
	"stockui/internal/pkg/validation"
)

// ProductRepository define o contrato que o Serviço de Estoque espera da API de inventário.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	RecordMovement(ctx context.Context, movement domain.InventoryMovement) error
}

// Service conduz o formulário de movimentação de inventário.
// O estoque nunca é calculado aqui: depois de uma movimentação a lista é buscada de novo.
type Service struct {
	repo     ProductRepository
	logger   logger.Logger
	validate *validator.Validate
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger, validate: validation.New()}
}

// MovementFields são os valores do formulário como digitados.
type MovementFields struct {
	ProductID string `json:"product_id" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=entrada salida"`
	Quantity  string `json:"quantity" validate:"required,posint"`
}

// MovementPatch traz os campos alterados (nil = não mexer). Search filtra o seletor de produtos.
type MovementPatch struct {
	ProductID *string `json:"product_id"`
	Type      *string `json:"type"`
	Quantity  *string `json:"quantity"`
	Search    *string `json:"search"`
}

// MovementForm é o estado do formulário "Registrar Movimiento".
type MovementForm struct {
	domain.FormState
	Fields   MovementFields   `json:"fields"`
	Search   string           `json:"search"`
	Products []domain.Product `json:"products"`
}

// NewMovementForm retorna o formulário inicial: entrada, quantidade 1, nenhum produto.
func NewMovementForm() MovementForm {
	return MovementForm{
		FormState: domain.NewFormState(),
		Fields: MovementFields{
			Type:     string(domain.MovementIncrease),
			Quantity: "1",
		},
		Products: []domain.Product{},
	}
}

// MountMovement carrega os produtos do seletor. Falha na carga deixa o banner de erro.
func (s *Service) MountMovement(ctx context.Context) MovementForm {
	form := NewMovementForm()

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.logger.Error("Falha ao carregar produtos para movimentação.", err)
		form.Fail(i18n.T(ctx, i18n.MsgLoadListFailed))
		return form
	}
	form.Products = products
	return form
}

// SetFields aplica uma edição. Alterar apenas a busca não mexe no status do formulário.
func (s *Service) SetFields(ctx context.Context, form *MovementForm, patch MovementPatch) error {
	if err := form.Editable(); err != nil {
		return err
	}
	if patch.Search != nil {
		form.Search = *patch.Search
	}
	if patch.ProductID == nil && patch.Type == nil && patch.Quantity == nil {
		return nil
	}

	if err := form.Touch(); err != nil {
		return err
	}
	setIf(&form.Fields.ProductID, patch.ProductID)
	setIf(&form.Fields.Type, patch.Type)
	setIf(&form.Fields.Quantity, patch.Quantity)

	if form.Validated {
		form.InvalidFields = s.invalidFields(form.Fields)
	}
	return nil
}

// Submit registra a movimentação.
// O único erro retornado é ConflictError; os demais desfechos ficam no formulário.
func (s *Service) Submit(ctx context.Context, form *MovementForm) error {
	// 1. Guarda de concorrência
	if err := form.Editable(); err != nil {
		return err
	}

	// 2. Validação local
	if invalid := s.invalidFields(form.Fields); len(invalid) > 0 {
		s.logger.Debug("Movimentação barrada pela validação local", map[string]interface{}{"fields": invalid})
		form.Block(invalid, invalidHint(ctx, invalid))
		return nil
	}

	if err := form.Begin(); err != nil {
		return err
	}

	mt, _ := domain.ParseMovementType(form.Fields.Type)
	qty, _ := validation.ParseInt(form.Fields.Quantity)
	movement := domain.InventoryMovement{
		ProductID: domain.ProductID(form.Fields.ProductID),
		Type:      mt,
		Quantity:  qty,
	}

	// 3. Delegação para o Repositório
	if err := s.repo.RecordMovement(ctx, movement); err != nil {
		var stockErr *apperror.InsufficientStockError
		if errors.As(err, &stockErr) {
			msg := stockErr.Msg
			if strings.TrimSpace(msg) == "" {
				msg = i18n.T(ctx, i18n.MsgInsufficientStock)
			}
			form.Fail(msg)
			return nil
		}
		s.logger.Error("Falha ao registrar movimentação.", err)
		form.Fail(i18n.T(ctx, i18n.MsgMovementFailed))
		return nil
	}

	// 4. Sucesso: nova lista do backend (o estoque exibido vem dela, nunca de cálculo local)
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.logger.Warn("Movimentação registrada, mas a lista não pôde ser recarregada.", map[string]interface{}{
			"product_id": movement.ProductID.String(),
			"error":      err.Error(),
		})
	} else {
		form.Products = products
	}

	s.logger.Info("Movimentação registrada pelo formulário.", map[string]interface{}{
		"product_id": movement.ProductID.String(),
		"type":       string(movement.Type),
		"quantity":   movement.Quantity,
	})

	form.Fields.Quantity = "1"
	form.Validated = false
	form.InvalidFields = nil
	form.Succeed(i18n.T(ctx, i18n.MsgMovementRecorded, typeLabel(ctx, movement.Type), movement.Quantity))
	return nil
}

// --- Visão ---

// SelectedProduct descreve o estoque do produto escolhido no seletor.
type SelectedProduct struct {
	ID    domain.ProductID `json:"id"`
	Name  string           `json:"name,omitempty"`
	Stock int              `json:"stock"`
	Tier  catalog.Tier     `json:"tier"`
	Badge string           `json:"badge"`
}

// MovementView é o que a tela recebe: o formulário, as opções filtradas pela busca e o
// produto selecionado.
type MovementView struct {
	MovementForm
	Options  []domain.Product `json:"options"`
	Selected *SelectedProduct `json:"selected"`
}

// View deriva a visão do formulário. Produto selecionado ausente da lista aparece com estoque 0.
func View(form MovementForm) MovementView {
	view := MovementView{
		MovementForm: form,
		Options:      catalog.Apply(form.Products, domain.FilterCriteria{NameSubstring: form.Search}),
	}

	if form.Fields.ProductID == "" {
		return view
	}
	selected := &SelectedProduct{ID: domain.ProductID(form.Fields.ProductID)}
	for _, p := range form.Products {
		if p.ID == selected.ID {
			selected.Name = p.Name
			selected.Stock = p.Stock
			break
		}
	}
	selected.Tier = catalog.Classify(selected.Stock)
	selected.Badge = selected.Tier.Badge()
	view.Selected = selected
	return view
}

// --- Helpers ---

func (s *Service) invalidFields(fields MovementFields) []string {
	return validation.InvalidFields(s.validate.Struct(fields))
}

func typeLabel(ctx context.Context, t domain.MovementType) string {
	if t == domain.MovementDecrease {
		return i18n.T(ctx, i18n.MsgMovementDecrease)
	}
	return i18n.T(ctx, i18n.MsgMovementIncrease)
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// invalidHint: sem produto escolhido o aviso pede a seleção; nos demais casos lista os campos.
func invalidHint(ctx context.Context, fields []string) string {
	if slices.Contains(fields, "product_id") {
		return i18n.T(ctx, i18n.MsgNoProductSelected)
	}
	return i18n.T(ctx, i18n.MsgInvalidFields, strings.Join(fields, ", "))
}
