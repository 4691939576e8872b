package productservice

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"stockui/internal/domain"
	apperror "stockui/internal/errors"
	"stockui/internal/pkg/i18n"
	"stockui/internal/pkg/logger"
	"stockui/internal/pkg/validation"
)

// ProductRepository define o contrato (interface) que este Serviço espera da API de inventário.
type ProductRepository interface {
	GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error)
	CreateProduct(ctx context.Context, fields domain.ProductFields) error
	UpdateProduct(ctx context.Context, id domain.ProductID, update domain.ProductUpdate) error
}

// ListPath é para onde o navegador volta depois de criar ou editar um produto.
const ListPath = "/"

// Service conduz os formulários de criação e edição de produto.
// O estado do formulário é um valor passado por ponteiro; quem guarda é o handler (sessão).
type Service struct {
	repo     ProductRepository
	logger   logger.Logger
	validate *validator.Validate
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger, validate: validation.New()}
}

// --- Formulário de Criação ---

// CreateFields são os valores como o usuário os digitou.
type CreateFields struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       string `json:"price" validate:"required,nonneg"`
	Stock       string `json:"stock" validate:"required,nonnegint"`
}

// CreatePatch traz apenas os campos alterados (nil = não mexer).
type CreatePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Stock       *string `json:"stock"`
}

// CreateForm é o estado do formulário "Nuevo Producto".
type CreateForm struct {
	domain.FormState
	Fields     CreateFields `json:"fields"`
	RedirectTo string       `json:"redirect_to,omitempty"`
}

// NewCreateForm retorna o formulário com os valores iniciais (preço e estoque "0").
func NewCreateForm() CreateForm {
	return CreateForm{
		FormState: domain.NewFormState(),
		Fields:    CreateFields{Price: "0", Stock: "0"},
	}
}

// SetCreateFields aplica uma edição. Volta para Idle e limpa avisos; rejeita durante a submissão.
func (s *Service) SetCreateFields(ctx context.Context, form *CreateForm, patch CreatePatch) error {
	if err := form.Touch(); err != nil {
		return err
	}
	form.RedirectTo = ""
	setIf(&form.Fields.Name, patch.Name)
	setIf(&form.Fields.Description, patch.Description)
	setIf(&form.Fields.Price, patch.Price)
	setIf(&form.Fields.Stock, patch.Stock)

	if form.Validated {
		form.InvalidFields = s.invalidFields(form.Fields)
	}
	return nil
}

// SubmitCreate envia o formulário de criação.
// O único erro retornado é ConflictError (submissão já pendente); os demais desfechos
// ficam no próprio formulário (campos inválidos, banner de erro ou sucesso).
func (s *Service) SubmitCreate(ctx context.Context, form *CreateForm) error {
	// 1. Guarda de concorrência
	if err := form.Editable(); err != nil {
		return err
	}

	// 2. Validação local: barra a submissão sem chamada de rede
	if invalid := s.invalidFields(form.Fields); len(invalid) > 0 {
		s.logger.Debug("Criação barrada pela validação local", map[string]interface{}{"fields": invalid})
		form.Block(invalid, invalidHint(ctx, invalid))
		return nil
	}

	// 3. Submitting
	if err := form.Begin(); err != nil {
		return err
	}

	price, _ := validation.ParseFloat(form.Fields.Price)
	stock, _ := validation.ParseInt(form.Fields.Stock)
	payload := domain.ProductFields{
		Name:        form.Fields.Name,
		Description: form.Fields.Description,
		Price:       price,
		Stock:       stock,
	}

	// 4. Delegação para o Repositório
	if err := s.repo.CreateProduct(ctx, payload); err != nil {
		s.logger.Error("Falha ao criar produto.", err)
		form.Fail(failureMessage(ctx, err, i18n.MsgCreateFailed))
		form.InvalidFields = rejectedFields(err)
		return nil
	}

	// 5. Sucesso: formulário volta aos valores iniciais e o navegador segue para a listagem
	s.logger.Info("Produto criado pelo formulário.", map[string]interface{}{"name": payload.Name})
	form.Fields = NewCreateForm().Fields
	form.Validated = false
	form.InvalidFields = nil
	form.Succeed("")
	form.RedirectTo = ListPath
	return nil
}

// --- Formulário de Edição ---

// EditFields são os valores do formulário de edição. Stock é somente leitura.
type EditFields struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       string `json:"price" validate:"required,nonneg"`
	Stock       string `json:"stock" validate:"-"`
}

// EditPatch traz os campos editáveis alterados; estoque não faz parte.
type EditPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
}

// EditForm é o estado do formulário "Editar Producto".
type EditForm struct {
	domain.FormState
	ProductID  domain.ProductID `json:"product_id"`
	Loaded     bool             `json:"loaded"`
	Fields     EditFields       `json:"fields"`
	RedirectTo string           `json:"redirect_to,omitempty"`
}

// MountEdit carrega o produto e preenche o formulário, incluindo o estoque (somente leitura).
// Se a carga falhar, o formulário volta com o banner "não foi possível carregar".
func (s *Service) MountEdit(ctx context.Context, id domain.ProductID) EditForm {
	form := EditForm{FormState: domain.NewFormState(), ProductID: id}

	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		s.logger.Error("Falha ao carregar produto para edição.", err)
		form.Fail(i18n.T(ctx, i18n.MsgLoadProductFailed))
		return form
	}

	form.Loaded = true
	form.Fields = EditFields{
		Name:        product.Name,
		Description: product.Description,
		Price:       formatFloat(product.Price),
		Stock:       formatInt(product.Stock),
	}
	return form
}

// SetEditFields aplica uma edição ao formulário de edição.
func (s *Service) SetEditFields(ctx context.Context, form *EditForm, patch EditPatch) error {
	if err := form.Touch(); err != nil {
		return err
	}
	form.RedirectTo = ""
	setIf(&form.Fields.Name, patch.Name)
	setIf(&form.Fields.Description, patch.Description)
	setIf(&form.Fields.Price, patch.Price)

	if form.Validated {
		form.InvalidFields = s.invalidFields(form.Fields)
	}
	return nil
}

// SubmitEdit envia nome, descrição e preço. O payload não tem estoque.
func (s *Service) SubmitEdit(ctx context.Context, form *EditForm) error {
	if err := form.Editable(); err != nil {
		return err
	}

	if invalid := s.invalidFields(form.Fields); len(invalid) > 0 {
		s.logger.Debug("Edição barrada pela validação local", map[string]interface{}{
			"product_id": form.ProductID.String(),
			"fields":     invalid,
		})
		form.Block(invalid, invalidHint(ctx, invalid))
		return nil
	}

	if err := form.Begin(); err != nil {
		return err
	}

	price, _ := validation.ParseFloat(form.Fields.Price)
	update := domain.ProductUpdate{
		Name:        form.Fields.Name,
		Description: form.Fields.Description,
		Price:       price,
	}

	if err := s.repo.UpdateProduct(ctx, form.ProductID, update); err != nil {
		s.logger.Error("Falha ao atualizar produto.", err)
		form.Fail(failureMessage(ctx, err, i18n.MsgUpdateFailed))
		form.InvalidFields = rejectedFields(err)
		return nil
	}

	s.logger.Info("Produto atualizado pelo formulário.", map[string]interface{}{"product_id": form.ProductID.String()})
	form.Validated = false
	form.InvalidFields = nil
	form.Succeed("")
	form.RedirectTo = ListPath
	return nil
}

// --- Helpers ---

func (s *Service) invalidFields(fields interface{}) []string {
	return validation.InvalidFields(s.validate.Struct(fields))
}

// failureMessage usa o texto do backend em erros de validação; nos demais, a mensagem genérica.
func failureMessage(ctx context.Context, err error, fallbackKey string) string {
	var verr *apperror.ValidationError
	if errors.As(err, &verr) && strings.TrimSpace(verr.Msg) != "" {
		return verr.Msg
	}
	return i18n.T(ctx, fallbackKey)
}

// rejectedFields devolve os campos apontados pelo backend (422 com "errors"), se houver.
func rejectedFields(err error) []string {
	var verr *apperror.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func invalidHint(ctx context.Context, fields []string) string {
	return i18n.T(ctx, i18n.MsgInvalidFields, strings.Join(fields, ", "))
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func formatInt(n int) string { return strconv.Itoa(n) }
