package catalogservice

import (
	"context"
	"errors"

	"stockui/internal/catalog"
	"stockui/internal/domain"
	apperror "stockui/internal/errors"
	"stockui/internal/pkg/i18n"
	"stockui/internal/pkg/logger"
)

// ProductRepository define o contrato que a listagem espera da API de inventário.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	DeleteProduct(ctx context.Context, id domain.ProductID) error
}

// ListState é o que a sessão guarda da tela de listagem: filtros digitados e a remoção
// aguardando confirmação. Os produtos não são guardados; cada leitura busca de novo.
type ListState struct {
	Filters       domain.RawFilters `json:"filters"`
	PendingDelete domain.ProductID  `json:"pending_delete,omitempty"`
}

// PendingDelete é a confirmação exibida antes de remover um produto.
type PendingDelete struct {
	ID     domain.ProductID `json:"id"`
	Name   string           `json:"name,omitempty"`
	Prompt string           `json:"prompt"`
}

// ListView é a listagem pronta para exibição.
type ListView struct {
	Filters       domain.RawFilters       `json:"filters"`
	Products      []catalog.ListedProduct `json:"products"`
	Total         int                     `json:"total"`
	PendingDelete *PendingDelete          `json:"pending_delete"`
}

// Service monta a listagem e conduz a remoção em dois passos.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Catálogo.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Load busca os produtos e aplica os filtros. Falha na busca resulta em lista vazia
// (apenas registrada no log, sem banner).
func (s *Service) Load(ctx context.Context, state ListState) ListView {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.logger.Error("Falha ao buscar produtos para a listagem.", err)
		products = nil
	}

	visible := catalog.Apply(products, catalog.ParseCriteria(state.Filters))
	view := ListView{
		Filters:  state.Filters,
		Products: catalog.Rows(visible),
		Total:    len(visible),
	}

	if state.PendingDelete != "" {
		pending := &PendingDelete{ID: state.PendingDelete, Prompt: i18n.T(ctx, i18n.MsgDeleteConfirm)}
		for _, p := range products {
			if p.ID == state.PendingDelete {
				pending.Name = p.Name
				break
			}
		}
		view.PendingDelete = pending
	}
	return view
}

// SetFilters substitui o texto dos filtros.
func (s *Service) SetFilters(state *ListState, raw domain.RawFilters) {
	state.Filters = raw
}

// ResetFilters limpa todos os filtros.
func (s *Service) ResetFilters(state *ListState) {
	state.Filters = domain.RawFilters{}
}

// RequestDelete marca o produto para remoção; nada é enviado até a confirmação.
func (s *Service) RequestDelete(state *ListState, id domain.ProductID) error {
	if id == "" {
		return apperror.NewValidationError("id do produto é obrigatório")
	}
	state.PendingDelete = id
	return nil
}

// CancelDelete descarta a remoção pendente.
func (s *Service) CancelDelete(state *ListState) {
	state.PendingDelete = ""
}

// ConfirmDelete remove o produto pendente. Produto já inexistente (404) conta como removido.
// Outras falhas são registradas no log e a pendência é descartada; quem chama recarrega a lista.
func (s *Service) ConfirmDelete(ctx context.Context, state *ListState) error {
	id := state.PendingDelete
	if id == "" {
		return apperror.NewConflictError("nenhuma remoção aguardando confirmação")
	}
	state.PendingDelete = ""

	err := s.repo.DeleteProduct(ctx, id)
	if err == nil {
		return nil
	}

	var notFound *apperror.NotFoundError
	if errors.As(err, &notFound) {
		s.logger.Warn("Produto já havia sido removido.", map[string]interface{}{"product_id": id.String()})
		return nil
	}

	s.logger.Error("Falha ao remover produto.", err)
	return nil
}
