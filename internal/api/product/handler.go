package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stockui/internal/domain"
	apperror "stockui/internal/errors"
	"stockui/internal/pkg/logger"
	"stockui/internal/pkg/middleware"
	"stockui/internal/service/catalogservice"
	"stockui/internal/service/productservice"
)

// Nomes das telas dentro da sessão.
const (
	listingState = "listing"
	createState  = "form:create"
	editState    = "form:edit:%s"
)

// CatalogService define o contrato da listagem que o Handler espera.
type CatalogService interface {
	Load(ctx context.Context, state catalogservice.ListState) catalogservice.ListView
	SetFilters(state *catalogservice.ListState, raw domain.RawFilters)
	ResetFilters(state *catalogservice.ListState)
	RequestDelete(state *catalogservice.ListState, id domain.ProductID) error
	CancelDelete(state *catalogservice.ListState)
	ConfirmDelete(ctx context.Context, state *catalogservice.ListState) error
}

// FormService define o contrato dos formulários de criação e edição.
type FormService interface {
	SetCreateFields(ctx context.Context, form *productservice.CreateForm, patch productservice.CreatePatch) error
	SubmitCreate(ctx context.Context, form *productservice.CreateForm) error
	MountEdit(ctx context.Context, id domain.ProductID) productservice.EditForm
	SetEditFields(ctx context.Context, form *productservice.EditForm, patch productservice.EditPatch) error
	SubmitEdit(ctx context.Context, form *productservice.EditForm) error
}

// SessionStore é onde o estado das telas fica entre requisições.
type SessionStore interface {
	Load(ctx context.Context, sid, name string, dst interface{}) (bool, error)
	Save(ctx context.Context, sid, name string, v interface{}) error
	Delete(ctx context.Context, sid, name string) error
	Lock(ctx context.Context, sid, name string) (func(), error)
	Locked(ctx context.Context, sid, name string) (bool, error)
}

// Handler agrupa os Handlers da listagem e dos formulários de produto.
type Handler struct {
	Catalog  CatalogService
	Forms    FormService
	Sessions SessionStore
	Logger   logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando Services, Sessões e Logger.
func NewHandler(catalog CatalogService, forms FormService, sessions SessionStore, log logger.Logger) *Handler {
	return &Handler{
		Catalog:  catalog,
		Forms:    forms,
		Sessions: sessions,
		Logger:   log,
	}
}

// --- Funções Auxiliares ---

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		h.Logger.Debug("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

func sessionID(r *http.Request) (string, error) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		return "", apperror.NewInternalError("requisição sem sessão", nil)
	}
	return sid, nil
}

func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}

// --- Listagem ---

func (h *Handler) loadListing(r *http.Request) (string, catalogservice.ListState, error) {
	var state catalogservice.ListState
	sid, err := sessionID(r)
	if err != nil {
		return "", state, err
	}
	if _, err := h.Sessions.Load(r.Context(), sid, listingState, &state); err != nil {
		return "", state, err
	}
	return sid, state, nil
}

// respondListing grava o estado e devolve a listagem recém-buscada.
func (h *Handler) respondListing(w http.ResponseWriter, r *http.Request, sid string, state catalogservice.ListState) {
	if err := h.Sessions.Save(r.Context(), sid, listingState, state); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, h.Catalog.Load(r.Context(), state), nil, http.StatusOK)
}

// ListProductsHandler lida com a requisição GET /v1/products.
// @Summary Listagem de produtos
// @Description Busca os produtos na API de inventário e aplica os filtros da sessão. Falha na busca resulta em lista vazia.
// @Tags products
// @Produce json
// @Success 200 {object} catalogservice.ListView "Listagem filtrada com faixa de estoque"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	_, state, err := h.loadListing(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, h.Catalog.Load(r.Context(), state), nil, http.StatusOK)
}

// SetFiltersHandler lida com a requisição PUT /v1/products/filters.
// @Summary Define os filtros da listagem
// @Tags products
// @Accept json
// @Produce json
// @Param filters body domain.RawFilters true "Texto dos filtros (vazio = sem restrição)"
// @Success 200 {object} catalogservice.ListView
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Router /products/filters [put]
func (h *Handler) SetFiltersHandler(w http.ResponseWriter, r *http.Request) {
	sid, state, err := h.loadListing(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var raw domain.RawFilters
	if err := decode(r, &raw); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.Catalog.SetFilters(&state, raw)
	h.respondListing(w, r, sid, state)
}

// ResetFiltersHandler lida com a requisição DELETE /v1/products/filters.
// @Summary Limpa os filtros da listagem
// @Tags products
// @Produce json
// @Success 200 {object} catalogservice.ListView
// @Router /products/filters [delete]
func (h *Handler) ResetFiltersHandler(w http.ResponseWriter, r *http.Request) {
	sid, state, err := h.loadListing(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.Catalog.ResetFilters(&state)
	h.respondListing(w, r, sid, state)
}

// RequestDeleteHandler lida com a requisição POST /v1/products/{id}/delete.
// Nada é removido ainda: a listagem volta com a confirmação pendente.
// @Summary Pede confirmação para remover um produto
// @Tags products
// @Produce json
// @Param id path string true "ID do Produto"
// @Success 200 {object} catalogservice.ListView
// @Router /products/{id}/delete [post]
func (h *Handler) RequestDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sid, state, err := h.loadListing(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	if err := h.Catalog.RequestDelete(&state, domain.ProductID(chi.URLParam(r, "id"))); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.respondListing(w, r, sid, state)
}

// ConfirmDeleteHandler lida com a requisição POST /v1/products/delete/confirm.
// @Summary Confirma a remoção pendente
// @Description Remove o produto na API de inventário e devolve a listagem recarregada. Produto já inexistente conta como removido.
// @Tags products
// @Produce json
// @Success 200 {object} catalogservice.ListView
// @Failure 409 {object} domain.ErrorResponse "Nenhuma remoção pendente"
// @Router /products/delete/confirm [post]
func (h *Handler) ConfirmDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sid, state, err := h.loadListing(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	if err := h.Catalog.ConfirmDelete(r.Context(), &state); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.respondListing(w, r, sid, state)
}

// CancelDeleteHandler lida com a requisição POST /v1/products/delete/cancel.
// @Summary Cancela a remoção pendente
// @Tags products
// @Produce json
// @Success 200 {object} catalogservice.ListView
// @Router /products/delete/cancel [post]
func (h *Handler) CancelDeleteHandler(w http.ResponseWriter, r *http.Request) {
	sid, state, err := h.loadListing(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.Catalog.CancelDelete(&state)
	h.respondListing(w, r, sid, state)
}
