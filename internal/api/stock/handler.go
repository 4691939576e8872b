package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"stockui/internal/domain"
	apperror "stockui/internal/errors"
	"stockui/internal/pkg/logger"
	"stockui/internal/pkg/middleware"
	"stockui/internal/service/stockservice"
)

// movementState é o nome do formulário de movimentação dentro da sessão.
const movementState = "form:movement"

// MovementService define o contrato que o Handler espera da camada de Serviço.
type MovementService interface {
	MountMovement(ctx context.Context) stockservice.MovementForm
	SetFields(ctx context.Context, form *stockservice.MovementForm, patch stockservice.MovementPatch) error
	Submit(ctx context.Context, form *stockservice.MovementForm) error
}

// SessionStore é onde o estado do formulário fica entre requisições.
type SessionStore interface {
	Load(ctx context.Context, sid, name string, dst interface{}) (bool, error)
	Save(ctx context.Context, sid, name string, v interface{}) error
	Lock(ctx context.Context, sid, name string) (func(), error)
	Locked(ctx context.Context, sid, name string) (bool, error)
}

// Handler agrupa os métodos de Handler da movimentação de inventário.
type Handler struct {
	Service  MovementService
	Sessions SessionStore
	Logger   logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service, as Sessões e o Logger.
func NewHandler(svc MovementService, sessions SessionStore, log logger.Logger) *Handler {
	return &Handler{
		Service:  svc,
		Sessions: sessions,
		Logger:   log,
	}
}

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

// load lê o formulário salvo; sem estado (ou com refresh), monta um novo buscando os produtos.
// Quem chama precisa estar com a trava da tela.
func (h *Handler) load(ctx context.Context, sid string, refresh bool) (stockservice.MovementForm, error) {
	var form stockservice.MovementForm
	found, err := h.Sessions.Load(ctx, sid, movementState, &form)
	if err != nil {
		return form, err
	}
	if found && !refresh {
		return form, nil
	}

	form = h.Service.MountMovement(ctx)
	if err := h.Sessions.Save(ctx, sid, movementState, form); err != nil {
		return form, err
	}
	return form, nil
}

// GetMovementFormHandler lida com a requisição GET /v1/forms/movement.
// @Summary Monta ou lê o formulário de movimentação
// @Description Devolve o formulário, as opções do seletor filtradas pela busca e o estoque do produto selecionado.
// @Tags movements
// @Produce json
// @Param refresh query bool false "Recarrega os produtos da API"
// @Success 200 {object} stockservice.MovementView
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /forms/movement [get]
func (h *Handler) GetMovementFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	locked, err := h.Sessions.Locked(ctx, sid, movementState)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	form := stockservice.NewMovementForm()
	found, err := h.Sessions.Load(ctx, sid, movementState, &form)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	// Durante a submissão não remontamos: o estado salvo é o que será atualizado ao fim.
	refresh := r.URL.Query().Get("refresh") == "true"
	if (!found || refresh) && !locked {
		mounted, err := h.mount(ctx, sid, refresh)
		switch {
		case err == nil:
			form = mounted
		case isConflict(err):
			locked = true
		default:
			h.handleServiceResponse(w, r, nil, err, http.StatusOK)
			return
		}
	}
	if locked {
		form.Status = domain.FormSubmitting
	}
	h.handleServiceResponse(w, r, stockservice.View(form), nil, http.StatusOK)
}

// mount monta o formulário sob a trava da tela.
func (h *Handler) mount(ctx context.Context, sid string, refresh bool) (stockservice.MovementForm, error) {
	release, err := h.Sessions.Lock(ctx, sid, movementState)
	if err != nil {
		return stockservice.MovementForm{}, err
	}
	defer release()
	return h.load(ctx, sid, refresh)
}

func isConflict(err error) bool {
	var conflict *apperror.ConflictError
	return errors.As(err, &conflict)
}

// PatchMovementFormHandler lida com a requisição PATCH /v1/forms/movement.
// @Summary Edita campos do formulário de movimentação
// @Tags movements
// @Accept json
// @Produce json
// @Param fields body stockservice.MovementPatch true "Campos alterados (product_id, type, quantity, search)"
// @Success 200 {object} stockservice.MovementView
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Submissão em andamento"
// @Router /forms/movement [patch]
func (h *Handler) PatchMovementFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var patch stockservice.MovementPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	// A trava cobre leitura, edição e gravação: uma submissão não começa no meio.
	release, err := h.Sessions.Lock(ctx, sid, movementState)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	defer release()

	form, err := h.load(ctx, sid, false)
	if err == nil {
		err = h.Service.SetFields(ctx, &form, patch)
	}
	if err == nil {
		err = h.Sessions.Save(ctx, sid, movementState, form)
	}
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, stockservice.View(form), nil, http.StatusOK)
}

// SubmitMovementFormHandler lida com a requisição POST /v1/forms/movement/submit.
// O desfecho (campos inválidos, estoque insuficiente, erro ou sucesso) vem no corpo com status 200.
// @Summary Registra a movimentação
// @Tags movements
// @Produce json
// @Success 200 {object} stockservice.MovementView
// @Failure 409 {object} domain.ErrorResponse "Submissão em andamento"
// @Router /forms/movement/submit [post]
func (h *Handler) SubmitMovementFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	// 1. Trava: uma submissão por vez
	release, err := h.Sessions.Lock(ctx, sid, movementState)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	defer release()

	// 2. Estado atual
	form, err := h.load(ctx, sid, false)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	// 3. Submissão (bloqueante, limitada pelo timeout da API)
	if err := h.Service.Submit(ctx, &form); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	// 4. Persistir o desfecho antes de liberar a trava
	if err := h.Sessions.Save(ctx, sid, movementState, form); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, stockservice.View(form), nil, http.StatusOK)
}

// DismissMovementFormHandler lida com a requisição POST /v1/forms/movement/dismiss.
func (h *Handler) DismissMovementFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	release, err := h.Sessions.Lock(ctx, sid, movementState)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	defer release()

	form, err := h.load(ctx, sid, false)
	if err == nil {
		err = form.Dismiss()
	}
	if err == nil {
		err = h.Sessions.Save(ctx, sid, movementState, form)
	}
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, stockservice.View(form), nil, http.StatusOK)
}
