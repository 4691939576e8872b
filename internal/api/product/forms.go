package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stockui/internal/domain"
	apperror "stockui/internal/errors"
	"stockui/internal/service/productservice"
)

// isConflict indica que a trava da tela pertence a outra operação.
func isConflict(err error) bool {
	var conflict *apperror.ConflictError
	return errors.As(err, &conflict)
}

// markSubmitting reflete na leitura uma submissão que ainda não terminou.
func (h *Handler) markSubmitting(ctx context.Context, sid, name string, st *domain.FormState) error {
	locked, err := h.Sessions.Locked(ctx, sid, name)
	if err != nil {
		return err
	}
	if locked {
		st.Status = domain.FormSubmitting
	}
	return nil
}

// --- Formulário de Criação ---

func (h *Handler) loadCreate(ctx context.Context, sid string) (productservice.CreateForm, error) {
	form := productservice.NewCreateForm()
	if _, err := h.Sessions.Load(ctx, sid, createState, &form); err != nil {
		return form, err
	}
	return form, nil
}

// GetCreateFormHandler lida com a requisição GET /v1/forms/create.
// @Summary Estado do formulário de criação
// @Tags forms
// @Produce json
// @Success 200 {object} productservice.CreateForm
// @Router /forms/create [get]
func (h *Handler) GetCreateFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	form, err := h.loadCreate(ctx, sid)
	if err == nil {
		err = h.markSubmitting(ctx, sid, createState, &form.FormState)
	}
	h.handleServiceResponse(w, r, form, err, http.StatusOK)
}

// PatchCreateFormHandler lida com a requisição PATCH /v1/forms/create.
// @Summary Edita campos do formulário de criação
// @Tags forms
// @Accept json
// @Produce json
// @Param fields body productservice.CreatePatch true "Campos alterados"
// @Success 200 {object} productservice.CreateForm
// @Failure 409 {object} domain.ErrorResponse "Submissão em andamento"
// @Router /forms/create [patch]
func (h *Handler) PatchCreateFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var patch productservice.CreatePatch
	if err := decode(r, &patch); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	// A trava cobre leitura, edição e gravação: uma submissão não começa no meio.
	release, err := h.Sessions.Lock(ctx, sid, createState)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	defer release()

	form, err := h.loadCreate(ctx, sid)
	if err == nil {
		err = h.Forms.SetCreateFields(ctx, &form, patch)
	}
	if err == nil {
		err = h.Sessions.Save(ctx, sid, createState, form)
	}
	h.handleServiceResponse(w, r, form, err, http.StatusOK)
}

// SubmitCreateFormHandler lida com a requisição POST /v1/forms/create/submit.
// O desfecho (campos inválidos, erro ou sucesso com redirect_to) vem no corpo com status 200.
// @Summary Envia o formulário de criação
// @Tags forms
// @Produce json
// @Success 200 {object} productservice.CreateForm
// @Failure 409 {object} domain.ErrorResponse "Submissão em andamento"
// @Router /forms/create/submit [post]
func (h *Handler) SubmitCreateFormHandler(w http.ResponseWriter, r *http.Request) {
	// A submissão segue mesmo se o navegador desconectar; o timeout do cliente HTTP a limita.
	ctx := context.WithoutCancel(r.Context())
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	release, err := h.Sessions.Lock(ctx, sid, createState)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	defer release()

	form, err := h.loadCreate(ctx, sid)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if err := h.Forms.SubmitCreate(ctx, &form); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	// Sucesso: o formulário recomeça na próxima visita.
	if form.Status == domain.FormSuccess {
		err = h.Sessions.Delete(ctx, sid, createState)
	} else {
		err = h.Sessions.Save(ctx, sid, createState, form)
	}
	h.handleServiceResponse(w, r, form, err, http.StatusOK)
}

// DismissCreateFormHandler lida com a requisição POST /v1/forms/create/dismiss.
func (h *Handler) DismissCreateFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	release, err := h.Sessions.Lock(ctx, sid, createState)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	defer release()

	form, err := h.loadCreate(ctx, sid)
	if err == nil {
		err = form.Dismiss()
	}
	if err == nil {
		err = h.Sessions.Save(ctx, sid, createState, form)
	}
	h.handleServiceResponse(w, r, form, err, http.StatusOK)
}

// --- Formulário de Edição ---

func editStateName(id domain.ProductID) string {
	return fmt.Sprintf(editState, id)
}

// GetEditFormHandler lida com a requisição GET /v1/forms/edit/{id}.
// Sem estado salvo (ou com ?refresh=true) o produto é buscado na API e o formulário é montado.
// @Summary Monta ou lê o formulário de edição
// @Tags forms
// @Produce json
// @Param id path string true "ID do Produto"
// @Param refresh query bool false "Recarrega o produto da API"
// @Success 200 {object} productservice.EditForm
// @Router /forms/edit/{id} [get]
func (h *Handler) GetEditFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	id := domain.ProductID(chi.URLParam(r, "id"))
	name := editStateName(id)

	var form productservice.EditForm
	found, err := h.Sessions.Load(ctx, sid, name, &form)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	locked, err := h.Sessions.Locked(ctx, sid, name)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	// Durante uma submissão não remontamos: o estado salvo é o que será atualizado ao fim.
	remount := !found || !form.Loaded || r.URL.Query().Get("refresh") == "true"
	if remount && !locked {
		mounted, err := h.remountEdit(ctx, sid, id)
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
		form.ProductID = id
		form.Status = domain.FormSubmitting
	}
	h.handleServiceResponse(w, r, form, nil, http.StatusOK)
}

// remountEdit busca o produto e grava o formulário novo sob a trava da tela.
func (h *Handler) remountEdit(ctx context.Context, sid string, id domain.ProductID) (productservice.EditForm, error) {
	name := editStateName(id)
	release, err := h.Sessions.Lock(ctx, sid, name)
	if err != nil {
		return productservice.EditForm{}, err
	}
	defer release()

	form := h.Forms.MountEdit(ctx, id)
	if err := h.Sessions.Save(ctx, sid, name, form); err != nil {
		return form, err
	}
	return form, nil
}

// loadEdit lê o formulário de edição salvo; sem estado, o produto precisa ser montado antes.
func (h *Handler) loadEdit(ctx context.Context, sid string, id domain.ProductID) (productservice.EditForm, error) {
	var form productservice.EditForm
	found, err := h.Sessions.Load(ctx, sid, editStateName(id), &form)
	if err != nil {
		return form, err
	}
	if !found {
		return form, apperror.NewNotFoundError(fmt.Sprintf("formulário de edição do produto %s não foi montado", id))
	}
	return form, nil
}

// PatchEditFormHandler lida com a requisição PATCH /v1/forms/edit/{id}.
// @Summary Edita campos do formulário de edição (estoque é somente leitura)
// @Tags forms
// @Accept json
// @Produce json
// @Param id path string true "ID do Produto"
// @Param fields body productservice.EditPatch true "Campos alterados"
// @Success 200 {object} productservice.EditForm
// @Failure 404 {object} domain.ErrorResponse "Formulário não montado"
// @Failure 409 {object} domain.ErrorResponse "Submissão em andamento"
// @Router /forms/edit/{id} [patch]
func (h *Handler) PatchEditFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	id := domain.ProductID(chi.URLParam(r, "id"))

	var patch productservice.EditPatch
	if err := decode(r, &patch); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	release, err := h.Sessions.Lock(ctx, sid, editStateName(id))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	defer release()

	form, err := h.loadEdit(ctx, sid, id)
	if err == nil {
		err = h.Forms.SetEditFields(ctx, &form, patch)
	}
	if err == nil {
		err = h.Sessions.Save(ctx, sid, editStateName(id), form)
	}
	h.handleServiceResponse(w, r, form, err, http.StatusOK)
}

// SubmitEditFormHandler lida com a requisição POST /v1/forms/edit/{id}/submit.
// @Summary Envia o formulário de edição
// @Tags forms
// @Produce json
// @Param id path string true "ID do Produto"
// @Success 200 {object} productservice.EditForm
// @Failure 404 {object} domain.ErrorResponse "Formulário não montado"
// @Failure 409 {object} domain.ErrorResponse "Submissão em andamento"
// @Router /forms/edit/{id}/submit [post]
func (h *Handler) SubmitEditFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	id := domain.ProductID(chi.URLParam(r, "id"))
	name := editStateName(id)

	release, err := h.Sessions.Lock(ctx, sid, name)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	defer release()

	form, err := h.loadEdit(ctx, sid, id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	if err := h.Forms.SubmitEdit(ctx, &form); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	if form.Status == domain.FormSuccess {
		err = h.Sessions.Delete(ctx, sid, name)
	} else {
		err = h.Sessions.Save(ctx, sid, name, form)
	}
	h.handleServiceResponse(w, r, form, err, http.StatusOK)
}

// DismissEditFormHandler lida com a requisição POST /v1/forms/edit/{id}/dismiss.
func (h *Handler) DismissEditFormHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid, err := sessionID(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	id := domain.ProductID(chi.URLParam(r, "id"))
	release, err := h.Sessions.Lock(ctx, sid, editStateName(id))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	defer release()

	form, err := h.loadEdit(ctx, sid, id)
	if err == nil {
		err = form.Dismiss()
	}
	if err == nil {
		err = h.Sessions.Save(ctx, sid, editStateName(id), form)
	}
	h.handleServiceResponse(w, r, form, err, http.StatusOK)
}
