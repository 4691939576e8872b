package domain

import (
	apperror "stockui/internal/errors"
)

// FormStatus é o estado da máquina de submissão de um formulário.
type FormStatus string

const (
	FormIdle       FormStatus = "idle"
	FormSubmitting FormStatus = "submitting"
	FormSuccess    FormStatus = "success"
	FormFailed     FormStatus = "failed"
)

// FormState é a parte comum dos formulários de criação, edição e movimentação.
// Idle -> Submitting -> (Success | Failed); edições ou fechar o aviso voltam para Idle.
type FormState struct {
	Status        FormStatus `json:"status"`
	Error         string     `json:"error,omitempty"`
	Success       string     `json:"success,omitempty"`
	Validated     bool       `json:"validated"`
	InvalidFields []string   `json:"invalid_fields,omitempty"`
	Hint          string     `json:"hint,omitempty"` // aviso da validação local
}

// NewFormState retorna o estado inicial (Idle, sem avisos).
func NewFormState() FormState {
	return FormState{Status: FormIdle}
}

// Editable retorna ConflictError enquanto houver uma submissão em andamento.
func (s *FormState) Editable() error {
	if s.Status == FormSubmitting {
		return apperror.NewConflictError("já existe uma submissão em andamento para este formulário")
	}
	return nil
}

// Touch registra uma edição: volta para Idle e limpa os avisos.
func (s *FormState) Touch() error {
	if err := s.Editable(); err != nil {
		return err
	}
	s.Status = FormIdle
	s.Error = ""
	s.Success = ""
	s.Hint = ""
	return nil
}

// Dismiss fecha o aviso de erro/sucesso.
func (s *FormState) Dismiss() error {
	return s.Touch()
}

// Block marca a submissão como barrada pela validação local. Nenhuma chamada de rede acontece.
func (s *FormState) Block(fields []string, hint string) {
	s.Status = FormIdle
	s.Validated = true
	s.InvalidFields = fields
	s.Hint = hint
}

// Begin entra em Submitting. Falha se já houver submissão pendente.
func (s *FormState) Begin() error {
	if err := s.Editable(); err != nil {
		return err
	}
	s.Status = FormSubmitting
	s.Error = ""
	s.Success = ""
	s.Hint = ""
	s.InvalidFields = nil
	return nil
}

// Fail encerra a submissão com erro; os valores dos campos continuam intactos.
func (s *FormState) Fail(msg string) {
	s.Status = FormFailed
	s.Error = msg
	s.Success = ""
}

// Succeed encerra a submissão com sucesso.
func (s *FormState) Succeed(msg string) {
	s.Status = FormSuccess
	s.Success = msg
	s.Error = ""
}
