package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperror "stockui/internal/errors"
)

func TestMapToHTTPStatus(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		category string
	}{
		{"validation", apperror.NewValidationError("nome obrigatório"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", apperror.NewNotFoundError("produto 9"), http.StatusNotFound, "NOT_FOUND"},
		{"insufficient", apperror.NewInsufficientStockError(""), http.StatusBadRequest, "INSUFFICIENT_STOCK"},
		{"conflict", apperror.NewConflictError("em andamento"), http.StatusConflict, "CONFLICT"},
		{"network", apperror.NewNetworkError("sem resposta", stderrors.New("dial tcp")), http.StatusBadGateway, "NETWORK_ERROR"},
		{"internal", apperror.NewInternalError("500 do backend", nil), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"wrapped conflict", fmt.Errorf("submissão: %w", apperror.NewConflictError("em andamento")), http.StatusConflict, "CONFLICT"},
		{"wrapped not found", fmt.Errorf("a: %w", fmt.Errorf("b: %w", apperror.NewNotFoundError("produto 9"))), http.StatusNotFound, "NOT_FOUND"},
		{"untyped", stderrors.New("boom"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, category, message := apperror.MapToHTTPStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.category, category)
			assert.NotEmpty(t, message)
		})
	}
}

func TestNetworkError_UnwrapKeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("listando produtos: %w", apperror.NewNetworkError("GET /products", cause))

	var netErr *apperror.NetworkError
	assert.True(t, stderrors.As(err, &netErr))
	assert.ErrorIs(t, err, cause)
}

func TestInsufficientStockError_Message(t *testing.T) {
	assert.Equal(t, "Estoque insuficiente", apperror.NewInsufficientStockError("").Error())
	assert.Contains(t, apperror.NewInsufficientStockError("Stock insuficiente").Error(), "Stock insuficiente")
}
