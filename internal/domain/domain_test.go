package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockui/internal/domain"
	apperror "stockui/internal/errors"
)

func TestProductID_AcceptsNumberAndString(t *testing.T) {
	var products []domain.Product
	body := `[{"id": 7, "name": "Teclado", "price": 19.9, "stock": 3},
	          {"id": "a1b2", "name": "Mouse", "price": 5, "stock": 12}]`

	require.NoError(t, json.Unmarshal([]byte(body), &products))
	assert.Equal(t, domain.ProductID("7"), products[0].ID)
	assert.Equal(t, domain.ProductID("a1b2"), products[1].ID)
}

func TestProduct_PriceAndStockAsText(t *testing.T) {
	var products []domain.Product
	body := `[{"id": 7, "name": "Teclado", "description": null, "price": "19.90", "stock": "42"},
	          {"id": 8, "name": "Mouse", "price": 5.5, "stock": 3},
	          {"id": 9, "name": "Cabo", "price": null, "stock": ""}]`

	require.NoError(t, json.Unmarshal([]byte(body), &products))
	assert.Equal(t, domain.Product{ID: "7", Name: "Teclado", Price: 19.9, Stock: 42}, products[0])
	assert.Equal(t, domain.Product{ID: "8", Name: "Mouse", Price: 5.5, Stock: 3}, products[1])
	assert.Equal(t, domain.Product{ID: "9", Name: "Cabo"}, products[2])
}

func TestProduct_Fail_InvalidNumbers(t *testing.T) {
	var p domain.Product
	assert.Error(t, json.Unmarshal([]byte(`{"id":1,"price":"barato","stock":1}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"id":1,"price":1,"stock":"2.5"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"id":1,"price":"NaN","stock":1}`), &p))
}

func TestProductUpdate_HasNoStockKey(t *testing.T) {
	payload, err := json.Marshal(domain.ProductUpdate{Name: "Teclado", Description: "ABNT2", Price: 10})
	require.NoError(t, err)

	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &keys))
	assert.NotContains(t, keys, "stock")
	assert.Len(t, keys, 3)
}

func TestParseMovementType(t *testing.T) {
	mt, err := domain.ParseMovementType(" Entrada ")
	assert.NoError(t, err)
	assert.Equal(t, domain.MovementIncrease, mt)

	mt, err = domain.ParseMovementType("salida")
	assert.NoError(t, err)
	assert.Equal(t, domain.MovementDecrease, mt)

	_, err = domain.ParseMovementType("ajuste")
	assert.Error(t, err)
}

func TestInventoryMovement_Validate(t *testing.T) {
	assert.NoError(t, domain.InventoryMovement{ProductID: "1", Type: domain.MovementIncrease, Quantity: 1}.Validate())
	assert.Error(t, domain.InventoryMovement{Type: domain.MovementIncrease, Quantity: 1}.Validate())
	assert.Error(t, domain.InventoryMovement{ProductID: "1", Type: domain.MovementDecrease, Quantity: 0}.Validate())
	assert.Error(t, domain.InventoryMovement{ProductID: "1", Type: "ajuste", Quantity: 2}.Validate())
}

func TestFormState_Transitions(t *testing.T) {
	s := domain.NewFormState()
	assert.Equal(t, domain.FormIdle, s.Status)

	require.NoError(t, s.Begin())
	assert.Equal(t, domain.FormSubmitting, s.Status)

	// Enquanto Submitting, nem edição nem nova submissão são aceitas.
	err := s.Begin()
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.ErrorAs(t, s.Touch(), &conflict)

	s.Fail("falhou")
	assert.Equal(t, domain.FormFailed, s.Status)
	assert.Equal(t, "falhou", s.Error)

	require.NoError(t, s.Dismiss())
	assert.Equal(t, domain.FormIdle, s.Status)
	assert.Empty(t, s.Error)

	require.NoError(t, s.Begin())
	s.Succeed("ok")
	assert.Equal(t, domain.FormSuccess, s.Status)
	assert.Equal(t, "ok", s.Success)

	require.NoError(t, s.Touch())
	assert.Equal(t, domain.FormIdle, s.Status)
	assert.Empty(t, s.Success)
}

func TestFormState_Block(t *testing.T) {
	s := domain.NewFormState()
	s.Block([]string{"name"}, "Revisa los campos: name")

	assert.Equal(t, domain.FormIdle, s.Status)
	assert.True(t, s.Validated)
	assert.Equal(t, []string{"name"}, s.InvalidFields)
	assert.Equal(t, "Revisa los campos: name", s.Hint)

	// Editar limpa o aviso, mas o formulário continua validado.
	require.NoError(t, s.Touch())
	assert.Empty(t, s.Hint)
	assert.True(t, s.Validated)
}
