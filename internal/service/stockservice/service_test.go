package stockservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"stockui/internal/catalog"
	"stockui/internal/domain"
	apperror "stockui/internal/errors"
	"stockui/internal/pkg/i18n"
	"stockui/internal/pkg/logger"
	"stockui/internal/service/stockservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

func (m *MockProductRepository) RecordMovement(ctx context.Context, movement domain.InventoryMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func str(s string) *string { return &s }

func newService() (*stockservice.Service, *MockProductRepository) {
	mockRepo := new(MockProductRepository)
	return stockservice.NewService(mockRepo, logger.NewLogger("debug")), mockRepo
}

func TestMountMovement_Success(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()
	products := []domain.Product{{ID: "1", Name: "Teclado", Stock: 3}}
	mockRepo.On("ListProducts", ctx).Return(products, nil)

	form := svc.MountMovement(ctx)

	assert.Equal(t, products, form.Products)
	assert.Equal(t, "entrada", form.Fields.Type)
	assert.Equal(t, "1", form.Fields.Quantity)
	assert.Equal(t, domain.FormIdle, form.Status)
}

func TestMountMovement_Fail_ShowsLoadBanner(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()
	mockRepo.On("ListProducts", ctx).Return(nil, apperror.NewNetworkError("GET /products", assert.AnError))

	form := svc.MountMovement(ctx)

	assert.Empty(t, form.Products)
	assert.Equal(t, "No se pudieron cargar los productos. Por favor, intenta de nuevo más tarde.", form.Error)
}

func TestSubmit_Fail_InsufficientStockKeepsDisplayedStock(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()

	form := stockservice.NewMovementForm()
	form.Products = []domain.Product{{ID: "1", Name: "Teclado", Stock: 3}}
	require.NoError(t, svc.SetFields(ctx, &form, stockservice.MovementPatch{
		ProductID: str("1"), Type: str("salida"), Quantity: str("5"),
	}))

	mockRepo.On("RecordMovement", ctx, domain.InventoryMovement{
		ProductID: "1", Type: domain.MovementDecrease, Quantity: 5,
	}).Return(apperror.NewInsufficientStockError(""))

	require.NoError(t, svc.Submit(ctx, &form))

	assert.Equal(t, domain.FormFailed, form.Status)
	assert.Equal(t, "Error: Stock insuficiente para realizar esta operación", form.Error)
	view := stockservice.View(form)
	require.NotNil(t, view.Selected)
	assert.Equal(t, 3, view.Selected.Stock)
	assert.Equal(t, catalog.Critical, view.Selected.Tier)
	mockRepo.AssertNotCalled(t, "ListProducts", mock.Anything)
}

func TestSubmit_Fail_InsufficientStockUsesBackendMessage(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()

	form := stockservice.NewMovementForm()
	form.Fields = stockservice.MovementFields{ProductID: "1", Type: "salida", Quantity: "5"}
	mockRepo.On("RecordMovement", ctx, mock.AnythingOfType("domain.InventoryMovement")).
		Return(apperror.NewInsufficientStockError("Stock disponible: 3"))

	require.NoError(t, svc.Submit(ctx, &form))
	assert.Equal(t, "Stock disponible: 3", form.Error)
}

func TestSubmit_Fail_GenericMessage(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()

	form := stockservice.NewMovementForm()
	form.Fields = stockservice.MovementFields{ProductID: "1", Type: "entrada", Quantity: "2"}
	mockRepo.On("RecordMovement", ctx, mock.AnythingOfType("domain.InventoryMovement")).
		Return(apperror.NewNetworkError("POST /inventory_movement", assert.AnError))

	require.NoError(t, svc.Submit(ctx, &form))

	assert.Equal(t, domain.FormFailed, form.Status)
	assert.Equal(t, "Ocurrió un error al registrar el movimiento. Por favor, inténtalo de nuevo.", form.Error)
	assert.Equal(t, "2", form.Fields.Quantity, "valores digitados permanecem")
}

func TestSubmit_Success_RefreshesFromBackend(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()

	form := stockservice.NewMovementForm()
	form.Products = []domain.Product{{ID: "1", Name: "Teclado", Stock: 3}}
	form.Validated = true
	form.Fields = stockservice.MovementFields{ProductID: "1", Type: "entrada", Quantity: "2"}

	mockRepo.On("RecordMovement", ctx, domain.InventoryMovement{
		ProductID: "1", Type: domain.MovementIncrease, Quantity: 2,
	}).Return(nil)
	mockRepo.On("ListProducts", ctx).Return([]domain.Product{{ID: "1", Name: "Teclado", Stock: 5}}, nil)

	require.NoError(t, svc.Submit(ctx, &form))

	assert.Equal(t, domain.FormSuccess, form.Status)
	assert.Contains(t, form.Success, "entrada")
	assert.Contains(t, form.Success, "2")
	assert.Equal(t, "1", form.Fields.Quantity)
	assert.False(t, form.Validated)
	assert.Equal(t, 5, stockservice.View(form).Selected.Stock)
	mockRepo.AssertExpectations(t)
}

func TestSubmit_Success_RefreshFailureKeepsStaleList(t *testing.T) {
	svc, mockRepo := newService()
	ctx := i18n.WithLocale(context.Background(), language.English)

	form := stockservice.NewMovementForm()
	form.Products = []domain.Product{{ID: "1", Name: "Teclado", Stock: 3}}
	form.Fields = stockservice.MovementFields{ProductID: "1", Type: "salida", Quantity: "1"}

	mockRepo.On("RecordMovement", ctx, mock.AnythingOfType("domain.InventoryMovement")).Return(nil)
	mockRepo.On("ListProducts", ctx).Return(nil, apperror.NewInternalError("listar produtos: status 500", nil))

	require.NoError(t, svc.Submit(ctx, &form))

	assert.Equal(t, domain.FormSuccess, form.Status)
	assert.Equal(t, "Successfully recorded a stock decrease of 1 units", form.Success)
	assert.Equal(t, 3, form.Products[0].Stock)
}

func TestSubmit_Fail_ValidationBlocks(t *testing.T) {
	svc, mockRepo := newService()

	form := stockservice.NewMovementForm()
	form.Fields.Quantity = "0"

	require.NoError(t, svc.Submit(context.Background(), &form))

	assert.True(t, form.Validated)
	assert.Equal(t, []string{"product_id", "quantity"}, form.InvalidFields)
	assert.Equal(t, "Selecciona un producto", form.Hint)
	assert.Equal(t, domain.FormIdle, form.Status)
	mockRepo.AssertNotCalled(t, "RecordMovement", mock.Anything, mock.Anything)
}

func TestSubmit_Fail_InvalidQuantityHint(t *testing.T) {
	svc, mockRepo := newService()
	ctx := i18n.WithLocale(context.Background(), language.English)

	form := stockservice.NewMovementForm()
	form.Fields = stockservice.MovementFields{ProductID: "1", Type: "entrada", Quantity: "-2"}

	require.NoError(t, svc.Submit(ctx, &form))

	assert.Equal(t, []string{"quantity"}, form.InvalidFields)
	assert.Equal(t, "Check the fields: quantity", form.Hint)
	mockRepo.AssertNotCalled(t, "RecordMovement", mock.Anything, mock.Anything)
}

// Uma submissão cuja resposta nunca chegou deixa o formulário em Submitting;
// nova submissão é recusada e o repositório não é chamado.
func TestSubmit_Fail_PendingSubmissionRejectsNewOne(t *testing.T) {
	svc, mockRepo := newService()

	form := stockservice.NewMovementForm()
	form.Fields = stockservice.MovementFields{ProductID: "1", Type: "entrada", Quantity: "2"}
	form.Status = domain.FormSubmitting

	err := svc.Submit(context.Background(), &form)

	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.FormSubmitting, form.Status)
	mockRepo.AssertNotCalled(t, "RecordMovement", mock.Anything, mock.Anything)
}

func TestSetFields_SearchOnlyKeepsBanner(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	form := stockservice.NewMovementForm()
	form.Products = []domain.Product{{ID: "1", Name: "Teclado"}, {ID: "2", Name: "Mouse"}}
	form.Succeed("ok")

	require.NoError(t, svc.SetFields(ctx, &form, stockservice.MovementPatch{Search: str("MOU")}))

	assert.Equal(t, domain.FormSuccess, form.Status)
	view := stockservice.View(form)
	require.Len(t, view.Options, 1)
	assert.Equal(t, domain.ProductID("2"), view.Options[0].ID)

	require.NoError(t, svc.SetFields(ctx, &form, stockservice.MovementPatch{Quantity: str("3")}))
	assert.Equal(t, domain.FormIdle, form.Status)
	assert.Empty(t, form.Success)
}

func TestView_SelectedMissingReportsZero(t *testing.T) {
	form := stockservice.NewMovementForm()
	assert.Nil(t, stockservice.View(form).Selected)

	form.Fields.ProductID = "99"
	view := stockservice.View(form)
	require.NotNil(t, view.Selected)
	assert.Equal(t, 0, view.Selected.Stock)
	assert.Equal(t, "danger", view.Selected.Badge)
}
