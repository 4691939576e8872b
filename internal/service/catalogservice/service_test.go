package catalogservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockui/internal/catalog"
	"stockui/internal/domain"
	apperror "stockui/internal/errors"
	"stockui/internal/pkg/logger"
	"stockui/internal/service/catalogservice"
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

func (m *MockProductRepository) DeleteProduct(ctx context.Context, id domain.ProductID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func sample() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Teclado", Price: 50, Stock: 20},
		{ID: "2", Name: "Mouse", Price: 15, Stock: 7},
		{ID: "3", Name: "Monitor", Price: 800, Stock: 1},
	}
}

func newService() (*catalogservice.Service, *MockProductRepository) {
	mockRepo := new(MockProductRepository)
	return catalogservice.NewService(mockRepo, logger.NewLogger("debug")), mockRepo
}

func TestLoad_AppliesFiltersAndTiers(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()
	mockRepo.On("ListProducts", ctx).Return(sample(), nil)

	state := catalogservice.ListState{}
	svc.SetFilters(&state, domain.RawFilters{Name: "m", MaxPrice: "100"})

	view := svc.Load(ctx, state)

	require.Len(t, view.Products, 1)
	assert.Equal(t, 1, view.Total)
	assert.Equal(t, "Mouse", view.Products[0].Name)
	assert.Equal(t, catalog.Warning, view.Products[0].Tier)
	assert.Equal(t, "$15.00", view.Products[0].PriceLabel)
	assert.Nil(t, view.PendingDelete)
}

func TestLoad_Fail_DegradesToEmptyList(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()
	mockRepo.On("ListProducts", ctx).Return(nil, apperror.NewNetworkError("GET /products", assert.AnError))

	view := svc.Load(ctx, catalogservice.ListState{})

	assert.NotNil(t, view.Products)
	assert.Empty(t, view.Products)
	assert.Equal(t, 0, view.Total)
}

func TestResetFilters(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()
	mockRepo.On("ListProducts", ctx).Return(sample(), nil)

	state := catalogservice.ListState{Filters: domain.RawFilters{MinStock: "100"}}
	assert.Equal(t, 0, svc.Load(ctx, state).Total)

	svc.ResetFilters(&state)
	assert.Equal(t, 3, svc.Load(ctx, state).Total)
}

func TestDelete_RequestThenCancel(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()
	mockRepo.On("ListProducts", ctx).Return(sample(), nil)

	state := catalogservice.ListState{}
	require.NoError(t, svc.RequestDelete(&state, "2"))

	view := svc.Load(ctx, state)
	require.NotNil(t, view.PendingDelete)
	assert.Equal(t, "Mouse", view.PendingDelete.Name)
	assert.Equal(t, "¿Estás seguro de que deseas eliminar este producto?", view.PendingDelete.Prompt)

	svc.CancelDelete(&state)
	assert.Empty(t, state.PendingDelete)
	mockRepo.AssertNotCalled(t, "DeleteProduct", mock.Anything, mock.Anything)
}

func TestConfirmDelete_Success(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()
	mockRepo.On("DeleteProduct", ctx, domain.ProductID("2")).Return(nil)

	state := catalogservice.ListState{PendingDelete: "2"}
	require.NoError(t, svc.ConfirmDelete(ctx, &state))

	assert.Empty(t, state.PendingDelete)
	mockRepo.AssertExpectations(t)
}

func TestConfirmDelete_NotFoundIsNotFatal(t *testing.T) {
	svc, mockRepo := newService()
	ctx := context.Background()
	mockRepo.On("DeleteProduct", ctx, domain.ProductID("9")).Return(apperror.NewNotFoundError("remover produto 9"))

	state := catalogservice.ListState{PendingDelete: "9"}
	assert.NoError(t, svc.ConfirmDelete(ctx, &state))
	assert.Empty(t, state.PendingDelete)
}

func TestConfirmDelete_Fail_NothingPending(t *testing.T) {
	svc, mockRepo := newService()

	err := svc.ConfirmDelete(context.Background(), &catalogservice.ListState{})

	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
	mockRepo.AssertNotCalled(t, "DeleteProduct", mock.Anything, mock.Anything)
}

func TestRequestDelete_Fail_EmptyID(t *testing.T) {
	svc, _ := newService()
	state := catalogservice.ListState{}

	err := svc.RequestDelete(&state, "")

	var verr *apperror.ValidationError
	assert.ErrorAs(t, err, &verr)
}
