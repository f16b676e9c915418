package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListProducts(ctx context.Context, ownerID string) ([]Product, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) GetProduct(ctx context.Context, ownerID, id string) (*Product, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p Product) (*Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) AdjustVariantStock(ctx context.Context, adj StockAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// --- Tests ---

func TestNewService_DefaultThreshold(t *testing.T) {
	assert.Equal(t, DefaultLowStockThreshold, NewService(new(MockRepository), 0).Threshold())
	assert.Equal(t, 8, NewService(new(MockRepository), 8).Threshold())
}

func TestService_ListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies filter", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5)

		mug := Product{ID: "p-2", OwnerID: "owner-1", Name: "Mug", Category: "Kitchen"}
		repo.On("ListProducts", ctx, "owner-1").Return([]Product{sampleProduct(), mug}, nil)

		got, err := svc.ListProducts(ctx, Filter{OwnerID: "owner-1", Search: "mug"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "p-2", got[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5)
		repo.On("ListProducts", ctx, "owner-1").Return(nil, errors.New("db error"))

		_, err := svc.ListProducts(ctx, Filter{OwnerID: "owner-1"})
		assert.Error(t, err)
	})
}

func TestService_CreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejects zero variants before persistence", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5)

		p := sampleProduct()
		p.Variants = nil

		_, err := svc.CreateProduct(ctx, p)
		assert.ErrorIs(t, err, ErrNoVariants)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Derives status and restock date", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5).(*service)
		fixed := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }

		repo.On("Create", ctx, mock.MatchedBy(func(p Product) bool {
			return p.Status == StatusAvailable && p.LastRestocked != nil && p.LastRestocked.Equal(fixed)
		})).Return(&Product{ID: "p-new"}, nil)

		created, err := svc.CreateProduct(ctx, sampleProduct())
		require.NoError(t, err)
		assert.Equal(t, "p-new", created.ID)
		repo.AssertExpectations(t)
	})
}

func TestService_AdjustVariantStock(t *testing.T) {
	ctx := context.Background()

	t.Run("Decrement is applied relative to stored stock", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5)

		loaded := sampleProduct()
		reloaded := sampleProduct()
		reloaded.Variants[1].StockQuantity = 0
		repo.On("GetProduct", ctx, "owner-1", "p-1").Return(&loaded, nil).Once()
		repo.On("AdjustVariantStock", ctx, StockAdjustment{
			OwnerID:      "owner-1",
			ProductID:    "p-1",
			VariantIndex: 1,
			Delta:        -3,
		}).Return(nil)
		repo.On("GetProduct", ctx, "owner-1", "p-1").Return(&reloaded, nil).Once()

		updated, err := svc.AdjustVariantStock(ctx, "owner-1", "p-1", 1, -3)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Variants[1].StockQuantity)
		assert.Equal(t, 3, loaded.Variants[1].StockQuantity)
		repo.AssertExpectations(t)
	})

	t.Run("Rejects oversell with current stock", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5)
		p := sampleProduct()
		repo.On("GetProduct", ctx, "owner-1", "p-1").Return(&p, nil)

		_, err := svc.AdjustVariantStock(ctx, "owner-1", "p-1", 1, -5)

		var nse *NegativeStockError
		require.ErrorAs(t, err, &nse)
		assert.Equal(t, 3, nse.Current)
		assert.Equal(t, "p-1", nse.ProductID)
		repo.AssertNotCalled(t, "AdjustVariantStock", mock.Anything, mock.Anything)
	})

	t.Run("Concurrent decrement surfaces stored stock", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5)
		p := sampleProduct()
		repo.On("GetProduct", ctx, "owner-1", "p-1").Return(&p, nil).Once()
		repo.On("AdjustVariantStock", ctx, mock.Anything).Return(&NegativeStockError{
			ProductID: "p-1", VariantIndex: 1, Current: 1, Delta: -3,
		})

		_, err := svc.AdjustVariantStock(ctx, "owner-1", "p-1", 1, -3)

		var nse *NegativeStockError
		require.ErrorAs(t, err, &nse)
		assert.Equal(t, 1, nse.Current)
		assert.ErrorIs(t, err, ErrNegativeStock)
		repo.AssertNumberOfCalls(t, "GetProduct", 1)
	})

	t.Run("Restock stamps date", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5).(*service)
		fixed := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }

		p := sampleProduct()
		repo.On("GetProduct", ctx, "owner-1", "p-1").Return(&p, nil)
		repo.On("AdjustVariantStock", ctx, mock.MatchedBy(func(a StockAdjustment) bool {
			return a.Delta == 4 && a.RestockedAt != nil && a.RestockedAt.Equal(fixed)
		})).Return(nil)

		_, err := svc.AdjustVariantStock(ctx, "owner-1", "p-1", 0, 4)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Another owner's product", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5)
		repo.On("GetProduct", ctx, "owner-2", "p-1").Return(nil, ErrProductNotFound)

		_, err := svc.AdjustVariantStock(ctx, "owner-2", "p-1", 0, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
		repo.AssertNotCalled(t, "AdjustVariantStock", mock.Anything, mock.Anything)
	})

	t.Run("Bad variant index", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, 5)
		p := sampleProduct()
		repo.On("GetProduct", ctx, "owner-1", "p-1").Return(&p, nil)

		_, err := svc.AdjustVariantStock(ctx, "owner-1", "p-1", 9, 1)
		assert.ErrorIs(t, err, ErrVariantOutOfRange)
	})
}

func TestService_LowStockProducts(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, 5)

	low := Product{ID: "p-low", OwnerID: "owner-1", Variants: []Variant{{StockQuantity: 2}, {StockQuantity: 2}}}
	ok := Product{ID: "p-ok", OwnerID: "owner-1", Variants: []Variant{{StockQuantity: 5}}}
	empty := Product{ID: "p-empty", OwnerID: "owner-1"}
	repo.On("ListProducts", ctx, "owner-1").Return([]Product{low, ok, empty}, nil)

	got, err := svc.LowStockProducts(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p-low", got[0].ID)
	assert.Equal(t, "p-empty", got[1].ID)
}

func TestService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, 5)

	repo.On("Delete", ctx, "owner-1", "p-1").Return(nil)
	repo.On("Delete", ctx, "owner-1", "p-x").Return(ErrProductNotFound)

	assert.NoError(t, svc.DeleteProduct(ctx, "owner-1", "p-1"))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, "owner-1", "p-x"), ErrProductNotFound)
}
