package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
)

// --- Mock Repositories ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartLine), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	args := m.Called(ctx, sessionID, lines)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestProducer() *event.Producer {
	logger := newTestLogger()
	// Create a Kafka producer that will fail silently in tests (no real broker).
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func newTestCartService(carts *mockCartRepository, products *mockProductRepository) *CartService {
	return NewCartService(carts, products, newTestProducer(), newTestLogger())
}

func activeProduct() *domain.Product {
	return &domain.Product{
		ID:          1,
		Name:        "Canvas Jacket",
		Slug:        "canvas-jacket",
		BasePrice:   "$89.99",
		PriceBySize: map[string]string{"XL": "$94.99"},
		Sizes:       []string{"M", "L", "XL"},
		Colors:      []string{"olive", "black"},
		Images:      []string{"https://img.example.com/jacket.jpg"},
		IsActive:    true,
	}
}

func existingLines() []domain.CartLine {
	return []domain.CartLine{
		{
			ProductID:      1,
			Name:           "Canvas Jacket",
			UnitPriceCents: 7999, // frozen at an older shelf price
			Quantity:       2,
			ImageURL:       "https://img.example.com/jacket-old.jpg",
			Size:           "M",
			Color:          "olive",
		},
	}
}

// --- GetCart ---

func TestCartService_GetCart_EmptyWhenMissing(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	carts.On("Get", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))

	cart, err := svc.GetCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", cart.SessionID)
	assert.Empty(t, cart.Lines)
}

func TestCartService_GetCart_EmptyWhenSnapshotUnreadable(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	carts.On("Get", mock.Anything, "sess-1").Return(nil, errors.New("redis: connection refused"))

	cart, err := svc.GetCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartService_GetCart_ReturnsStoredLines(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	carts.On("Get", mock.Anything, "sess-1").Return(existingLines(), nil)

	cart, err := svc.GetCart(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(7999), cart.Lines[0].UnitPriceCents)
}

func TestCartService_GetCart_RequiresSessionID(t *testing.T) {
	svc := newTestCartService(new(mockCartRepository), new(mockProductRepository))

	_, err := svc.GetCart(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- AddItem ---

func TestCartService_AddItem_NewLineStartsAtQuantityOne(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	products.On("GetByID", mock.Anything, int64(1)).Return(activeProduct(), nil)
	carts.On("Get", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))
	carts.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	// The requested quantity is 5, but a brand-new line always enters at 1.
	cart, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{
		ProductID: 1,
		Size:      "M",
		Color:     "olive",
		Quantity:  5,
	})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assert.Equal(t, "Canvas Jacket", cart.Lines[0].Name)
	assert.Equal(t, int64(8999), cart.Lines[0].UnitPriceCents)
	assert.Equal(t, "https://img.example.com/jacket.jpg", cart.Lines[0].ImageURL)
	carts.AssertCalled(t, "Save", mock.Anything, "sess-1", mock.Anything)
}

func TestCartService_AddItem_SizeOverridePrice(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	products.On("GetByID", mock.Anything, int64(1)).Return(activeProduct(), nil)
	carts.On("Get", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))
	carts.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	cart, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{
		ProductID: 1,
		Size:      "XL",
		Color:     "black",
		Quantity:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9499), cart.Lines[0].UnitPriceCents)
}

func TestCartService_AddItem_MergeAccumulatesQuantityAndKeepsFrozenFields(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	// Catalog price has since risen to $89.99; the existing line froze $79.99.
	products.On("GetByID", mock.Anything, int64(1)).Return(activeProduct(), nil)
	carts.On("Get", mock.Anything, "sess-1").Return(existingLines(), nil)
	carts.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	cart, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{
		ProductID: 1,
		Size:      "M",
		Color:     "olive",
		Quantity:  3,
	})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	// Frozen fields survive the merge untouched.
	assert.Equal(t, int64(7999), cart.Lines[0].UnitPriceCents)
	assert.Equal(t, "https://img.example.com/jacket-old.jpg", cart.Lines[0].ImageURL)
}

func TestCartService_AddItem_DifferentSizeCreatesNewLine(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	products.On("GetByID", mock.Anything, int64(1)).Return(activeProduct(), nil)
	carts.On("Get", mock.Anything, "sess-1").Return(existingLines(), nil)
	carts.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	cart, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{
		ProductID: 1,
		Size:      "L",
		Color:     "olive",
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, 1, cart.Lines[1].Quantity)
	assert.Equal(t, "L", cart.Lines[1].Size)
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	products.On("GetByID", mock.Anything, int64(99)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: 99, Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartService_AddItem_InactiveProduct(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	p := activeProduct()
	p.IsActive = false
	products.On("GetByID", mock.Anything, int64(1)).Return(p, nil)

	_, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: 1, Size: "M", Color: "olive", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartService_AddItem_UnknownSizeRejected(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	products.On("GetByID", mock.Anything, int64(1)).Return(activeProduct(), nil)

	_, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: 1, Size: "XXL", Color: "olive", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartService_AddItem_ValidationErrors(t *testing.T) {
	svc := newTestCartService(new(mockCartRepository), new(mockProductRepository))
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "", AddItemInput{ProductID: 1, Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 0, Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Quantity: 0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: 1, Quantity: MaxQuantityPerLine + 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartService_AddItem_SaveFailureDoesNotFailOperation(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	products.On("GetByID", mock.Anything, int64(1)).Return(activeProduct(), nil)
	carts.On("Get", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))
	carts.On("Save", mock.Anything, "sess-1", mock.Anything).Return(errors.New("redis: connection refused"))

	cart, err := svc.AddItem(context.Background(), "sess-1", AddItemInput{
		ProductID: 1,
		Size:      "M",
		Color:     "olive",
		Quantity:  1,
	})
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

// --- UpdateQuantity ---

func TestCartService_UpdateQuantity_SetsQuantity(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	carts.On("Get", mock.Anything, "sess-1").Return(existingLines(), nil)
	carts.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	cart, err := svc.UpdateQuantity(context.Background(), "sess-1", 1, "M", "olive", 7)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 7, cart.Lines[0].Quantity)
}

func TestCartService_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	carts.On("Get", mock.Anything, "sess-1").Return(existingLines(), nil)
	carts.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	cart, err := svc.UpdateQuantity(context.Background(), "sess-1", 1, "M", "olive", 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartService_UpdateQuantity_MissingIdentityIsNoOp(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	carts.On("Get", mock.Anything, "sess-1").Return(existingLines(), nil)

	// Same product but a different size; nothing matches, nothing changes.
	cart, err := svc.UpdateQuantity(context.Background(), "sess-1", 1, "L", "olive", 3)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

// --- RemoveItem ---

func TestCartService_RemoveItem_RemovesMatchingLine(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	lines := append(existingLines(), domain.CartLine{ProductID: 2, Name: "Beanie", UnitPriceCents: 2500, Quantity: 1})
	carts.On("Get", mock.Anything, "sess-1").Return(lines, nil)
	carts.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	cart, err := svc.RemoveItem(context.Background(), "sess-1", 1, "M", "olive")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(2), cart.Lines[0].ProductID)
}

func TestCartService_RemoveItem_MissingIdentityIsNoOp(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	carts.On("Get", mock.Anything, "sess-1").Return(existingLines(), nil)

	cart, err := svc.RemoveItem(context.Background(), "sess-1", 99, "", "")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
	carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

// --- ClearCart ---

func TestCartService_ClearCart_DeletesSnapshot(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	carts.On("Delete", mock.Anything, "sess-1").Return(nil)

	assert.NoError(t, svc.ClearCart(context.Background(), "sess-1"))
	carts.AssertCalled(t, "Delete", mock.Anything, "sess-1")
}

func TestCartService_ClearCart_DeleteFailureIsSwallowed(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	svc := newTestCartService(carts, products)

	carts.On("Delete", mock.Anything, "sess-1").Return(errors.New("redis: connection refused"))

	assert.NoError(t, svc.ClearCart(context.Background(), "sess-1"))
}
