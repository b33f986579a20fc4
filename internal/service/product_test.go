package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

func newTestProductService(repo *mockProductRepository) *ProductService {
	return NewProductService(repo, newTestProducer(), newTestLogger())
}

func validCreateInput() CreateProductInput {
	return CreateProductInput{
		Name:        "Canvas Jacket",
		Description: "A rugged canvas jacket",
		BasePrice:   "$89.99",
		Category:    "outerwear",
		Sizes:       []string{"M", "L"},
		Colors:      []string{"olive"},
		Images:      []string{"https://img.example.com/jacket.jpg"},
	}
}

// --- CreateProduct ---

func TestProductService_CreateProduct_Success(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Product).ID = 42
		}).
		Return(nil)

	product, err := svc.CreateProduct(context.Background(), validCreateInput())
	require.NoError(t, err)
	assert.Equal(t, int64(42), product.ID)
	assert.Equal(t, "canvas-jacket", product.Slug)
	assert.True(t, product.IsActive)
	assert.False(t, product.CreatedAt.IsZero())
}

func TestProductService_CreateProduct_ValidationErrors(t *testing.T) {
	svc := newTestProductService(new(mockProductRepository))
	ctx := context.Background()

	missingName := validCreateInput()
	missingName.Name = ""
	_, err := svc.CreateProduct(ctx, missingName)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	missingPrice := validCreateInput()
	missingPrice.BasePrice = ""
	_, err = svc.CreateProduct(ctx, missingPrice)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	noImages := validCreateInput()
	noImages.Images = nil
	_, err = svc.CreateProduct(ctx, noImages)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	badSale := validCreateInput()
	badSale.OnSale = true
	badSale.SaleType = "bogo"
	badSale.SaleValue = "10"
	_, err = svc.CreateProduct(ctx, badSale)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestProductService_CreateProduct_UnparsablePriceTextAllowed(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	input := validCreateInput()
	input.BasePrice = "Market Price"

	product, err := svc.CreateProduct(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Market Price", product.BasePrice)
}

func TestProductService_CreateProduct_DuplicateSlug(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	repo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("product", "slug", "canvas-jacket"))

	_, err := svc.CreateProduct(context.Background(), validCreateInput())
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

// --- GetProduct ---

func TestProductService_GetProduct_ResolvesDisplayPrice(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	p := &domain.Product{
		ID:        1,
		Name:      "Canvas Jacket",
		BasePrice: "$100.00",
		OnSale:    true,
		SaleType:  domain.SaleTypePercentage,
		SaleValue: "20",
		IsActive:  true,
	}
	repo.On("GetByID", mock.Anything, int64(1)).Return(p, nil)

	detail, err := svc.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), detail.BasePriceCents)
	assert.Equal(t, int64(8000), detail.DisplayPriceCents)
}

func TestProductService_GetProduct_NotFound(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetProduct(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductService_GetProductBySlug_Success(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	p := &domain.Product{ID: 1, Slug: "canvas-jacket", BasePrice: "$89.99"}
	repo.On("GetBySlug", mock.Anything, "canvas-jacket").Return(p, nil)

	detail, err := svc.GetProductBySlug(context.Background(), "canvas-jacket")
	require.NoError(t, err)
	assert.Equal(t, int64(8999), detail.DisplayPriceCents)
}

// --- ListProducts ---

func TestProductService_ListProducts_ResolvesPrices(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	items := []domain.Product{
		{ID: 1, BasePrice: "$50.00", OnSale: true, SaleType: domain.SaleTypeFlat, SaleValue: "5"},
		{ID: 2, BasePrice: "$20.00"},
	}
	repo.On("List", mock.Anything, mock.Anything).Return(items, 2, nil)

	details, total, err := svc.ListProducts(context.Background(), repository.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, details, 2)
	assert.Equal(t, int64(4500), details[0].DisplayPriceCents)
	assert.Equal(t, int64(2000), details[1].DisplayPriceCents)
}

// --- UpdateProduct ---

func TestProductService_UpdateProduct_PartialUpdate(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	existing := &domain.Product{
		ID:        1,
		Name:      "Canvas Jacket",
		Slug:      "canvas-jacket",
		BasePrice: "$89.99",
		Category:  "outerwear",
		IsActive:  true,
	}
	repo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	newName := "Waxed Canvas Jacket"
	onSale := true
	saleType := domain.SaleTypePercentage
	saleValue := "15"

	product, err := svc.UpdateProduct(context.Background(), 1, UpdateProductInput{
		Name:      &newName,
		OnSale:    &onSale,
		SaleType:  &saleType,
		SaleValue: &saleValue,
	})
	require.NoError(t, err)
	assert.Equal(t, "Waxed Canvas Jacket", product.Name)
	assert.Equal(t, "waxed-canvas-jacket", product.Slug)
	assert.True(t, product.OnSale)
	// Untouched fields survive.
	assert.Equal(t, "$89.99", product.BasePrice)
	assert.Equal(t, "outerwear", product.Category)
}

func TestProductService_UpdateProduct_InvalidSaleType(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	repo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Product{ID: 1}, nil)

	bad := "bogo"
	_, err := svc.UpdateProduct(context.Background(), 1, UpdateProductInput{SaleType: &bad})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.UpdateProduct(context.Background(), 99, UpdateProductInput{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- DeleteProduct ---

func TestProductService_DeleteProduct_Success(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	repo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Product{ID: 1}, nil)
	repo.On("Delete", mock.Anything, int64(1)).Return(nil)

	assert.NoError(t, svc.DeleteProduct(context.Background(), 1))
	repo.AssertCalled(t, "Delete", mock.Anything, int64(1))
}

func TestProductService_DeleteProduct_NotFound(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestProductService(repo)

	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, apperrors.ErrNotFound)

	err := svc.DeleteProduct(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
