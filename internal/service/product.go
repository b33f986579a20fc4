package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/slug"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/pricing"
	"github.com/utafrali/storefront/internal/repository"
)

// CreateProductInput holds the parameters for creating a product. Prices
// are free-form text; they are validated only for presence, not format,
// since unparsable price text deliberately renders as $0.00.
type CreateProductInput struct {
	Name        string            `json:"name" validate:"required,min=2,max=200"`
	Description string            `json:"description"`
	BasePrice   string            `json:"base_price" validate:"required"`
	PriceBySize map[string]string `json:"price_by_size"`
	OnSale      bool              `json:"on_sale"`
	SaleType    string            `json:"sale_type"`
	SaleValue   string            `json:"sale_value"`
	StockBySize map[string]int    `json:"stock_by_size"`
	Category    string            `json:"category" validate:"required"`
	Sizes       []string          `json:"sizes"`
	Colors      []string          `json:"colors"`
	Images      []string          `json:"images" validate:"required,min=1"`
	IsActive    *bool             `json:"is_active"`
}

// UpdateProductInput holds the parameters for updating a product. Nil
// fields are left unchanged.
type UpdateProductInput struct {
	Name        *string            `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string            `json:"description"`
	BasePrice   *string            `json:"base_price"`
	PriceBySize *map[string]string `json:"price_by_size"`
	OnSale      *bool              `json:"on_sale"`
	SaleType    *string            `json:"sale_type"`
	SaleValue   *string            `json:"sale_value"`
	StockBySize *map[string]int    `json:"stock_by_size"`
	Category    *string            `json:"category"`
	Sizes       *[]string          `json:"sizes"`
	Colors      *[]string          `json:"colors"`
	Images      *[]string          `json:"images"`
	IsActive    *bool              `json:"is_active"`
}

// ProductService implements the business logic for catalog operations.
type ProductService struct {
	repo     repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateProduct creates a new product in the catalog.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.BasePrice == "" {
		return nil, apperrors.InvalidInput("base price is required")
	}
	if len(input.Images) == 0 {
		return nil, apperrors.InvalidInput("at least one image is required")
	}
	if input.OnSale && input.SaleType != "" && !domain.IsValidSaleType(input.SaleType) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("sale type must be one of %v", domain.ValidSaleTypes()))
	}

	now := time.Now().UTC()
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	product := &domain.Product{
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		BasePrice:   input.BasePrice,
		PriceBySize: input.PriceBySize,
		OnSale:      input.OnSale,
		SaleType:    input.SaleType,
		SaleValue:   input.SaleValue,
		StockBySize: input.StockBySize,
		Category:    input.Category,
		Sizes:       input.Sizes,
		Colors:      input.Colors,
		Images:      input.Images,
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductEvent(ctx, event.TopicProductCreated, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// GetProduct retrieves a single product by ID with resolved display pricing.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.ProductDetail, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return s.detail(product), nil
}

// GetProductBySlug retrieves a single product by slug with resolved display pricing.
func (s *ProductService) GetProductBySlug(ctx context.Context, productSlug string) (*domain.ProductDetail, error) {
	product, err := s.repo.GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productSlug)
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return s.detail(product), nil
}

// ListProducts retrieves a page of products matching the filter, each with
// resolved display pricing, along with the total match count.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.ProductDetail, int, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	details := make([]domain.ProductDetail, len(products))
	for i := range products {
		details[i] = *s.detail(&products[i])
	}

	return details, total, nil
}

// UpdateProduct applies the non-nil fields of the input to an existing
// product. Renaming a product regenerates its slug.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.SaleType != nil && *input.SaleType != "" && !domain.IsValidSaleType(*input.SaleType) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("sale type must be one of %v", domain.ValidSaleTypes()))
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.BasePrice != nil {
		if *input.BasePrice == "" {
			return nil, apperrors.InvalidInput("base price must not be empty")
		}
		product.BasePrice = *input.BasePrice
	}
	if input.PriceBySize != nil {
		product.PriceBySize = *input.PriceBySize
	}
	if input.OnSale != nil {
		product.OnSale = *input.OnSale
	}
	if input.SaleType != nil {
		product.SaleType = *input.SaleType
	}
	if input.SaleValue != nil {
		product.SaleValue = *input.SaleValue
	}
	if input.StockBySize != nil {
		product.StockBySize = *input.StockBySize
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Sizes != nil {
		product.Sizes = *input.Sizes
	}
	if input.Colors != nil {
		product.Colors = *input.Colors
	}
	if input.Images != nil {
		if len(*input.Images) == 0 {
			return nil, apperrors.InvalidInput("at least one image is required")
		}
		product.Images = *input.Images
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) || errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductEvent(ctx, event.TopicProductUpdated, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("product", id)
		}
		return fmt.Errorf("get product for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductEvent(ctx, event.TopicProductDeleted, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id),
	)

	return nil
}

func (s *ProductService) detail(p *domain.Product) *domain.ProductDetail {
	return &domain.ProductDetail{
		Product:           *p,
		BasePriceCents:    pricing.ParseMoney(p.BasePrice),
		DisplayPriceCents: pricing.ResolveDisplayPrice(p),
	}
}
