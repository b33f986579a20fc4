package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/pricing"
	"github.com/utafrali/storefront/internal/repository"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerLine is the maximum quantity allowed for a single cart line.
	MaxQuantityPerLine = 100
	// MaxLinesPerCart is the maximum number of distinct lines allowed in a cart.
	MaxLinesPerCart = 50
)

// AddItemInput holds the parameters for adding an item to the cart. The
// price is never supplied by the caller; it is resolved from the catalog at
// add time and frozen on the line.
type AddItemInput struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityInput holds the parameters for updating a line quantity.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity"`
}

// CartService implements the business logic for cart operations.
//
// The cart is a session-scoped snapshot in Redis with last-writer-wins
// semantics. Snapshot reads and writes are best effort: an unreadable
// snapshot degrades to an empty cart, and a failed write is logged but does
// not fail the operation, so the in-memory result the caller sees is always
// the authoritative one for this request.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a session. A missing or unreadable
// snapshot yields an empty cart rather than an error.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	return s.loadCart(ctx, sessionID), nil
}

// AddItem adds a product to the session's cart. If a line with the same
// (product, size, color) identity already exists, the requested quantity is
// added onto it and the line's captured fields are left untouched, so the
// unit price stays frozen at what it was when the line was first created. A
// brand-new line always starts at quantity 1 regardless of the requested
// quantity.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if input.ProductID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", input.ProductID)
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	if !product.IsActive {
		return nil, apperrors.InvalidInput("product is not available")
	}

	size, color := input.Size, input.Color
	if len(product.Sizes) == 0 {
		size = ""
	} else if !product.HasSize(size) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("size %q is not offered for this product", size))
	}
	if len(product.Colors) == 0 {
		color = ""
	} else if !product.HasColor(color) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("color %q is not offered for this product", color))
	}

	cart := s.loadCart(ctx, sessionID)

	if i := cart.FindLineIndex(input.ProductID, size, color); i >= 0 {
		newQty := cart.Lines[i].Quantity + input.Quantity
		if newQty > MaxQuantityPerLine {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerLine))
		}
		// Only the quantity moves; name, image and unit price stay as
		// captured when the line was created.
		cart.Lines[i].Quantity = newQty
	} else {
		if len(cart.Lines) >= MaxLinesPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d lines", MaxLinesPerCart))
		}

		line := domain.CartLine{
			ProductID:      product.ID,
			Name:           product.Name,
			UnitPriceCents: pricing.ResolveUnitPrice(product, size),
			// A new line always enters at quantity 1; the requested
			// quantity only matters when merging into an existing line.
			Quantity: 1,
			Size:     size,
			Color:    color,
		}
		if len(product.Images) > 0 {
			line.ImageURL = product.Images[0]
		}
		cart.Lines = append(cart.Lines, line)
	}

	s.persist(ctx, cart)
	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.Int64("product_id", input.ProductID),
		slog.String("size", size),
		slog.String("color", color),
	)

	return cart, nil
}

// UpdateQuantity sets the quantity of the line matching the given identity.
// A quantity below 1 removes the line. A missing identity is a no-op: the
// cart is returned unchanged and nothing is persisted.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, size, color string, quantity int) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if productID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	if quantity < 1 {
		return s.RemoveItem(ctx, sessionID, productID, size, color)
	}

	cart := s.loadCart(ctx, sessionID)

	i := cart.FindLineIndex(productID, size, color)
	if i < 0 {
		return cart, nil
	}

	cart.Lines[i].Quantity = quantity

	s.persist(ctx, cart)
	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "cart line quantity updated",
		slog.String("session_id", sessionID),
		slog.Int64("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// RemoveItem removes the line matching the given identity. A missing
// identity is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64, size, color string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if productID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart := s.loadCart(ctx, sessionID)

	i := cart.FindLineIndex(productID, size, color)
	if i < 0 {
		return cart, nil
	}

	cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)

	s.persist(ctx, cart)
	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.Int64("product_id", productID),
	)

	return cart, nil
}

// ClearCart removes all lines from the session's cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete cart snapshot",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
	)

	return nil
}

// loadCart reads the session's snapshot, degrading to an empty cart when
// the snapshot is absent or unreadable.
func (s *CartService) loadCart(ctx context.Context, sessionID string) *domain.Cart {
	lines, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "cart snapshot unreadable, starting empty",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return domain.NewCart(sessionID)
	}

	cart := domain.NewCart(sessionID)
	cart.Lines = lines
	return cart
}

// persist writes the snapshot back. Failures are logged and swallowed: the
// caller already holds the authoritative cart for this request.
func (s *CartService) persist(ctx context.Context, cart *domain.Cart) {
	if err := s.carts.Save(ctx, cart.SessionID, cart.Lines); err != nil {
		s.logger.WarnContext(ctx, "failed to save cart snapshot",
			slog.String("session_id", cart.SessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CartService) publishUpdated(ctx context.Context, cart *domain.Cart) {
	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", cart.SessionID),
			slog.String("error", err.Error()),
		)
	}
}
