package domain

import (
	"time"
)

// Sale type constants.
const (
	SaleTypePercentage = "percentage"
	SaleTypeFlat       = "flat"
)

// Product represents a product in the catalog. Prices are stored as
// free-form text exactly as entered by merchandising ("$29.99",
// "Market Price"); they are converted to cents only at resolution time.
type Product struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	BasePrice   string            `json:"base_price"`
	PriceBySize map[string]string `json:"price_by_size,omitempty"`
	OnSale      bool              `json:"on_sale"`
	SaleType    string            `json:"sale_type,omitempty"`
	SaleValue   string            `json:"sale_value,omitempty"`
	StockBySize map[string]int    `json:"stock_by_size,omitempty"`
	Category    string            `json:"category"`
	Sizes       []string          `json:"sizes"`
	Colors      []string          `json:"colors"`
	Images      []string          `json:"images"`
	IsActive    bool              `json:"is_active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SaleActive reports whether the product carries a fully-specified sale.
// A sale counts only when the flag is set AND both type and value are
// non-empty; a bare on_sale flag with missing parameters is ignored.
func (p *Product) SaleActive() bool {
	return p.OnSale && p.SaleType != "" && p.SaleValue != ""
}

// HasSize reports whether the given size is offered by the product.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// HasColor reports whether the given color is offered by the product.
func (p *Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// ValidSaleTypes returns the set of valid sale types.
func ValidSaleTypes() []string {
	return []string{SaleTypePercentage, SaleTypeFlat}
}

// IsValidSaleType checks whether the given string is a valid sale type.
func IsValidSaleType(saleType string) bool {
	for _, s := range ValidSaleTypes() {
		if s == saleType {
			return true
		}
	}
	return false
}

// ProductDetail is a product enriched with resolved prices, suitable for
// storefront display.
type ProductDetail struct {
	Product
	BasePriceCents    int64 `json:"base_price_cents"`
	DisplayPriceCents int64 `json:"display_price_cents"`
}
