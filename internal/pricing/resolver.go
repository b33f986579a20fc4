package pricing

import (
	"math"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
)

// ResolveUnitPrice returns the effective unit price in cents for the given
// product and selected size. A non-empty per-size override takes precedence
// over the base price; an absent or empty override falls back to the base
// price. Sale parameters do not apply here: the cart captures the shelf
// price for the chosen size.
func ResolveUnitPrice(p *domain.Product, size string) int64 {
	if size != "" {
		if override, ok := p.PriceBySize[size]; ok && override != "" {
			return ParseMoney(override)
		}
	}
	return ParseMoney(p.BasePrice)
}

// ResolveDisplayPrice returns the price in cents shown on product listings,
// with any active sale applied to the base price.
//
// A percentage sale multiplies the base by (1 - value/100); a flat sale
// subtracts the value (interpreted as a currency amount) from the base. A
// sale value that does not parse as a number disables the sale for that
// product. The result is deliberately not clamped at zero: a flat discount
// larger than the base price is a data-entry error that should be visible,
// not silently masked.
func ResolveDisplayPrice(p *domain.Product) int64 {
	base := ParseMoney(p.BasePrice)
	if !p.SaleActive() {
		return base
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(p.SaleValue), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return base
	}

	switch p.SaleType {
	case domain.SaleTypePercentage:
		return int64(math.Round(float64(base) * (1 - value/100)))
	case domain.SaleTypeFlat:
		return base - int64(math.Round(value*100))
	default:
		return base
	}
}
