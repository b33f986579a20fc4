package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Sale Type Validation Tests
// ============================================================================

func TestValidSaleTypes_ContainsAll(t *testing.T) {
	types := ValidSaleTypes()
	expected := []string{SaleTypePercentage, SaleTypeFlat}
	assert.ElementsMatch(t, expected, types)
}

func TestIsValidSaleType_ValidTypes(t *testing.T) {
	for _, s := range ValidSaleTypes() {
		assert.True(t, IsValidSaleType(s), "expected %q to be valid", s)
	}
}

func TestIsValidSaleType_Invalid(t *testing.T) {
	assert.False(t, IsValidSaleType("unknown"))
	assert.False(t, IsValidSaleType(""))
	assert.False(t, IsValidSaleType("PERCENTAGE"))
}

// ============================================================================
// Product Struct Tests
// ============================================================================

func TestProduct_SaleActive(t *testing.T) {
	p := &Product{OnSale: true, SaleType: SaleTypePercentage, SaleValue: "20"}
	assert.True(t, p.SaleActive())
}

func TestProduct_SaleActive_IncompleteSale(t *testing.T) {
	// A bare flag without type or value is not a sale.
	assert.False(t, (&Product{OnSale: true}).SaleActive())
	assert.False(t, (&Product{OnSale: true, SaleType: SaleTypeFlat}).SaleActive())
	assert.False(t, (&Product{OnSale: true, SaleValue: "5"}).SaleActive())
	assert.False(t, (&Product{OnSale: false, SaleType: SaleTypeFlat, SaleValue: "5"}).SaleActive())
}

func TestProduct_HasSize(t *testing.T) {
	p := &Product{Sizes: []string{"S", "M", "L"}}

	assert.True(t, p.HasSize("M"))
	assert.False(t, p.HasSize("XL"))
	assert.False(t, p.HasSize(""))
}

func TestProduct_HasColor(t *testing.T) {
	p := &Product{Colors: []string{"black", "white"}}

	assert.True(t, p.HasColor("black"))
	assert.False(t, p.HasColor("red"))
}
