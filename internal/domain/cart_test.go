package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Cart Aggregate Tests
// ============================================================================

func TestNewCart_Empty(t *testing.T) {
	cart := NewCart("sess-123")
	assert.Equal(t, "sess-123", cart.SessionID)
	assert.NotNil(t, cart.Lines)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 0, cart.ItemCount())
	assert.Equal(t, int64(0), cart.TotalCents())
}

func TestCart_TotalCents(t *testing.T) {
	cart := &Cart{
		SessionID: "sess-123",
		Lines: []CartLine{
			{ProductID: 1, UnitPriceCents: 2999, Quantity: 2},
			{ProductID: 2, UnitPriceCents: 1500, Quantity: 1},
		},
	}
	assert.Equal(t, int64(2999*2+1500), cart.TotalCents())
}

func TestCart_ItemCount(t *testing.T) {
	cart := &Cart{
		Lines: []CartLine{
			{ProductID: 1, Quantity: 3},
			{ProductID: 2, Quantity: 4},
		},
	}
	assert.Equal(t, 7, cart.ItemCount())
}

func TestCart_FindLineIndex(t *testing.T) {
	cart := &Cart{
		Lines: []CartLine{
			{ProductID: 1, Size: "M", Color: "black"},
			{ProductID: 1, Size: "L", Color: "black"},
			{ProductID: 2},
		},
	}

	assert.Equal(t, 0, cart.FindLineIndex(1, "M", "black"))
	assert.Equal(t, 1, cart.FindLineIndex(1, "L", "black"))
	assert.Equal(t, 2, cart.FindLineIndex(2, "", ""))
	assert.Equal(t, -1, cart.FindLineIndex(1, "M", "white"))
	assert.Equal(t, -1, cart.FindLineIndex(3, "", ""))
}

func TestCart_FindLineIndex_SizeAndColorPartitionLines(t *testing.T) {
	// The same product in different sizes or colors must remain distinct lines.
	cart := &Cart{
		Lines: []CartLine{
			{ProductID: 7, Size: "S", Color: "red", Quantity: 1},
			{ProductID: 7, Size: "S", Color: "blue", Quantity: 1},
		},
	}
	assert.NotEqual(t, cart.FindLineIndex(7, "S", "red"), cart.FindLineIndex(7, "S", "blue"))
}

func TestCartLine_LineTotalCents(t *testing.T) {
	line := CartLine{UnitPriceCents: 1250, Quantity: 3}
	assert.Equal(t, int64(3750), line.LineTotalCents())
}

func TestCart_MarshalJSON_IncludesDerivedTotals(t *testing.T) {
	cart := &Cart{
		SessionID: "sess-123",
		Lines: []CartLine{
			{ProductID: 1, UnitPriceCents: 2999, Quantity: 2},
			{ProductID: 2, UnitPriceCents: 1500, Quantity: 1},
		},
	}

	data, err := json.Marshal(cart)
	assert.NoError(t, err)

	var got map[string]any
	assert.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(3), got["item_count"])
	assert.Equal(t, float64(7498), got["total_cents"])
	assert.Equal(t, "sess-123", got["session_id"])
}
