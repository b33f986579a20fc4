package domain

import "encoding/json"

// CartLine represents a single line in a shopping cart. A line is identified
// by the (ProductID, Size, Color) triple; two lines with the same product but
// different sizes or colors are distinct.
type CartLine struct {
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	ImageURL       string `json:"image_url,omitempty"`
	Size           string `json:"size,omitempty"`
	Color          string `json:"color,omitempty"`
}

// Matches reports whether the line carries the given identity triple.
func (l CartLine) Matches(productID int64, size, color string) bool {
	return l.ProductID == productID && l.Size == size && l.Color == color
}

// LineTotalCents returns the extended price of the line in cents.
func (l CartLine) LineTotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// Cart represents a session-scoped shopping cart. Lines preserve insertion
// order; the cart is persisted as the bare JSON array of its lines.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
}

// NewCart returns an empty cart for the given session.
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Lines:     []CartLine{},
	}
}

// TotalCents calculates the total price of all lines in the cart (in cents).
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.LineTotalCents()
	}
	return total
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// MarshalJSON includes the derived item count and total so every cart
// response carries them without recomputation on the client.
func (c *Cart) MarshalJSON() ([]byte, error) {
	type alias Cart
	return json.Marshal(struct {
		*alias
		ItemCount  int   `json:"item_count"`
		TotalCents int64 `json:"total_cents"`
	}{
		alias:      (*alias)(c),
		ItemCount:  c.ItemCount(),
		TotalCents: c.TotalCents(),
	})
}

// FindLineIndex returns the index of the line matching the given identity
// triple. Returns -1 if not found. This provides O(n) search but centralizes
// the logic for easier optimization later.
func (c *Cart) FindLineIndex(productID int64, size, color string) int {
	for i := range c.Lines {
		if c.Lines[i].Matches(productID, size, color) {
			return i
		}
	}
	return -1
}
