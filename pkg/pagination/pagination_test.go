package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/products", nil)
	p := FromRequest(r)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_Explicit(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/products?page=3&per_page=10", nil)
	p := FromRequest(r)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.PerPage)
	assert.Equal(t, 20, p.Offset)
}

func TestFromRequest_InvalidValuesIgnored(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric page", "?page=abc"},
		{"zero page", "?page=0"},
		{"negative page", "?page=-2"},
		{"per_page too large", "?per_page=500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/products"+tt.query, nil)
			p := FromRequest(r)
			assert.Equal(t, 1, p.Page)
			assert.Equal(t, 20, p.PerPage)
		})
	}
}
