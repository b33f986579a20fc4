package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Blue Hoodie", "blue-hoodie"},
		{"  Market   Price Tee ", "market-price-tee"},
		{"Hello, World!", "hello-world"},
		{"100% Cotton", "100-cotton"},
		{"Tee -- Limited // Run", "tee-limited-run"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.in))
		})
	}
}
