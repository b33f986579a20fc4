// Package pricing converts the catalog's free-form price text into integer
// cents and resolves the effective price for a cart line or product listing.
package pricing

import (
	"math"
	"strconv"
	"strings"
)

// moneyCleaner strips the formatting characters merchandising tends to type
// into price fields before numeric parsing.
var moneyCleaner = strings.NewReplacer("$", "", ",", "")

// ParseMoney converts free-form price text into integer cents. Currency
// symbols, thousands separators and surrounding whitespace are stripped
// first. Text that still does not parse as a decimal number ("Market
// Price", "") yields zero cents rather than an error; a zero price renders
// as $0.00 downstream, which is the desired behavior for placeholder
// price text.
func ParseMoney(text string) int64 {
	cleaned := strings.TrimSpace(moneyCleaner.Replace(text))
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		// ParseFloat accepts "NaN" and "Inf" spellings, which would
		// convert to int64 garbage.
		return 0
	}
	return int64(math.Round(value * 100))
}
