package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given name.
//
// Examples:
//   - "Blue Hoodie" → "blue-hoodie"
//   - "Café  Blend!" → "caf-blend"
func Generate(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))

	// Runs of non-alphanumeric characters collapse into a single hyphen.
	slug = slugRegexp.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
