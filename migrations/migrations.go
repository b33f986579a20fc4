// Package migrations embeds the SQL schema migrations for the storefront
// database.
package migrations

import "embed"

// FS holds the embedded .up.sql migration files, applied in lexical order.
//
//go:embed *.up.sql
var FS embed.FS
