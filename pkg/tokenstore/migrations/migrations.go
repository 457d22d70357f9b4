// Package migrations embeds the schema migration files for the SQLite
// token store so they compile into the consuming binary.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
