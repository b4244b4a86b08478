// Package migrations expone el esquema goose embebido en el binario.
package migrations

import "embed"

// FS migraciones SQL en formato goose.
//
//go:embed *.sql
var FS embed.FS
