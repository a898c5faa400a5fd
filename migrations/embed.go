// Package migrations embeds the SQL schema applied by internal/pkg/migration.
package migrations

import "embed"

// FS holds every *.sql migration file.
//
//go:embed *.sql
var FS embed.FS
