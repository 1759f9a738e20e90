// Package migrations embeds the Postgres schema migrations applied by
// pkg/database at startup when auto-migration is enabled.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
