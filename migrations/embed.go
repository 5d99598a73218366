// Package migrations embeds the SQL schema so binaries can migrate without the source tree.
package migrations

import "embed"

// FS holds the postgres migrations, applied in version order by cmd/migrate
//
//go:embed postgres/*.sql
var FS embed.FS

// Dir is the directory inside FS that holds the migration files
const Dir = "postgres"
