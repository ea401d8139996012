package migrations

import "embed"

// Migration files are embedded so a single binary can bootstrap its own
// catalog schema.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
