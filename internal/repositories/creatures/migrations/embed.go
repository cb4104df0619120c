package migrations

import "embed"

// SQLite contains the goose migrations for the SQLite creature store.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres contains the goose migrations for the Postgres creature store.
//
//go:embed postgres/*.sql
var Postgres embed.FS
