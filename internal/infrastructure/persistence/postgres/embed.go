// Package postgres implements the repository ports on PostgreSQL via pgx.
package postgres

import "embed"

// Migrations holds the schema, applied at startup with pkg/postgres.RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the SQL files.
const MigrationsDir = "migrations"

type scannable interface {
	Scan(dest ...any) error
}
