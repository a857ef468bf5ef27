package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the schema and seed steps, registered by file name order.
var Migrations = migrate.NewMigrations()
