// Package migrations embeds the catalog schema for each supported driver.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

// Embedded migration files bundled at compile time.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS

// Source returns the migration files for a database/sql driver name,
// rooted at the driver directory.
func Source(driver string) (fs.FS, error) {
	switch driver {
	case "sqlite3":
		return fs.Sub(SqliteMigrations, "sqlite")
	case "postgres":
		return fs.Sub(PostgresMigrations, "postgres")
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}
