// Package migrations embeds the SQL schema for each supported database driver.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// FS returns the migrations for driver ("postgres" or "sqlite")
func FS(driver string) (fs.FS, error) {
	switch driver {
	case "postgres", "sqlite":
		return fs.Sub(files, driver)
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
}
