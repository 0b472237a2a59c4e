package resources

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

const migrationDir = "migrations"

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one embedded schema step.
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns the embedded migrations ordered by file name.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, migrationDir)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		data, err := migrationFS.ReadFile(migrationDir + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("load migration %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Name: strings.TrimSuffix(name, ".sql"),
			SQL:  string(data),
		})
	}
	return migrations, nil
}
