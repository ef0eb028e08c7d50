// migrations/migrations_test.go
package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/db?sslmode=disable", toMigrateURL("postgres://u:p@localhost:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://localhost/db", toMigrateURL("postgresql://localhost/db"))
	assert.Equal(t, "pgx5://localhost/db", toMigrateURL("pgx5://localhost/db"))
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := files.ReadDir(".")
	assert.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init_schema.up.sql")
	assert.Contains(t, names, "000001_init_schema.down.sql")
}
