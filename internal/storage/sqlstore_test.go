package storage

import (
	"testing"

	"github.com/julianstephens/mealplanner/internal/migration"
)

func TestRebind(t *testing.T) {
	query := "INSERT INTO t (a, b) VALUES (?, ?)"

	sqlite := NewSQLStore(nil, migration.SQLite)
	if got := sqlite.rebind(query); got != query {
		t.Errorf("sqlite rebind = %q", got)
	}

	pg := NewSQLStore(nil, migration.Postgres)
	if got := pg.rebind(query); got != "INSERT INTO t (a, b) VALUES ($1, $2)" {
		t.Errorf("postgres rebind = %q", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := normalizeEmail("  Bob@Example.COM "); got != "bob@example.com" {
		t.Errorf("normalizeEmail() = %q", got)
	}
}
