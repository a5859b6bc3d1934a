package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harlowprint/backoffice-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestCategoriesMigrationContainsSchemaAndSeed(t *testing.T) {
	content := readMigration(t, "*_create_categories.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS categories",
		"CREATE UNIQUE INDEX IF NOT EXISTS categories_kind_name_key",
		"'Business Cards', 'category'",
		"'Folded', 'subcategory'",
		"ON CONFLICT DO NOTHING",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPricingRunsMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_pricing_runs.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS pricing_runs",
		"CREATE INDEX IF NOT EXISTS pricing_runs_started_at_idx",
		"finished_at",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestDialectFor(t *testing.T) {
	if got := migrate.DialectFor("sqlite"); got != "sqlite3" {
		t.Fatalf("sqlite dialect %q", got)
	}
	if got := migrate.DialectFor("postgres"); got != "postgres" {
		t.Fatalf("postgres dialect %q", got)
	}
	if got := migrate.DialectFor(""); got != "postgres" {
		t.Fatalf("default dialect %q", got)
	}
}
