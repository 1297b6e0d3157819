package database

import (
	"strings"
	"testing"
)

// readMigration pulls one embedded migration file.
func readMigration(t *testing.T, name string) string {
	t.Helper()
	data, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		t.Fatalf("failed to read embedded migration %s: %v", name, err)
	}
	return string(data)
}

// tableBlock extracts the CREATE TABLE statement for one table.
func tableBlock(t *testing.T, sql, table string) string {
	t.Helper()
	marker := "CREATE TABLE " + table
	start := strings.Index(sql, marker)
	if start < 0 {
		marker = "CREATE TABLE IF NOT EXISTS " + table
		start = strings.Index(sql, marker)
	}
	if start < 0 {
		t.Fatalf("migration does not create table %s", table)
	}
	end := strings.Index(sql[start:], ";")
	if end < 0 {
		t.Fatalf("unterminated CREATE TABLE for %s", table)
	}
	return sql[start : start+end]
}

// Deleting a user must take their dependent rows with them. The rule lives
// in the DDL, so assert the FK clauses directly: dropping one silently
// would orphan sessions or accounts.
func TestUserForeignKeysCascade(t *testing.T) {
	authSQL := readMigration(t, "000001_create_auth_tables.up.sql")
	journalSQL := readMigration(t, "000002_create_journal_tables.up.sql")

	cases := []struct {
		sql    string
		table  string
		column string
		parent string
	}{
		{authSQL, "sessions", "user_id", "users(id)"},
		{authSQL, "accounts", "user_id", "users(id)"},
		{journalSQL, "memories", "user_id", "users(id)"},
		{journalSQL, "stories", "user_id", "users(id)"},
		{journalSQL, "story_pages", "story_id", "stories(id)"},
		{journalSQL, "badges", "user_id", "users(id)"},
	}

	for _, tc := range cases {
		t.Run(tc.table, func(t *testing.T) {
			block := tableBlock(t, tc.sql, tc.table)

			want := tc.column + " UUID NOT NULL REFERENCES " + tc.parent + " ON DELETE CASCADE"
			if !strings.Contains(block, want) {
				t.Errorf("%s.%s must reference %s with ON DELETE CASCADE:\n%s",
					tc.table, tc.column, tc.parent, block)
			}
		})
	}
}

func TestMigrationsComeInPairs(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("failed to list embedded migrations: %v", err)
	}

	ups := make(map[string]bool)
	downs := make(map[string]bool)
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file in migrations: %s", name)
		}
	}

	for base := range ups {
		if !downs[base] {
			t.Errorf("migration %s has no down file", base)
		}
	}
	for base := range downs {
		if !ups[base] {
			t.Errorf("migration %s has no up file", base)
		}
	}
}
