package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEquipmentItemsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_equipment_items.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS equipment_items",
		"CHECK (total_qty >= 0)",
		"CHECK (borrowed_qty >= 0)",
		"CHECK (borrowed_qty <= total_qty)",
		"DROP TABLE IF EXISTS equipment_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBorrowRecordsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_borrow_records.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS borrow_records",
		"FOREIGN KEY (equipment_id) REFERENCES equipment_items(id) ON DELETE CASCADE",
		"CHECK (qty > 0)",
		"DROP TABLE IF EXISTS borrow_records",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %s", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
