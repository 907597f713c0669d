package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tablemesh/kds-backend/pkg/migrate"
)

func TestTicketItemsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_ticket_items.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no ticket items migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS ticket_items",
		"REFERENCES kitchen_tickets(id) ON DELETE CASCADE",
		"CHECK (qty > 0)",
		"CHECK (status IN ('NEW', 'PREPARING', 'READY'))",
		"DROP TABLE IF EXISTS ticket_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestKitchenTicketsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_kitchen_tickets.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no kitchen tickets migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS kitchen_tickets",
		"REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (round_number >= 1)",
		"ux_kitchen_tickets_branch_kot",
		"DROP TABLE IF EXISTS kitchen_tickets",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
