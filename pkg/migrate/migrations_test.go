package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/minimart-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestSchemaMigrationsContainGuards(t *testing.T) {
	cases := map[string][]string{
		"*_create_items.sql": {
			"CREATE TABLE IF NOT EXISTS items",
			"CHECK (stock_number >= 0)",
			"CHECK (status IN ('FOR_SALE', 'SOLD_OUT', 'DISCONTINUED'))",
			"CREATE TABLE IF NOT EXISTS item_options",
		},
		"*_create_orders.sql": {
			"CREATE TABLE IF NOT EXISTS orders",
			"CHECK (status IN ('PAID', 'SHIPPING', 'DELIVERED', 'CANCELED'))",
			"CHECK (count > 0)",
			"order_id uuid NOT NULL REFERENCES orders (id) ON DELETE CASCADE",
		},
		"*_create_carts.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS cart_items_user_item_option_key",
			"COALESCE(item_option_id",
		},
		"*_create_social_tables.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS follows_buyer_seller_key",
			"CHECK (rating BETWEEN 0 AND 5)",
			"CREATE TABLE IF NOT EXISTS qna_posts",
		},
		"*_create_outbox_events.sql": {
			"CREATE TABLE IF NOT EXISTS outbox_events",
			"WHERE published_at IS NULL",
		},
	}

	for pattern, checks := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected one migration for %s, got %v", pattern, matches)
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		content := string(data)
		for _, sub := range checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", matches[0], sub)
			}
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Item Tags!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_item_tags.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatalf("expected sanitized-empty name to fail")
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatalf("expected invalid filename error")
	}
}
