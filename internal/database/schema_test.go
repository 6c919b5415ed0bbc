package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "../../migrations"

func readMigration(t *testing.T, name string) string {
	t.Helper()

	content, err := os.ReadFile(filepath.Join(migrationsDir, name))
	if err != nil {
		t.Fatalf("Failed to read migration file %s: %v", name, err)
	}
	return string(content)
}

func TestMigrationFilesExist(t *testing.T) {
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	expectedMigrations := []string{
		"00001_create_users_table.sql",
		"00002_create_categories_table.sql",
		"00003_create_products_table.sql",
		"00004_create_product_sizes_table.sql",
		"00005_create_customers_table.sql",
		"00006_create_orders_table.sql",
		"00007_create_order_products_table.sql",
		"00008_create_order_items_table.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content := readMigration(t, file.Name())

		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(content, directive) {
				t.Errorf("Migration file %s missing %q directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"users":          "00001_create_users_table.sql",
		"categories":     "00002_create_categories_table.sql",
		"products":       "00003_create_products_table.sql",
		"product_sizes":  "00004_create_product_sizes_table.sql",
		"customers":      "00005_create_customers_table.sql",
		"orders":         "00006_create_orders_table.sql",
		"order_products": "00007_create_order_products_table.sql",
		"order_items":    "00008_create_order_items_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		content := readMigration(t, migrationFile)

		if !strings.Contains(content, "CREATE TABLE "+tableName) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}
		if !strings.Contains(content, "DROP TABLE "+tableName) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestProductsTableGuardsDiscountRange(t *testing.T) {
	content := readMigration(t, "00003_create_products_table.sql")

	if !strings.Contains(content, "NUMERIC(12, 2)") {
		t.Error("Products table should store prices as NUMERIC(12, 2)")
	}
	if !strings.Contains(content, "CHECK (discount >= 0 AND discount <= 100)") {
		t.Error("Products table missing discount range check")
	}
	if !strings.Contains(content, "REFERENCES categories(id)") {
		t.Error("Products table missing foreign key to categories")
	}
}

func TestProductSizesTableGuardsStock(t *testing.T) {
	content := readMigration(t, "00004_create_product_sizes_table.sql")

	if !strings.Contains(content, "CHECK (quantity >= 0)") {
		t.Error("Product sizes table missing non-negative stock check")
	}
	if !strings.Contains(content, "UNIQUE (product_id, size)") {
		t.Error("Product sizes table missing unique constraint on (product_id, size)")
	}
}

func TestOrdersTableDefaultsToReceived(t *testing.T) {
	content := readMigration(t, "00006_create_orders_table.sql")

	if !strings.Contains(content, "DEFAULT 'RECEIVED'") {
		t.Error("Orders table should default status to RECEIVED")
	}
	for _, index := range []string{"idx_orders_customer_id", "idx_orders_status", "idx_orders_created_at"} {
		if !strings.Contains(content, index) {
			t.Errorf("Orders table missing index %s", index)
		}
	}
}

func TestOrderItemsTableRequiresPositiveQuantity(t *testing.T) {
	content := readMigration(t, "00008_create_order_items_table.sql")

	if !strings.Contains(content, "CHECK (quantity > 0)") {
		t.Error("Order items table missing positive quantity check")
	}
}
