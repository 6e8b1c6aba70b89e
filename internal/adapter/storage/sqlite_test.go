package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rl1809/wms/internal/core/domain"
)

// setupTestDB opens an in-memory database with the full schema applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return db
}

func mustCreateProduct(t *testing.T, db *sql.DB) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:      "Air Zoom",
		Brand:     "Nike",
		Category:  "shoes",
		BasePrice: 12999,
	}
	if err := NewProductRepository(db).Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return p
}

func mustCreateVariant(t *testing.T, db *sql.DB, productID int64, sku string) *domain.Variant {
	t.Helper()
	v := &domain.Variant{
		ProductID:   productID,
		Size:        "US 9.5",
		Color:       "Red",
		SKU:         sku,
		SafetyStock: domain.DefaultSafetyStock,
	}
	if err := NewVariantRepository(db).Create(context.Background(), v); err != nil {
		t.Fatalf("failed to create variant: %v", err)
	}
	return v
}

func mustCreateDocument(t *testing.T, db *sql.DB, docType domain.DocType, items ...domain.DocumentItem) *domain.Document {
	t.Helper()
	d := &domain.Document{
		DocType: docType,
		DocDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Items:   items,
	}
	if err := NewDocumentRepository(db).Create(context.Background(), d); err != nil {
		t.Fatalf("failed to create document: %v", err)
	}
	return d
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
