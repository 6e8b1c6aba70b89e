package storage

import (
	"context"
	"testing"

	"github.com/rl1809/wms/internal/core/domain"
	"github.com/rl1809/wms/internal/port"
)

func TestProductRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := mustCreateProduct(t, db)
	if p.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	found, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != p.Name || found.Brand != p.Brand || found.BasePrice != p.BasePrice {
		t.Errorf("GetByID() = %+v, want %+v", found, p)
	}
	if found.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to round-trip")
	}

	t.Run("missing product", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		if !domain.IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestProductRepository_ListAndSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	for _, p := range []*domain.Product{
		{Name: "Air Zoom", Brand: "Nike", Category: "shoes"},
		{Name: "Ultraboost", Brand: "Adidas", Category: "shoes"},
		{Name: "Hoodie", Brand: "Nike", Category: "apparel"},
	} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.List(ctx, port.ProductFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}
	// newest first
	if all[0].Name != "Hoodie" {
		t.Errorf("expected newest first, got %q", all[0].Name)
	}

	nike, err := repo.List(ctx, port.ProductFilter{Keyword: "Nike"})
	if err != nil {
		t.Fatalf("List(Nike) error = %v", err)
	}
	if len(nike) != 2 {
		t.Errorf("expected 2 Nike products, got %d", len(nike))
	}

	none, err := repo.List(ctx, port.ProductFilter{Keyword: "Puma"})
	if err != nil {
		t.Fatalf("List(Puma) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}
}

func TestProductRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := mustCreateProduct(t, db)
	p.Name = "Air Zoom 2"
	p.BasePrice = 13999
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "Air Zoom 2" || found.BasePrice != 13999 {
		t.Errorf("update not persisted: %+v", found)
	}

	t.Run("missing product", func(t *testing.T) {
		err := repo.Update(ctx, &domain.Product{ID: 9999, Name: "ghost"})
		if !domain.IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestProductRepository_DeleteCascadesVariants(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := mustCreateProduct(t, db)
	mustCreateVariant(t, db, p.ID, "SKU-A")
	mustCreateVariant(t, db, p.ID, "SKU-B")

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n := countRows(t, db, "variants"); n != 0 {
		t.Errorf("expected variants to cascade, %d left", n)
	}

	t.Run("missing product", func(t *testing.T) {
		if err := repo.Delete(ctx, 9999); !domain.IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}
