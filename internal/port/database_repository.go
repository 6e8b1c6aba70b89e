// Package port declares the persistence contracts the core depends on.
// Implementations live under internal/adapter and are injected at startup;
// nothing in here references a storage technology.
package port

import (
	"context"
	"time"

	"github.com/rl1809/wms/internal/core/domain"
)

// ProductFilter narrows product listings. The zero value lists everything.
type ProductFilter struct {
	// Keyword matches as a substring over name, brand, category and
	// description.
	Keyword string
}

// DocumentFilter narrows document listings. Zero fields are unbounded.
type DocumentFilter struct {
	DocType  domain.DocType
	DateFrom time.Time
	DateTo   time.Time
}

type ProductRepository interface {
	// Create persists the product and assigns its ID.
	Create(ctx context.Context, p *domain.Product) error

	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)

	Update(ctx context.Context, p *domain.Product) error

	// Delete removes the product and cascades to its variants.
	Delete(ctx context.Context, id int64) error
}

type VariantRepository interface {
	// Create persists the variant and assigns its ID. A taken SKU fails with
	// DuplicateEntityError.
	Create(ctx context.Context, v *domain.Variant) error

	GetByID(ctx context.Context, id int64) (*domain.Variant, error)

	GetBySKU(ctx context.Context, sku string) (*domain.Variant, error)

	ListByProduct(ctx context.Context, productID int64) ([]domain.Variant, error)

	// ListAll returns every variant in the catalog, used by maintenance
	// sweeps over the whole stock table.
	ListAll(ctx context.Context) ([]domain.Variant, error)

	// ListLowStock returns variants whose snapshot is strictly below their
	// safety threshold.
	ListLowStock(ctx context.Context) ([]domain.Variant, error)

	// Update writes size, color, SKU and safety stock. It never touches
	// stock_qty; that column belongs to the ledger engine.
	Update(ctx context.Context, v *domain.Variant) error

	// Delete fails with BusinessRuleViolation while document items still
	// reference the variant.
	Delete(ctx context.Context, id int64) error

	// ApplyStockDelta adjusts the cached snapshot in place and returns the
	// new quantity. Callers pair it with a posted document.
	ApplyStockDelta(ctx context.Context, id int64, delta int) (int, error)

	// SetStock overwrites the cached snapshot. Reserved for the ledger
	// engine's reinitialize and reconcile paths.
	SetStock(ctx context.Context, id int64, quantity int) error
}

type DocumentRepository interface {
	// Create persists the header and every item as one transaction; on any
	// failure nothing is written.
	Create(ctx context.Context, d *domain.Document) error

	// GetByID returns the document with its items, including joined display
	// fields.
	GetByID(ctx context.Context, id int64) (*domain.Document, error)

	// List returns matching headers without items.
	List(ctx context.Context, filter DocumentFilter) ([]domain.Document, error)

	// Delete removes the document; its items cascade.
	Delete(ctx context.Context, id int64) error

	// SumSignedQuantity derives current stock for a variant from all posted
	// items, applying the document-type sign convention. A variant with no
	// items sums to zero.
	SumSignedQuantity(ctx context.Context, variantID int64) (int, error)
}
