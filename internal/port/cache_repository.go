package port

import "context"

// CacheRepository mirrors derived stock snapshots into a fast read-side
// store. It is advisory: the database snapshot stays authoritative and
// callers treat cache failures as non-fatal.
type CacheRepository interface {
	// SetStock stores the latest derived quantity for a variant.
	SetStock(ctx context.Context, variantID int64, quantity int) error

	// GetStock returns the cached quantity and whether a value was present.
	GetStock(ctx context.Context, variantID int64) (int, bool, error)

	// DeleteStock drops the cached entry, forcing readers back to the database.
	DeleteStock(ctx context.Context, variantID int64) error
}
