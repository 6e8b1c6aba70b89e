package domain

// DefaultSafetyStock applies when a variant is created without an explicit
// threshold.
const DefaultSafetyStock = 5

// Variant is the concrete stock-keeping unit (one size/color of a product).
//
// StockQty is a cached snapshot of the value derived from the document
// ledger, not independent state. Only the ledger engine writes it; every
// other update path goes through a document.
type Variant struct {
	ID          int64
	ProductID   int64
	Size        string
	Color       string
	SKU         string // empty means not assigned; unique across the catalog otherwise
	StockQty    int
	SafetyStock int
}

// DisplayName is the size/color label used in listings and error messages.
func (v Variant) DisplayName() string {
	return v.Size + " / " + v.Color
}

// BelowSafetyStock reports whether the snapshot is strictly under the
// threshold.
func (v Variant) BelowSafetyStock() bool {
	return v.StockQty < v.SafetyStock
}

func (v Variant) Validate() error {
	if v.ProductID == 0 {
		return &ValidationError{Field: "product_id", Reason: "must reference a product"}
	}
	if v.SafetyStock < 0 {
		return &ValidationError{Field: "safety_stock", Reason: "must not be negative"}
	}
	return nil
}
