package domain

import "time"

// Document is an immutable inventory event header. Once posted it contributes
// to stock until it is deleted, which reverses the contribution.
type Document struct {
	ID        int64
	DocType   DocType
	DocDate   time.Time
	Note      string
	CreatedAt time.Time
	Items     []DocumentItem
}

// DocumentItem is one ledger row. Quantity is stored as entered; the sign of
// its stock contribution comes from the document type.
type DocumentItem struct {
	ID        int64
	DocID     int64
	VariantID int64
	Quantity  int
	UnitPrice *int64 // cents; nil when not captured

	// Display fields filled by joined reads, never written back.
	ProductName string
	VariantName string
}

// Subtotal is quantity times unit price, zero when no price was captured.
func (i DocumentItem) Subtotal() int64 {
	if i.UnitPrice == nil {
		return 0
	}
	return int64(i.Quantity) * *i.UnitPrice
}

// TotalAmount sums the item subtotals.
func (d Document) TotalAmount() int64 {
	var total int64
	for _, item := range d.Items {
		total += item.Subtotal()
	}
	return total
}

// Validate checks format constraints only. Stock sufficiency is the inventory
// service's concern.
func (d Document) Validate() error {
	if !d.DocType.Valid() {
		return &ValidationError{Field: "doc_type", Reason: "must be one of INBOUND, OUTBOUND, ADJUST"}
	}
	if d.DocDate.IsZero() {
		return &ValidationError{Field: "doc_date", Reason: "must be set"}
	}
	if len(d.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "document must contain at least one item"}
	}
	for _, item := range d.Items {
		if item.VariantID == 0 {
			return &ValidationError{Field: "variant_id", Reason: "must reference a variant"}
		}
		if item.Quantity == 0 {
			return &ValidationError{Field: "quantity", Reason: "must not be zero"}
		}
		if d.DocType != DocTypeAdjust && item.Quantity < 0 {
			return &ValidationError{Field: "quantity", Reason: "must be positive for " + string(d.DocType)}
		}
		if item.UnitPrice != nil && *item.UnitPrice < 0 {
			return &ValidationError{Field: "unit_price", Reason: "must not be negative"}
		}
	}
	return nil
}

// StockImpact aggregates the signed ledger contribution per variant.
func (d Document) StockImpact() map[int64]int {
	impact := make(map[int64]int, len(d.Items))
	for _, item := range d.Items {
		impact[item.VariantID] += d.DocType.SignedDelta(item.Quantity)
	}
	return impact
}
