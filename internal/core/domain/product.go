package domain

import "time"

// Product is a catalog style, e.g. one shoe model. It is never stocked
// directly; stock attaches to its variants.
type Product struct {
	ID          int64
	Name        string
	Brand       string
	Category    string
	BasePrice   int64 // fixed-point, cents
	Description string
	CreatedAt   time.Time
}

func (p Product) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.BasePrice < 0 {
		return &ValidationError{Field: "base_price", Reason: "must not be negative"}
	}
	return nil
}
