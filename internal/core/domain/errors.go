// Package domain defines the warehouse entities and the typed error taxonomy
// shared across layers.
package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input, named by the offending field. It
// is raised before any persistence attempt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// OutOfStockError is the OUTBOUND pre-check failure. The whole document is
// aborted; no rows are written.
type OutOfStockError struct {
	VariantID int64
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %d: requested %d, available %d",
		e.VariantID, e.Requested, e.Available)
}

// Shortfall is the quantity that could not be covered.
func (e *OutOfStockError) Shortfall() int {
	return e.Requested - e.Available
}

// DuplicateEntityError reports a uniqueness violation, e.g. an SKU that is
// already taken.
type DuplicateEntityError struct {
	Entity string
	Key    string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("duplicate %s: %q already exists", e.Entity, e.Key)
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%d", e.Entity, e.ID)
}

// PersistenceError wraps a storage fault without leaking the storage
// technology's error vocabulary above the adapter boundary.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// BusinessRuleViolation covers domain-rule failures with no more specific
// kind, e.g. deleting a variant that documents still reference.
type BusinessRuleViolation struct {
	Rule   string
	Detail string
}

func (e *BusinessRuleViolation) Error() string {
	return fmt.Sprintf("business rule violated (%s): %s", e.Rule, e.Detail)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsOutOfStock reports whether err is an OutOfStockError.
func IsOutOfStock(err error) bool {
	var target *OutOfStockError
	return errors.As(err, &target)
}

// IsDuplicate reports whether err is a DuplicateEntityError.
func IsDuplicate(err error) bool {
	var target *DuplicateEntityError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsPersistence reports whether err is a PersistenceError.
func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}

// IsBusinessRule reports whether err is a BusinessRuleViolation.
func IsBusinessRule(err error) bool {
	var target *BusinessRuleViolation
	return errors.As(err, &target)
}
