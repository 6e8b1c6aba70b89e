package storage

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/rl1809/wms/internal/core/domain"
)

// translateErr maps a driver fault onto the domain taxonomy so no sqlite
// vocabulary escapes this package. Callers handle uniqueness and not-found
// cases themselves where a more specific error applies.
func translateErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func isForeignKeyViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
