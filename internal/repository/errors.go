// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver-specific errors.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a referenced row does not exist.
// Handlers translate it into a 404 page.
var ErrNotFound = errors.New("not found")

// ErrConstraintViolation is returned when a write breaks a foreign-key or
// required-field rule, e.g. creating a show for a missing artist.
var ErrConstraintViolation = errors.New("constraint violation")

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as deleting a venue that still has shows.
var ErrConflict = errors.New("conflict")

// ErrVenueNotFound and ErrArtistNotFound wrap ErrNotFound so callers may
// match either the specific or the generic sentinel.
var (
	ErrVenueNotFound  = fmt.Errorf("venue %w", ErrNotFound)
	ErrArtistNotFound = fmt.Errorf("artist %w", ErrNotFound)
)

// MySQL server error numbers used for classification.
const (
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
	mysqlBadNull         = 1048
	mysqlNoDefault       = 1364
)

// classify maps driver errors onto the sentinel taxonomy.  Errors that do
// not correspond to a known constraint are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlRowIsReferenced:
			return fmt.Errorf("%w: %v", ErrConflict, err)
		case mysqlNoReferencedRow, mysqlBadNull, mysqlNoDefault:
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		return err
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
	}
	return err
}
