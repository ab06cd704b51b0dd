// Package service holds the query and mutation services that sit between
// the HTTP handlers and the repositories.  Reads never write; every write
// runs in exactly one transaction that is committed or rolled back before
// the call returns.
package service

import (
	"context"
	"time"

	"github.com/PA55ION/fyyur/internal/queue"
	"github.com/PA55ION/fyyur/internal/repository"
)

// Error taxonomy re-exported for callers that only depend on this package.
var (
	ErrNotFound            = repository.ErrNotFound
	ErrConstraintViolation = repository.ErrConstraintViolation
	ErrConflict            = repository.ErrConflict
)

// Clock returns the reference instant used to split past and upcoming shows.
type Clock func() time.Time

// SystemClock is the wall clock in UTC; stored start times are UTC as well.
func SystemClock() time.Time { return time.Now().UTC() }

// EventPublisher receives domain events after a mutation commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// DisplayTimeLayout formats show start times for listings,
// e.g. "Tuesday May 21 2019 09:30 PM".
const DisplayTimeLayout = "Monday January 02 2006 03:04 PM"

func formatStart(t time.Time) string {
	return t.Format(DisplayTimeLayout)
}
