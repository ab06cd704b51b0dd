// Package repository contains data access logic for Show domain operations.
// A show links one artist to one venue at a start time; the joined row
// types below carry the names needed by listings so callers never issue
// per-row lookups.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/PA55ION/fyyur/internal/model"
)

// ArtistShowRow is a show at a venue joined with its artist.
type ArtistShowRow struct {
	ShowID          int64
	ArtistID        int64
	ArtistName      string
	ArtistImageLink *string
	StartTime       time.Time
}

// VenueShowRow is a show by an artist joined with its venue.
type VenueShowRow struct {
	ShowID         int64
	VenueID        int64
	VenueName      string
	VenueImageLink *string
	StartTime      time.Time
}

// ShowListingRow is a show joined with both its venue and artist.
type ShowListingRow struct {
	ShowID          int64
	VenueID         int64
	VenueName       string
	ArtistID        int64
	ArtistName      string
	ArtistImageLink *string
	StartTime       time.Time
}

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db DBTX
}

// NewShowRepo constructs a ShowRepo with the given handle.
func NewShowRepo(db DBTX) *ShowRepo {
	return &ShowRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *ShowRepo) WithTx(tx *sql.Tx) *ShowRepo {
	return &ShowRepo{db: tx}
}

// Create inserts a new show and assigns the generated ID.  The start time
// is stored in UTC.  A missing venue or artist surfaces as
// ErrConstraintViolation from the foreign keys.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (venue_id, artist_id, start_time) VALUES (?, ?, ?)`
	s.StartTime = s.StartTime.UTC()
	res, err := r.db.ExecContext(ctx, q, s.VenueID, s.ArtistID, s.StartTime)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// CountAll returns the number of shows.
func (r *ShowRepo) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows`).Scan(&n)
	return n, err
}

// List returns every show without joins, ordered by start time.
func (r *ShowRepo) List(ctx context.Context) ([]model.Show, error) {
	const q = `SELECT id, venue_id, artist_id, start_time FROM shows ORDER BY start_time, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Show
	for rows.Next() {
		var s model.Show
		if err := rows.Scan(&s.ID, &s.VenueID, &s.ArtistID, &s.StartTime); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByVenue returns the shows hosted by a venue joined with their
// artists, ordered by start time ascending.
func (r *ShowRepo) ListByVenue(ctx context.Context, venueID int64) ([]ArtistShowRow, error) {
	const q = `SELECT s.id, a.id, a.name, a.image_link, s.start_time
	           FROM shows s
	           JOIN artists a ON a.id = s.artist_id
	           WHERE s.venue_id = ?
	           ORDER BY s.start_time ASC, s.id ASC`
	rows, err := r.db.QueryContext(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ArtistShowRow
	for rows.Next() {
		var (
			row   ArtistShowRow
			image sql.NullString
		)
		if err := rows.Scan(&row.ShowID, &row.ArtistID, &row.ArtistName, &image, &row.StartTime); err != nil {
			return nil, err
		}
		row.ArtistImageLink = fromNull(image)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByArtist returns the shows of an artist joined with their venues,
// ordered by start time ascending.
func (r *ShowRepo) ListByArtist(ctx context.Context, artistID int64) ([]VenueShowRow, error) {
	const q = `SELECT s.id, v.id, v.name, v.image_link, s.start_time
	           FROM shows s
	           JOIN venues v ON v.id = s.venue_id
	           WHERE s.artist_id = ?
	           ORDER BY s.start_time ASC, s.id ASC`
	rows, err := r.db.QueryContext(ctx, q, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []VenueShowRow
	for rows.Next() {
		var (
			row   VenueShowRow
			image sql.NullString
		)
		if err := rows.Scan(&row.ShowID, &row.VenueID, &row.VenueName, &image, &row.StartTime); err != nil {
			return nil, err
		}
		row.VenueImageLink = fromNull(image)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDetailed returns every show joined with venue and artist names,
// ordered by start time ascending.
func (r *ShowRepo) ListDetailed(ctx context.Context) ([]ShowListingRow, error) {
	const q = `SELECT s.id, v.id, v.name, a.id, a.name, a.image_link, s.start_time
	           FROM shows s
	           JOIN artists a ON a.id = s.artist_id
	           JOIN venues v  ON v.id = s.venue_id
	           ORDER BY s.start_time ASC, s.id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ShowListingRow
	for rows.Next() {
		var (
			row   ShowListingRow
			image sql.NullString
		)
		if err := rows.Scan(&row.ShowID, &row.VenueID, &row.VenueName, &row.ArtistID,
			&row.ArtistName, &image, &row.StartTime); err != nil {
			return nil, err
		}
		row.ArtistImageLink = fromNull(image)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
