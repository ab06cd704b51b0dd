// Package repository contains data access logic separated from HTTP handlers.
// This file defines the repository methods for venues. A venue is a
// location that hosts shows.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/PA55ION/fyyur/internal/model"
)

// NameRef is the (id, name) projection returned by listings and searches.
type NameRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// VenueRepo encapsulates all database queries related to venues.
type VenueRepo struct {
	db DBTX
}

// NewVenueRepo constructs a VenueRepo with the provided handle.
func NewVenueRepo(db DBTX) *VenueRepo {
	return &VenueRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *VenueRepo) WithTx(tx *sql.Tx) *VenueRepo {
	return &VenueRepo{db: tx}
}

const venueColumns = `id, name, city, state, address, phone, image_link, facebook_link,
	website, genres, seeking_talent, seeking_description`

func scanVenue(s scanner) (*model.Venue, error) {
	var (
		v                                        model.Venue
		phone, image, facebook, website, seeking sql.NullString
	)
	if err := s.Scan(&v.ID, &v.Name, &v.City, &v.State, &v.Address, &phone, &image, &facebook,
		&website, &v.Genres, &v.SeekingTalent, &seeking); err != nil {
		return nil, err
	}
	v.Phone = fromNull(phone)
	v.ImageLink = fromNull(image)
	v.FacebookLink = fromNull(facebook)
	v.Website = fromNull(website)
	v.SeekingDescription = fromNull(seeking)
	return &v, nil
}

// Create inserts a new venue.  On success the venue's ID field is
// populated with the auto-generated value.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const q = `INSERT INTO venues (name, city, state, address, phone, image_link, facebook_link,
	           website, genres, seeking_talent, seeking_description)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, v.Name, v.City, v.State, v.Address, nullable(v.Phone),
		nullable(v.ImageLink), nullable(v.FacebookLink), nullable(v.Website), v.Genres,
		v.SeekingTalent, nullable(v.SeekingDescription))
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = id
	return nil
}

// GetByID fetches a venue by its ID.  It returns ErrVenueNotFound if no
// row is found.
func (r *VenueRepo) GetByID(ctx context.Context, id int64) (*model.Venue, error) {
	q := `SELECT ` + venueColumns + ` FROM venues WHERE id = ?`
	v, err := scanVenue(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return v, nil
}

// Count returns the number of venues.
func (r *VenueRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&n)
	return n, err
}

// Exists reports whether a venue with the given ID is present.
func (r *VenueRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM venues WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ListAll returns every venue ordered by state, city and id, the order
// used by the grouped listing.
func (r *VenueRepo) ListAll(ctx context.Context) ([]*model.Venue, error) {
	q := `SELECT ` + venueColumns + ` FROM venues ORDER BY state, city, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchByName returns venues whose name contains term, ignoring case.
// SQL wildcards inside term are passed through unchanged.
func (r *VenueRepo) SearchByName(ctx context.Context, term string) ([]NameRef, error) {
	const q = `SELECT id, name FROM venues WHERE LOWER(name) LIKE LOWER(?) ORDER BY id`
	return queryNameRefs(ctx, r.db, q, "%"+term+"%")
}

// Update overwrites every mutable column of the venue.  It returns
// ErrVenueNotFound when the row does not exist.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	ok, err := r.Exists(ctx, v.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVenueNotFound
	}
	const q = `UPDATE venues
	           SET name = ?, city = ?, state = ?, address = ?, phone = ?, image_link = ?,
	               facebook_link = ?, website = ?, genres = ?, seeking_talent = ?,
	               seeking_description = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q, v.Name, v.City, v.State, v.Address, nullable(v.Phone),
		nullable(v.ImageLink), nullable(v.FacebookLink), nullable(v.Website), v.Genres,
		v.SeekingTalent, nullable(v.SeekingDescription), v.ID)
	return classify(err)
}

// Delete removes a venue.  If the venue does not exist ErrVenueNotFound is
// returned; if any show still references it ErrConflict is returned and
// nothing is deleted.
func (r *VenueRepo) Delete(ctx context.Context, id int64) error {
	ok, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVenueNotFound
	}
	var shows int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows WHERE venue_id = ?`, id).Scan(&shows); err != nil {
		return err
	}
	if shows > 0 {
		return ErrConflict
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id); err != nil {
		return classifyDelete(err)
	}
	return nil
}

func queryNameRefs(ctx context.Context, db DBTX, q string, args ...any) ([]NameRef, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []NameRef{}
	for rows.Next() {
		var n NameRef
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// classifyDelete treats any foreign-key failure on delete as a conflict
// with dependent rows.
func classifyDelete(err error) error {
	err = classify(err)
	if errors.Is(err, ErrConstraintViolation) {
		return ErrConflict
	}
	return err
}
