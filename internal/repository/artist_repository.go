package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/PA55ION/fyyur/internal/model"
)

// ArtistRepo encapsulates all database queries related to artists.
type ArtistRepo struct {
	db DBTX
}

// NewArtistRepo constructs an ArtistRepo with the provided handle.
func NewArtistRepo(db DBTX) *ArtistRepo {
	return &ArtistRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *ArtistRepo) WithTx(tx *sql.Tx) *ArtistRepo {
	return &ArtistRepo{db: tx}
}

const artistColumns = `id, name, city, state, phone, image_link, facebook_link, website,
	genres, seeking_venue, seeking_description`

func scanArtist(s scanner) (*model.Artist, error) {
	var (
		a                                 model.Artist
		image, facebook, website, seeking sql.NullString
	)
	if err := s.Scan(&a.ID, &a.Name, &a.City, &a.State, &a.Phone, &image, &facebook, &website,
		&a.Genres, &a.SeekingVenue, &seeking); err != nil {
		return nil, err
	}
	a.ImageLink = fromNull(image)
	a.FacebookLink = fromNull(facebook)
	a.Website = fromNull(website)
	a.SeekingDescription = fromNull(seeking)
	return &a, nil
}

// Create inserts a new artist and assigns the generated ID.
func (r *ArtistRepo) Create(ctx context.Context, a *model.Artist) error {
	const q = `INSERT INTO artists (name, city, state, phone, image_link, facebook_link, website,
	           genres, seeking_venue, seeking_description)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.Name, a.City, a.State, a.Phone, nullable(a.ImageLink),
		nullable(a.FacebookLink), nullable(a.Website), a.Genres, a.SeekingVenue,
		nullable(a.SeekingDescription))
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// GetByID fetches an artist.  It returns ErrArtistNotFound if no row exists.
func (r *ArtistRepo) GetByID(ctx context.Context, id int64) (*model.Artist, error) {
	q := `SELECT ` + artistColumns + ` FROM artists WHERE id = ?`
	a, err := scanArtist(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArtistNotFound
		}
		return nil, err
	}
	return a, nil
}

// Count returns the number of artists.
func (r *ArtistRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artists`).Scan(&n)
	return n, err
}

// Exists reports whether an artist with the given ID is present.
func (r *ArtistRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM artists WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// List returns all artists ordered by id.
func (r *ArtistRepo) List(ctx context.Context) ([]NameRef, error) {
	return queryNameRefs(ctx, r.db, `SELECT id, name FROM artists ORDER BY id`)
}

// SearchByName returns artists whose name contains term, ignoring case.
func (r *ArtistRepo) SearchByName(ctx context.Context, term string) ([]NameRef, error) {
	const q = `SELECT id, name FROM artists WHERE LOWER(name) LIKE LOWER(?) ORDER BY id`
	return queryNameRefs(ctx, r.db, q, "%"+term+"%")
}

// Update overwrites every mutable column of the artist.
func (r *ArtistRepo) Update(ctx context.Context, a *model.Artist) error {
	ok, err := r.Exists(ctx, a.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrArtistNotFound
	}
	const q = `UPDATE artists
	           SET name = ?, city = ?, state = ?, phone = ?, image_link = ?, facebook_link = ?,
	               website = ?, genres = ?, seeking_venue = ?, seeking_description = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q, a.Name, a.City, a.State, a.Phone, nullable(a.ImageLink),
		nullable(a.FacebookLink), nullable(a.Website), a.Genres, a.SeekingVenue,
		nullable(a.SeekingDescription), a.ID)
	return classify(err)
}

// Delete removes an artist that has no shows.  ErrConflict is returned
// while shows still reference the artist.
func (r *ArtistRepo) Delete(ctx context.Context, id int64) error {
	ok, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrArtistNotFound
	}
	var shows int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows WHERE artist_id = ?`, id).Scan(&shows); err != nil {
		return err
	}
	if shows > 0 {
		return ErrConflict
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM artists WHERE id = ?`, id); err != nil {
		return classifyDelete(err)
	}
	return nil
}
