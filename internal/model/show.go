package model

import "time"

// Show is a scheduled booking of one artist at one venue.  It bridges the
// many-to-many relationship between venues and artists and carries the
// start time as payload.  Shows are never updated; they disappear only
// when the database row is removed explicitly.
//
// Fields:
//  ID        – surrogate primary key.
//  VenueID   – venue hosting the show (foreign key, not unique).
//  ArtistID  – artist performing (foreign key, not unique).
//  StartTime – when the show begins, stored in UTC.
type Show struct {
	ID        int64     `json:"id"`         // shows.id
	VenueID   int64     `json:"venue_id"`   // shows.venue_id
	ArtistID  int64     `json:"artist_id"`  // shows.artist_id
	StartTime time.Time `json:"start_time"` // shows.start_time
}

// IsPast reports whether the show started strictly before now.
func (s Show) IsPast(now time.Time) bool {
	return s.StartTime.Before(now)
}

// IsUpcoming reports whether the show starts strictly after now.  A show
// starting exactly at now is neither past nor upcoming.
func (s Show) IsUpcoming(now time.Time) bool {
	return s.StartTime.After(now)
}
