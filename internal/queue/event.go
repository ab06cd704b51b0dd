// Package queue defines the domain events published over the message
// broker and the RabbitMQ publisher and consumer that carry them.
package queue

import "time"

// EventsQueue is the durable queue every domain event is published to.
const EventsQueue = "fyyur.events"

// Event types.
const (
	VenueCreated  = "venue.created"
	VenueUpdated  = "venue.updated"
	VenueDeleted  = "venue.deleted"
	ArtistCreated = "artist.created"
	ArtistUpdated = "artist.updated"
	ArtistDeleted = "artist.deleted"
	ShowCreated   = "show.created"
)

// Event is published after a mutation commits.  It carries enough
// information for downstream consumers to log or notify without querying
// the primary database.  VenueID, ArtistID and StartTime are only set for
// show events.
type Event struct {
	Type       string     `json:"type"`
	EntityID   int64      `json:"entity_id"`
	Name       string     `json:"name,omitempty"`
	VenueID    int64      `json:"venue_id,omitempty"`
	ArtistID   int64      `json:"artist_id,omitempty"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}
