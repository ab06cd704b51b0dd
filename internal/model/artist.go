package model

// Artist represents a performer who can be booked into shows.  Unlike a
// venue an artist has no street address and the phone number is required.
// SeekingVenue defaults to true for new artists.
type Artist struct {
	ID                 int64   `json:"id"`                  // artists.id
	Name               string  `json:"name"`                // artists.name
	City               string  `json:"city"`                // artists.city
	State              string  `json:"state"`               // artists.state
	Phone              string  `json:"phone"`               // artists.phone
	ImageLink          *string `json:"image_link"`          // artists.image_link (nullable)
	FacebookLink       *string `json:"facebook_link"`       // artists.facebook_link (nullable)
	Website            *string `json:"website"`             // artists.website (nullable)
	Genres             Genres  `json:"genres"`              // artists.genres
	SeekingVenue       bool    `json:"seeking_venue"`       // artists.seeking_venue
	SeekingDescription *string `json:"seeking_description"` // artists.seeking_description (nullable)
}
