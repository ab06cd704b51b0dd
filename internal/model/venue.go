package model

// Venue represents a bookable physical location that can host shows.
// Name, city and state do not need to be unique; two venues with the same
// name in the same city are allowed.  This struct corresponds to a row in
// the `venues` table.
//
// Fields:
//  ID                 – primary key identifier, assigned by the database.
//  Name               – display name of the venue.
//  City, State        – location used to group venues in listings.
//  Address            – street address.
//  Phone              – optional contact number.
//  ImageLink          – optional image URL (not validated).
//  FacebookLink       – optional Facebook page URL (not validated).
//  Website            – optional website URL (not validated).
//  Genres             – ordered list of genre tags.
//  SeekingTalent      – whether the venue is looking for artists.
//  SeekingDescription – free text, only set while SeekingTalent is true.
type Venue struct {
	ID                 int64   `json:"id"`                  // venues.id
	Name               string  `json:"name"`                // venues.name
	City               string  `json:"city"`                // venues.city
	State              string  `json:"state"`               // venues.state
	Address            string  `json:"address"`             // venues.address
	Phone              *string `json:"phone"`               // venues.phone (nullable)
	ImageLink          *string `json:"image_link"`          // venues.image_link (nullable)
	FacebookLink       *string `json:"facebook_link"`       // venues.facebook_link (nullable)
	Website            *string `json:"website"`             // venues.website (nullable)
	Genres             Genres  `json:"genres"`              // venues.genres
	SeekingTalent      bool    `json:"seeking_talent"`      // venues.seeking_talent
	SeekingDescription *string `json:"seeking_description"` // venues.seeking_description (nullable)
}
