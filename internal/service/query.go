package service

import (
	"cmp"
	"context"
	"database/sql"
	"slices"

	"github.com/PA55ION/fyyur/internal/model"
	"github.com/PA55ION/fyyur/internal/repository"
)

// VenueSummary is one venue inside a location group.
type VenueSummary struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	NumUpcomingShows int    `json:"num_upcoming_shows"`
}

// LocationGroup collects the venues sharing a (city, state) pair.
type LocationGroup struct {
	City   string         `json:"city"`
	State  string         `json:"state"`
	Venues []VenueSummary `json:"venues"`
}

// SearchResult is the response of a name search.
type SearchResult struct {
	Count int                  `json:"count"`
	Data  []repository.NameRef `json:"data"`
}

// ShowArtist is a show on a venue page.
type ShowArtist struct {
	ArtistID        int64   `json:"artist_id"`
	ArtistName      string  `json:"artist_name"`
	ArtistImageLink *string `json:"artist_image_link"`
	StartTime       string  `json:"start_time"`
}

// ShowVenue is a show on an artist page.
type ShowVenue struct {
	VenueID        int64   `json:"venue_id"`
	VenueName      string  `json:"venue_name"`
	VenueImageLink *string `json:"venue_image_link"`
	StartTime      string  `json:"start_time"`
}

// VenueDetail is the full venue projection with its shows split into past
// and upcoming.
type VenueDetail struct {
	model.Venue
	PastShows          []ShowArtist `json:"past_shows"`
	UpcomingShows      []ShowArtist `json:"upcoming_shows"`
	PastShowsCount     int          `json:"past_shows_count"`
	UpcomingShowsCount int          `json:"upcoming_shows_count"`
}

// ArtistDetail is the full artist projection with its shows split into
// past and upcoming.
type ArtistDetail struct {
	model.Artist
	PastShows          []ShowVenue `json:"past_shows"`
	UpcomingShows      []ShowVenue `json:"upcoming_shows"`
	PastShowsCount     int         `json:"past_shows_count"`
	UpcomingShowsCount int         `json:"upcoming_shows_count"`
}

// ShowListing is one row of the flattened show listing.
type ShowListing struct {
	VenueID         int64   `json:"venue_id"`
	VenueName       string  `json:"venue_name"`
	ArtistID        int64   `json:"artist_id"`
	ArtistName      string  `json:"artist_name"`
	ArtistImageLink *string `json:"artist_image_link"`
	StartTime       string  `json:"start_time"`
}

// Overview holds the totals shown on the home page.
type Overview struct {
	Venues  int `json:"venues"`
	Artists int `json:"artists"`
	Shows   int `json:"shows"`
}

// QueryService implements the read side.
type QueryService struct {
	venues  *repository.VenueRepo
	artists *repository.ArtistRepo
	shows   *repository.ShowRepo
	now     Clock
}

// NewQueryService constructs a QueryService.  A nil clock means SystemClock.
func NewQueryService(db *sql.DB, now Clock) *QueryService {
	if now == nil {
		now = SystemClock
	}
	return &QueryService{
		venues:  repository.NewVenueRepo(db),
		artists: repository.NewArtistRepo(db),
		shows:   repository.NewShowRepo(db),
		now:     now,
	}
}

// Overview returns entity totals.
func (s *QueryService) Overview(ctx context.Context) (Overview, error) {
	var (
		o   Overview
		err error
	)
	if o.Venues, err = s.venues.Count(ctx); err != nil {
		return o, err
	}
	if o.Artists, err = s.artists.Count(ctx); err != nil {
		return o, err
	}
	o.Shows, err = s.shows.CountAll(ctx)
	return o, err
}

// ListVenuesGroupedByLocation groups every venue by (city, state).  Groups
// are ordered by state then city and venues by id.  NumUpcomingShows
// counts shows starting strictly after now.
func (s *QueryService) ListVenuesGroupedByLocation(ctx context.Context) ([]LocationGroup, error) {
	venues, err := s.venues.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	shows, err := s.shows.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	upcoming := make(map[int64]int)
	for _, sh := range shows {
		if sh.IsUpcoming(now) {
			upcoming[sh.VenueID]++
		}
	}
	return groupByLocation(venues, upcoming), nil
}

// groupByLocation buckets venues by their exact (city, state) pair.  The
// input order is not trusted: a case-insensitive collation may interleave
// "Detroit" and "detroit" rows.
func groupByLocation(venues []*model.Venue, upcoming map[int64]int) []LocationGroup {
	type location struct{ city, state string }
	index := make(map[location]int)
	groups := []LocationGroup{}
	for _, v := range venues {
		key := location{v.City, v.State}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, LocationGroup{City: v.City, State: v.State})
		}
		groups[i].Venues = append(groups[i].Venues, VenueSummary{
			ID:               v.ID,
			Name:             v.Name,
			NumUpcomingShows: upcoming[v.ID],
		})
	}
	slices.SortStableFunc(groups, func(a, b LocationGroup) int {
		return cmp.Or(cmp.Compare(a.State, b.State), cmp.Compare(a.City, b.City))
	})
	for _, g := range groups {
		slices.SortFunc(g.Venues, func(a, b VenueSummary) int { return cmp.Compare(a.ID, b.ID) })
	}
	return groups
}

// SearchVenuesByName matches venue names case-insensitively by substring.
// An empty term matches every venue.
func (s *QueryService) SearchVenuesByName(ctx context.Context, term string) (SearchResult, error) {
	data, err := s.venues.SearchByName(ctx, term)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Count: len(data), Data: data}, nil
}

// SearchArtistsByName matches artist names case-insensitively by substring.
func (s *QueryService) SearchArtistsByName(ctx context.Context, term string) (SearchResult, error) {
	data, err := s.artists.SearchByName(ctx, term)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Count: len(data), Data: data}, nil
}

// ListArtists returns every artist ordered by id.
func (s *QueryService) ListArtists(ctx context.Context) ([]repository.NameRef, error) {
	return s.artists.List(ctx)
}

// GetVenue returns the stored venue, used to prefill the edit form.
func (s *QueryService) GetVenue(ctx context.Context, id int64) (*model.Venue, error) {
	return s.venues.GetByID(ctx, id)
}

// GetArtist returns the stored artist, used to prefill the edit form.
func (s *QueryService) GetArtist(ctx context.Context, id int64) (*model.Artist, error) {
	return s.artists.GetByID(ctx, id)
}

// GetVenueDetail returns a venue with its past and upcoming shows.  Both
// lists are ordered by start time; a show starting exactly now is in
// neither.
func (s *QueryService) GetVenueDetail(ctx context.Context, id int64) (*VenueDetail, error) {
	v, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.shows.ListByVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	d := &VenueDetail{Venue: *v, PastShows: []ShowArtist{}, UpcomingShows: []ShowArtist{}}
	for _, r := range rows {
		sh := model.Show{StartTime: r.StartTime}
		item := ShowArtist{
			ArtistID:        r.ArtistID,
			ArtistName:      r.ArtistName,
			ArtistImageLink: r.ArtistImageLink,
			StartTime:       formatStart(r.StartTime),
		}
		switch {
		case sh.IsPast(now):
			d.PastShows = append(d.PastShows, item)
		case sh.IsUpcoming(now):
			d.UpcomingShows = append(d.UpcomingShows, item)
		}
	}
	d.PastShowsCount = len(d.PastShows)
	d.UpcomingShowsCount = len(d.UpcomingShows)
	return d, nil
}

// GetArtistDetail returns an artist with the venues of its past and
// upcoming shows, partitioned the same way as GetVenueDetail.
func (s *QueryService) GetArtistDetail(ctx context.Context, id int64) (*ArtistDetail, error) {
	a, err := s.artists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.shows.ListByArtist(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	d := &ArtistDetail{Artist: *a, PastShows: []ShowVenue{}, UpcomingShows: []ShowVenue{}}
	for _, r := range rows {
		sh := model.Show{StartTime: r.StartTime}
		item := ShowVenue{
			VenueID:        r.VenueID,
			VenueName:      r.VenueName,
			VenueImageLink: r.VenueImageLink,
			StartTime:      formatStart(r.StartTime),
		}
		switch {
		case sh.IsPast(now):
			d.PastShows = append(d.PastShows, item)
		case sh.IsUpcoming(now):
			d.UpcomingShows = append(d.UpcomingShows, item)
		}
	}
	d.PastShowsCount = len(d.PastShows)
	d.UpcomingShowsCount = len(d.UpcomingShows)
	return d, nil
}

// ListAllShows returns every show joined with venue and artist names,
// ordered by start time, without past/upcoming filtering.
func (s *QueryService) ListAllShows(ctx context.Context) ([]ShowListing, error) {
	rows, err := s.shows.ListDetailed(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ShowListing, 0, len(rows))
	for _, r := range rows {
		out = append(out, ShowListing{
			VenueID:         r.VenueID,
			VenueName:       r.VenueName,
			ArtistID:        r.ArtistID,
			ArtistName:      r.ArtistName,
			ArtistImageLink: r.ArtistImageLink,
			StartTime:       formatStart(r.StartTime),
		})
	}
	return out, nil
}
