package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/PA55ION/fyyur/internal/database"
	"github.com/PA55ION/fyyur/internal/model"
	"github.com/PA55ION/fyyur/internal/queue"
)

var testNow = time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type fixture struct {
	db     *sql.DB
	query  *QueryService
	mutate *MutationService
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(database.Options{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "svc.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.MigrateUp(context.Background(), db, database.DriverSQLite)
	require.NoError(t, err)

	clock := func() time.Time { return testNow }
	events := &recordingPublisher{}
	m := NewMutationService(db, events, zap.NewNop())
	m.now = clock
	return &fixture{db: db, query: NewQueryService(db, clock), mutate: m, events: events}
}

func (f *fixture) venue(t *testing.T, name, city, state string) int64 {
	t.Helper()
	id, err := f.mutate.CreateVenue(context.Background(), VenueInput{Name: name, City: city, State: state, Address: "1 Main St"})
	require.NoError(t, err)
	return id
}

func (f *fixture) artist(t *testing.T, name string) int64 {
	t.Helper()
	id, err := f.mutate.CreateArtist(context.Background(), ArtistInput{Name: name, City: "Detroit", State: "MI", Phone: "555-1212"})
	require.NoError(t, err)
	return id
}

func (f *fixture) show(t *testing.T, venueID, artistID int64, at time.Time) {
	t.Helper()
	_, err := f.mutate.CreateShow(context.Background(), ShowInput{VenueID: venueID, ArtistID: artistID, StartTime: at})
	require.NoError(t, err)
}

func TestVenueDetailRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	in := VenueInput{
		Name: "The Musical Hop", City: "San Francisco", State: "CA", Address: "1015 Folsom Street",
		Phone: "123-123-1234", Website: "https://www.themusicalhop.com",
		FacebookLink: "https://www.facebook.com/TheMusicalHop", ImageLink: "https://img.example/hop.png",
		Genres:        []string{"Jazz", "Reggae", "Swing", "Classical", "Folk"},
		SeekingTalent: true, SeekingDescription: "We are on the lookout for a local artist.",
	}
	id, err := f.mutate.CreateVenue(ctx, in)
	require.NoError(t, err)

	d, err := f.query.GetVenueDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, d.ID)
	assert.Equal(t, in.Name, d.Name)
	assert.Equal(t, in.City, d.City)
	assert.Equal(t, in.State, d.State)
	assert.Equal(t, in.Address, d.Address)
	assert.Equal(t, in.Phone, *d.Phone)
	assert.Equal(t, in.Website, *d.Website)
	assert.Equal(t, in.FacebookLink, *d.FacebookLink)
	assert.Equal(t, in.ImageLink, *d.ImageLink)
	assert.Equal(t, model.Genres(in.Genres), d.Genres)
	assert.True(t, d.SeekingTalent)
	assert.Equal(t, in.SeekingDescription, *d.SeekingDescription)
	assert.Empty(t, d.PastShows)
	assert.Empty(t, d.UpcomingShows)
}

func TestSeekingDescriptionFollowsFlag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id, err := f.mutate.CreateVenue(ctx, VenueInput{
		Name: "Quiet", City: "A", State: "B", Address: "C",
		SeekingTalent: false, SeekingDescription: "ignored",
	})
	require.NoError(t, err)
	v, err := f.query.GetVenue(ctx, id)
	require.NoError(t, err)
	assert.False(t, v.SeekingTalent)
	assert.Nil(t, v.SeekingDescription)
	assert.Nil(t, v.Phone, "empty optional fields are stored as NULL")

	aid, err := f.mutate.CreateArtist(ctx, ArtistInput{
		Name: "Solo", City: "A", State: "B", Phone: "1",
		SeekingVenue: false, SeekingDescription: "ignored",
	})
	require.NoError(t, err)
	a, err := f.query.GetArtist(ctx, aid)
	require.NoError(t, err)
	assert.False(t, a.SeekingVenue)
	assert.Nil(t, a.SeekingDescription)
}

func TestCreateRejectsMissingRequiredFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.mutate.CreateVenue(ctx, VenueInput{Name: "  ", City: "A", State: "B", Address: "C"})
	assert.ErrorIs(t, err, ErrConstraintViolation)

	_, err = f.mutate.CreateArtist(ctx, ArtistInput{Name: "No Phone", City: "A", State: "B"})
	assert.ErrorIs(t, err, ErrConstraintViolation)

	o, err := f.query.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, Overview{}, o)
	assert.Empty(t, f.events.events)
}

func TestPastUpcomingPartition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.venue(t, "Venue", "Detroit", "MI")
	a := f.artist(t, "Artist")
	f.show(t, v, a, testNow.Add(-48*time.Hour))
	f.show(t, v, a, testNow.Add(-time.Hour))
	f.show(t, v, a, testNow)
	f.show(t, v, a, testNow.Add(24*time.Hour))

	vd, err := f.query.GetVenueDetail(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, 2, vd.PastShowsCount)
	assert.Equal(t, 1, vd.UpcomingShowsCount)
	assert.Len(t, vd.PastShows, 2)
	assert.Len(t, vd.UpcomingShows, 1)
	assert.Equal(t, testNow.Add(-48*time.Hour).Format(DisplayTimeLayout), vd.PastShows[0].StartTime)

	ad, err := f.query.GetArtistDetail(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 2, ad.PastShowsCount)
	assert.Equal(t, 1, ad.UpcomingShowsCount, "upcoming list is not multiplied by past shows")
	assert.Equal(t, "Venue", ad.UpcomingShows[0].VenueName)
}

func TestGroupedListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sf1 := f.venue(t, "The Musical Hop", "San Francisco", "CA")
	ny := f.venue(t, "The Dueling Pianos Bar", "New York", "NY")
	sf2 := f.venue(t, "Park Square Live Music & Coffee", "San Francisco", "CA")
	a := f.artist(t, "Guns N Petals")
	f.show(t, sf1, a, testNow.Add(time.Hour))
	f.show(t, sf1, a, testNow.Add(2*time.Hour))
	f.show(t, sf1, a, testNow.Add(-time.Hour))

	groups, err := f.query.ListVenuesGroupedByLocation(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "San Francisco", groups[0].City)
	assert.Equal(t, "CA", groups[0].State)
	require.Len(t, groups[0].Venues, 2)
	assert.Equal(t, sf1, groups[0].Venues[0].ID)
	assert.Equal(t, 2, groups[0].Venues[0].NumUpcomingShows)
	assert.Equal(t, sf2, groups[0].Venues[1].ID)
	assert.Zero(t, groups[0].Venues[1].NumUpcomingShows)

	assert.Equal(t, "NY", groups[1].State)
	assert.Equal(t, ny, groups[1].Venues[0].ID)
}

func TestGroupByLocationInterleavedCase(t *testing.T) {
	// Row order as a case-insensitive collation returns it.
	venues := []*model.Venue{
		{ID: 1, Name: "A", City: "Detroit", State: "MI"},
		{ID: 2, Name: "B", City: "detroit", State: "MI"},
		{ID: 3, Name: "C", City: "Detroit", State: "MI"},
	}
	groups := groupByLocation(venues, map[int64]int{3: 2})
	require.Len(t, groups, 2)

	assert.Equal(t, "Detroit", groups[0].City)
	require.Len(t, groups[0].Venues, 2)
	assert.Equal(t, int64(1), groups[0].Venues[0].ID)
	assert.Equal(t, int64(3), groups[0].Venues[1].ID)
	assert.Equal(t, 2, groups[0].Venues[1].NumUpcomingShows)

	assert.Equal(t, "detroit", groups[1].City)
	require.Len(t, groups[1].Venues, 1)
	assert.Equal(t, int64(2), groups[1].Venues[0].ID)
}

func TestGroupedListingMixedCaseCities(t *testing.T) {
	f := newFixture(t)
	first := f.venue(t, "A", "Detroit", "MI")
	lower := f.venue(t, "B", "detroit", "MI")
	third := f.venue(t, "C", "Detroit", "MI")

	groups, err := f.query.ListVenuesGroupedByLocation(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []VenueSummary{{ID: first, Name: "A"}, {ID: third, Name: "C"}}, groups[0].Venues)
	assert.Equal(t, []VenueSummary{{ID: lower, Name: "B"}}, groups[1].Venues)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.venue(t, "Jazz Club", "Detroit", "MI")
	f.venue(t, "Rock Hall", "Detroit", "MI")
	f.artist(t, "Jazzy Jeff")

	res, err := f.query.SearchVenuesByName(ctx, "jazz")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "Jazz Club", res.Data[0].Name)

	all, err := f.query.SearchVenuesByName(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, all.Count)

	// Wildcards in the term are not escaped.
	wild, err := f.query.SearchVenuesByName(ctx, "%")
	require.NoError(t, err)
	assert.Equal(t, 2, wild.Count)

	single, err := f.query.SearchVenuesByName(ctx, "_ock")
	require.NoError(t, err)
	require.Equal(t, 1, single.Count)
	assert.Equal(t, "Rock Hall", single.Data[0].Name)

	artists, err := f.query.SearchArtistsByName(ctx, "JAZZ")
	require.NoError(t, err)
	assert.Equal(t, 1, artists.Count)

	list, err := f.query.ListArtists(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteVenue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lonely := f.venue(t, "Lonely", "Detroit", "MI")
	busy := f.venue(t, "Busy", "Detroit", "MI")
	a := f.artist(t, "Artist")
	f.show(t, busy, a, testNow.Add(time.Hour))

	name, err := f.mutate.DeleteVenue(ctx, lonely)
	require.NoError(t, err)
	assert.Equal(t, "Lonely", name)
	groups, err := f.query.ListVenuesGroupedByLocation(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Venues, 1)
	assert.Equal(t, busy, groups[0].Venues[0].ID)

	_, err = f.mutate.DeleteVenue(ctx, busy)
	assert.ErrorIs(t, err, ErrConflict)
	shows, err := f.query.ListAllShows(ctx)
	require.NoError(t, err)
	assert.Len(t, shows, 1, "no cascade happened")

	_, err = f.mutate.DeleteVenue(ctx, lonely)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.mutate.DeleteArtist(ctx, a)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateShowMissingArtistRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.venue(t, "Venue", "Detroit", "MI")

	_, err := f.mutate.CreateShow(ctx, ShowInput{VenueID: v, ArtistID: 404, StartTime: testNow.Add(time.Hour)})
	assert.ErrorIs(t, err, ErrConstraintViolation)
	_, err = f.mutate.CreateShow(ctx, ShowInput{VenueID: 404, ArtistID: 404, StartTime: testNow})
	assert.ErrorIs(t, err, ErrConstraintViolation)
	_, err = f.mutate.CreateShow(ctx, ShowInput{VenueID: v, ArtistID: 1})
	assert.ErrorIs(t, err, ErrConstraintViolation, "zero start time is rejected")

	shows, err := f.query.ListAllShows(ctx)
	require.NoError(t, err)
	assert.Empty(t, shows)
}

func TestUpdateVenueAndArtist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.venue(t, "Old", "Detroit", "MI")
	err := f.mutate.UpdateVenue(ctx, v, VenueInput{
		Name: "New", City: "Austin", State: "TX", Address: "2 Side St",
		Genres: []string{"Blues"}, SeekingTalent: true, SeekingDescription: "Bands wanted",
	})
	require.NoError(t, err)
	got, err := f.query.GetVenue(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, "TX", got.State)
	assert.Equal(t, model.Genres{"Blues"}, got.Genres)
	assert.Equal(t, "Bands wanted", *got.SeekingDescription)

	err = f.mutate.UpdateVenue(ctx, 999, VenueInput{Name: "X", City: "Y", State: "Z", Address: "W"})
	assert.ErrorIs(t, err, ErrNotFound)

	a := f.artist(t, "Before")
	require.NoError(t, f.mutate.UpdateArtist(ctx, a, ArtistInput{Name: "After", City: "A", State: "B", Phone: "9"}))
	ga, err := f.query.GetArtist(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "After", ga.Name)

	err = f.mutate.UpdateArtist(ctx, 999, ArtistInput{Name: "X", City: "Y", State: "Z", Phone: "1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDetailNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.query.GetVenueDetail(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.query.GetArtistDetail(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEndToEndFillmore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v, err := f.mutate.CreateVenue(ctx, VenueInput{Name: "The Fillmore", City: "Detroit", State: "MI", Address: "123 Main St"})
	require.NoError(t, err)
	a, err := f.mutate.CreateArtist(ctx, ArtistInput{Name: "Nina Blue", City: "Detroit", State: "MI", Phone: "555-1212"})
	require.NoError(t, err)
	_, err = f.mutate.CreateShow(ctx, ShowInput{VenueID: v, ArtistID: a, StartTime: testNow.Add(24 * time.Hour)})
	require.NoError(t, err)

	vd, err := f.query.GetVenueDetail(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, 1, vd.UpcomingShowsCount)
	assert.Equal(t, 0, vd.PastShowsCount)
	assert.Equal(t, "Nina Blue", vd.UpcomingShows[0].ArtistName)

	ad, err := f.query.GetArtistDetail(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 1, ad.UpcomingShowsCount)
	assert.Equal(t, 0, ad.PastShowsCount)

	shows, err := f.query.ListAllShows(ctx)
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, "The Fillmore", shows[0].VenueName)
	assert.Equal(t, "Nina Blue", shows[0].ArtistName)
	assert.Equal(t, "Saturday October 17 2026 08:00 PM", shows[0].StartTime)

	o, err := f.query.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, Overview{Venues: 1, Artists: 1, Shows: 1}, o)

	require.Len(t, f.events.events, 3)
	assert.Equal(t, queue.ShowCreated, f.events.events[2].Type)
	assert.Equal(t, testNow, f.events.events[2].OccurredAt)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	core, logs := observer.New(zap.WarnLevel)
	f.mutate.log = zap.New(core)
	f.events.err = errors.New("broker down")

	id, err := f.mutate.CreateVenue(ctx, VenueInput{Name: "V", City: "C", State: "S", Address: "A"})
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, 1, logs.FilterMessage("event publish failed").Len())
}
