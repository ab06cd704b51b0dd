package router

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PA55ION/fyyur/internal/database"
	"github.com/PA55ION/fyyur/internal/handler"
	"github.com/PA55ION/fyyur/internal/service"
)

var testNow = time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := database.Open(database.Options{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "http.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.MigrateUp(context.Background(), db, database.DriverSQLite)
	require.NoError(t, err)

	log := zap.NewNop()
	return New(Options{
		DB:       db,
		Query:    service.NewQueryService(db, func() time.Time { return testNow }),
		Mutate:   service.NewMutationService(db, nil, log),
		Log:      log,
		Registry: prometheus.NewRegistry(),
	})
}

func postForm(t *testing.T, e *echo.Echo, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func flashOf(t *testing.T, rec *httptest.ResponseRecorder) handler.Flash {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name != "flash" {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
		require.NoError(t, err)
		var f handler.Flash
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	}
	t.Fatal("no flash cookie")
	return handler.Flash{}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var body struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Data
}

func fillmoreForm() url.Values {
	return url.Values{
		"name":           {"The Fillmore"},
		"city":           {"San Francisco"},
		"state":          {"CA"},
		"address":        {"1805 Geary Blvd"},
		"genres":         {"Rock", "Jazz"},
		"seeking_talent": {"y"},
		"image_link":     {""},
	}
}

func TestVenueLifecycle(t *testing.T) {
	e := newTestServer(t)

	rec := postForm(t, e, "/venues/create", fillmoreForm())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/venues", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, handler.Flash{Category: handler.FlashSuccess, Message: "Venue The Fillmore was successfully listed!"}, flashOf(t, rec))

	groups := decode[[]service.LocationGroup](t, get(e, "/venues"))
	require.Len(t, groups, 1)
	assert.Equal(t, "San Francisco", groups[0].City)
	require.Len(t, groups[0].Venues, 1)
	assert.Equal(t, "The Fillmore", groups[0].Venues[0].Name)

	form := decode[handler.VenueForm](t, get(e, "/venues/1/edit"))
	assert.Equal(t, []string{"Rock", "Jazz"}, form.Genres)
	assert.True(t, form.SeekingTalent)

	upd := fillmoreForm()
	upd.Set("name", "Fillmore West")
	upd.Del("seeking_talent")
	upd.Set("seeking_description", "ignored")
	rec = postForm(t, e, "/venues/1/edit", upd)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/venues/1", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, handler.FlashSuccess, flashOf(t, rec).Category)

	detail := decode[service.VenueDetail](t, get(e, "/venues/1"))
	assert.Equal(t, "Fillmore West", detail.Name)
	assert.False(t, detail.SeekingTalent)
	assert.Nil(t, detail.SeekingDescription)
	assert.Nil(t, detail.ImageLink)

	req := httptest.NewRequest(http.MethodDelete, "/venues/1", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Venue Fillmore West was successfully deleted.", flashOf(t, rec).Message)

	assert.Equal(t, http.StatusNotFound, get(e, "/venues/1").Code)
}

func TestShowBookingEndToEnd(t *testing.T) {
	e := newTestServer(t)
	require.Equal(t, http.StatusSeeOther, postForm(t, e, "/venues/create", fillmoreForm()).Code)
	rec := postForm(t, e, "/artists/create", url.Values{
		"name":  {"Guns N Petals"},
		"city":  {"San Francisco"},
		"state": {"CA"},
		"phone": {"326-123-5000"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = postForm(t, e, "/shows/create", url.Values{
		"venue_id":   {"1"},
		"artist_id":  {"1"},
		"start_time": {"2026-10-17 20:00:00"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, handler.Flash{Category: handler.FlashSuccess, Message: "Show was successfully listed!"}, flashOf(t, rec))

	venue := decode[service.VenueDetail](t, get(e, "/venues/1"))
	assert.Equal(t, 1, venue.UpcomingShowsCount)
	assert.Equal(t, 0, venue.PastShowsCount)
	require.Len(t, venue.UpcomingShows, 1)
	assert.Equal(t, "Guns N Petals", venue.UpcomingShows[0].ArtistName)
	assert.Equal(t, "Saturday October 17 2026 08:00 PM", venue.UpcomingShows[0].StartTime)

	artist := decode[service.ArtistDetail](t, get(e, "/artists/1"))
	assert.Equal(t, 1, artist.UpcomingShowsCount)
	assert.False(t, artist.SeekingVenue)

	shows := decode[[]service.ShowListing](t, get(e, "/shows"))
	require.Len(t, shows, 1)
	assert.Equal(t, "The Fillmore", shows[0].VenueName)

	groups := decode[[]service.LocationGroup](t, get(e, "/venues"))
	assert.Equal(t, 1, groups[0].Venues[0].NumUpcomingShows)

	// Referenced venues are not deleted.
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/venues/1", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, handler.FlashDanger, flashOf(t, rec).Category)
	assert.Equal(t, http.StatusOK, get(e, "/venues/1").Code)

	home := decode[service.Overview](t, get(e, "/"))
	assert.Equal(t, service.Overview{Venues: 1, Artists: 1, Shows: 1}, home)
}

func TestCreateShowForMissingVenue(t *testing.T) {
	e := newTestServer(t)
	rec := postForm(t, e, "/shows/create", url.Values{
		"venue_id":   {"7"},
		"artist_id":  {"9"},
		"start_time": {"2026-10-17 20:00:00"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, handler.FlashDanger, flashOf(t, rec).Category)
	assert.Empty(t, decode[[]service.ShowListing](t, get(e, "/shows")))
}

func TestInvalidVenueSubmissionIsNotStored(t *testing.T) {
	e := newTestServer(t)
	form := fillmoreForm()
	form.Del("city")
	rec := postForm(t, e, "/venues/create", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/venues", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "An error occurred. Venue The Fillmore could not be listed.", flashOf(t, rec).Message)
	assert.Empty(t, decode[[]service.LocationGroup](t, get(e, "/venues")))
}

func TestArtistSearchAndMethodOverride(t *testing.T) {
	e := newTestServer(t)
	for _, name := range []string{"Guns N Petals", "Matt Quevedo", "The Wild Sax Band"} {
		rec := postForm(t, e, "/artists/create", url.Values{
			"name": {name}, "city": {"San Francisco"}, "state": {"CA"}, "phone": {"326-123-5000"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}

	res := decode[struct {
		Results    service.SearchResult `json:"results"`
		SearchTerm string               `json:"search_term"`
	}](t, postForm(t, e, "/artists/search", url.Values{"search_term": {"A"}}))
	assert.Equal(t, "A", res.SearchTerm)
	assert.Equal(t, 3, res.Results.Count)

	res = decode[struct {
		Results    service.SearchResult `json:"results"`
		SearchTerm string               `json:"search_term"`
	}](t, postForm(t, e, "/artists/search", url.Values{"search_term": {"band"}}))
	require.Equal(t, 1, res.Results.Count)
	assert.Equal(t, "The Wild Sax Band", res.Results.Data[0].Name)

	rec := postForm(t, e, "/artists/2", url.Values{"_method": {"DELETE"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Artist Matt Quevedo was successfully deleted!", flashOf(t, rec).Message)
	assert.Len(t, decode[[]map[string]any](t, get(e, "/artists")), 2)
}

func TestErrorPagesAndOps(t *testing.T) {
	e := newTestServer(t)

	for _, p := range []string{"/venues/999", "/venues/abc", "/artists/5", "/artists/5/edit", "/nope"} {
		rec := get(e, p)
		assert.Equal(t, http.StatusNotFound, rec.Code, p)
		assert.Contains(t, rec.Body.String(), "not_found", p)
	}

	rec := get(e, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	form := decode[handler.ShowForm](t, get(e, "/shows/create"))
	assert.NotEmpty(t, form.StartTime)
	assert.True(t, decode[handler.ArtistForm](t, get(e, "/artists/create")).SeekingVenue)

	rec = get(e, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fyyur_http_requests_total")
}
