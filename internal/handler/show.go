package handler

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/PA55ION/fyyur/internal/service"
)

// ShowHandler serves /shows and the home page.
type ShowHandler struct {
	Deps
	// Now prefills the show form; nil means service.SystemClock.
	Now service.Clock
}

// NewShowHandler constructs a ShowHandler.
func NewShowHandler(d Deps) *ShowHandler {
	return &ShowHandler{Deps: d, Now: service.SystemClock}
}

// ShowForm is the show form model.
type ShowForm struct {
	ArtistID  string `json:"artist_id"`
	VenueID   string `json:"venue_id"`
	StartTime string `json:"start_time"`
}

// Home handles GET /.
func (h *ShowHandler) Home(c echo.Context) error {
	o, err := h.Query.Overview(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, o)
}

// List handles GET /shows.
func (h *ShowHandler) List(c echo.Context) error {
	shows, err := h.Query.ListAllShows(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, shows)
}

// CreateForm handles GET /shows/create.
func (h *ShowHandler) CreateForm(c echo.Context) error {
	now := h.Now
	if now == nil {
		now = service.SystemClock
	}
	return render(c, ShowForm{StartTime: now().Format(FormTimeLayout)})
}

// Create handles POST /shows/create.
func (h *ShowHandler) Create(c echo.Context) error {
	in, err := showInput(c)
	if err == nil {
		_, err = h.Mutate.CreateShow(c.Request().Context(), in)
	}
	if err != nil {
		h.logMutation(c, "create show", err)
		return redirect(c, "/", FlashDanger, "An error occurred. Show could not be listed.")
	}
	return redirect(c, "/", FlashSuccess, "Show was successfully listed!")
}

func showInput(c echo.Context) (service.ShowInput, error) {
	var in service.ShowInput
	venueID, err := strconv.ParseInt(c.FormValue("venue_id"), 10, 64)
	if err != nil {
		return in, fmt.Errorf("%w: invalid venue_id", service.ErrConstraintViolation)
	}
	artistID, err := strconv.ParseInt(c.FormValue("artist_id"), 10, 64)
	if err != nil {
		return in, fmt.Errorf("%w: invalid artist_id", service.ErrConstraintViolation)
	}
	start, err := parseStartTime(c.FormValue("start_time"))
	if err != nil {
		return in, err
	}
	in.VenueID, in.ArtistID, in.StartTime = venueID, artistID, start
	return in, nil
}
