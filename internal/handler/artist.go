package handler

import (
	"fmt"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/PA55ION/fyyur/internal/model"
	"github.com/PA55ION/fyyur/internal/service"
)

// ArtistHandler serves the /artists routes.
type ArtistHandler struct {
	Deps
}

// NewArtistHandler constructs an ArtistHandler.
func NewArtistHandler(d Deps) *ArtistHandler {
	return &ArtistHandler{Deps: d}
}

// ArtistForm is the artist form model, keyed by form field name.
type ArtistForm struct {
	ID                 int64    `json:"id,omitempty"`
	Name               string   `json:"name"`
	City               string   `json:"city"`
	State              string   `json:"state"`
	Phone              string   `json:"phone"`
	Genres             []string `json:"genres"`
	ImageLink          string   `json:"image_link"`
	FacebookLink       string   `json:"facebook_link"`
	Website            string   `json:"website"`
	SeekingVenue       bool     `json:"seeking_venue"`
	SeekingDescription string   `json:"seeking_description"`
}

func artistForm(a *model.Artist) ArtistForm {
	return ArtistForm{
		ID:                 a.ID,
		Name:               a.Name,
		City:               a.City,
		State:              a.State,
		Phone:              a.Phone,
		Genres:             append([]string{}, a.Genres...),
		ImageLink:          deref(a.ImageLink),
		FacebookLink:       deref(a.FacebookLink),
		Website:            deref(a.Website),
		SeekingVenue:       a.SeekingVenue,
		SeekingDescription: deref(a.SeekingDescription),
	}
}

func artistInput(form url.Values) service.ArtistInput {
	return service.ArtistInput{
		Name:               form.Get("name"),
		City:               form.Get("city"),
		State:              form.Get("state"),
		Phone:              form.Get("phone"),
		ImageLink:          form.Get("image_link"),
		FacebookLink:       form.Get("facebook_link"),
		Website:            form.Get("website"),
		Genres:             form["genres"],
		SeekingVenue:       checked(form.Get("seeking_venue")),
		SeekingDescription: form.Get("seeking_description"),
	}
}

// List handles GET /artists.
func (h *ArtistHandler) List(c echo.Context) error {
	artists, err := h.Query.ListArtists(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, artists)
}

// Search handles POST /artists/search.
func (h *ArtistHandler) Search(c echo.Context) error {
	term := c.FormValue("search_term")
	res, err := h.Query.SearchArtistsByName(c.Request().Context(), term)
	if err != nil {
		return err
	}
	return render(c, searchPage{Results: res, SearchTerm: term})
}

// Show handles GET /artists/:id.
func (h *ArtistHandler) Show(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	detail, err := h.Query.GetArtistDetail(c.Request().Context(), id)
	if err != nil {
		return readError(err)
	}
	return render(c, detail)
}

// CreateForm handles GET /artists/create.
func (h *ArtistHandler) CreateForm(c echo.Context) error {
	return render(c, ArtistForm{Genres: []string{}, SeekingVenue: true})
}

// Create handles POST /artists/create.
func (h *ArtistHandler) Create(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return redirect(c, "/", FlashDanger, "Artist could not be created at this time. Please try again later.")
	}
	in := artistInput(form)
	if _, err := h.Mutate.CreateArtist(c.Request().Context(), in); err != nil {
		h.logMutation(c, "create artist", err)
		return redirect(c, "/", FlashDanger,
			fmt.Sprintf("Artist %s could not be created at this time. Please try again later.", in.Name))
	}
	return redirect(c, "/", FlashSuccess, fmt.Sprintf("Artist %s was successfully created!", in.Name))
}

// EditForm handles GET /artists/:id/edit.
func (h *ArtistHandler) EditForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.Query.GetArtist(c.Request().Context(), id)
	if err != nil {
		return readError(err)
	}
	return render(c, artistForm(a))
}

// Update handles POST /artists/:id/edit.
func (h *ArtistHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	detail := fmt.Sprintf("/artists/%d", id)
	form, err := c.FormParams()
	if err != nil {
		return redirect(c, detail, FlashDanger, "Artist could not be updated.")
	}
	in := artistInput(form)
	if err := h.Mutate.UpdateArtist(c.Request().Context(), id, in); err != nil {
		h.logMutation(c, "update artist", err)
		return redirect(c, detail, FlashDanger, fmt.Sprintf("Artist %s could not be updated.", in.Name))
	}
	return redirect(c, detail, FlashSuccess, fmt.Sprintf("Artist %s was successfully updated!", in.Name))
}

// Delete handles DELETE /artists/:id.
func (h *ArtistHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	name, err := h.Mutate.DeleteArtist(c.Request().Context(), id)
	if err != nil {
		h.logMutation(c, "delete artist", err)
		return redirect(c, "/", FlashDanger, "Artist could not be deleted at this time. Please try again later.")
	}
	return redirect(c, "/", FlashSuccess, fmt.Sprintf("Artist %s was successfully deleted!", name))
}
