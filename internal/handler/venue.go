package handler

import (
	"fmt"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/PA55ION/fyyur/internal/model"
	"github.com/PA55ION/fyyur/internal/service"
)

// VenueHandler serves the /venues routes.
type VenueHandler struct {
	Deps
}

// NewVenueHandler constructs a VenueHandler.
func NewVenueHandler(d Deps) *VenueHandler {
	return &VenueHandler{Deps: d}
}

// VenueForm is the venue form model, keyed by form field name.
type VenueForm struct {
	ID                 int64    `json:"id,omitempty"`
	Name               string   `json:"name"`
	City               string   `json:"city"`
	State              string   `json:"state"`
	Address            string   `json:"address"`
	Phone              string   `json:"phone"`
	Genres             []string `json:"genres"`
	ImageLink          string   `json:"image_link"`
	FacebookLink       string   `json:"facebook_link"`
	Website            string   `json:"website"`
	SeekingTalent      bool     `json:"seeking_talent"`
	SeekingDescription string   `json:"seeking_description"`
}

func venueForm(v *model.Venue) VenueForm {
	return VenueForm{
		ID:                 v.ID,
		Name:               v.Name,
		City:               v.City,
		State:              v.State,
		Address:            v.Address,
		Phone:              deref(v.Phone),
		Genres:             append([]string{}, v.Genres...),
		ImageLink:          deref(v.ImageLink),
		FacebookLink:       deref(v.FacebookLink),
		Website:            deref(v.Website),
		SeekingTalent:      v.SeekingTalent,
		SeekingDescription: deref(v.SeekingDescription),
	}
}

func venueInput(form url.Values) service.VenueInput {
	return service.VenueInput{
		Name:               form.Get("name"),
		City:               form.Get("city"),
		State:              form.Get("state"),
		Address:            form.Get("address"),
		Phone:              form.Get("phone"),
		ImageLink:          form.Get("image_link"),
		FacebookLink:       form.Get("facebook_link"),
		Website:            form.Get("website"),
		Genres:             form["genres"],
		SeekingTalent:      checked(form.Get("seeking_talent")),
		SeekingDescription: form.Get("seeking_description"),
	}
}

// List handles GET /venues.
func (h *VenueHandler) List(c echo.Context) error {
	groups, err := h.Query.ListVenuesGroupedByLocation(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, groups)
}

// Search handles POST /venues/search.
func (h *VenueHandler) Search(c echo.Context) error {
	term := c.FormValue("search_term")
	res, err := h.Query.SearchVenuesByName(c.Request().Context(), term)
	if err != nil {
		return err
	}
	return render(c, searchPage{Results: res, SearchTerm: term})
}

// Show handles GET /venues/:id.
func (h *VenueHandler) Show(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	detail, err := h.Query.GetVenueDetail(c.Request().Context(), id)
	if err != nil {
		return readError(err)
	}
	return render(c, detail)
}

// CreateForm handles GET /venues/create.
func (h *VenueHandler) CreateForm(c echo.Context) error {
	return render(c, VenueForm{Genres: []string{}})
}

// Create handles POST /venues/create.
func (h *VenueHandler) Create(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return redirect(c, "/venues", FlashDanger, "An error occurred. Venue could not be listed.")
	}
	in := venueInput(form)
	if _, err := h.Mutate.CreateVenue(c.Request().Context(), in); err != nil {
		h.logMutation(c, "create venue", err)
		return redirect(c, "/venues", FlashDanger, fmt.Sprintf("An error occurred. Venue %s could not be listed.", in.Name))
	}
	return redirect(c, "/venues", FlashSuccess, fmt.Sprintf("Venue %s was successfully listed!", in.Name))
}

// EditForm handles GET /venues/:id/edit.
func (h *VenueHandler) EditForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	v, err := h.Query.GetVenue(c.Request().Context(), id)
	if err != nil {
		return readError(err)
	}
	return render(c, venueForm(v))
}

// Update handles POST /venues/:id/edit.
func (h *VenueHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	detail := fmt.Sprintf("/venues/%d", id)
	form, err := c.FormParams()
	if err != nil {
		return redirect(c, detail, FlashDanger, "Something went wrong. Please try again later.")
	}
	in := venueInput(form)
	if err := h.Mutate.UpdateVenue(c.Request().Context(), id, in); err != nil {
		h.logMutation(c, "update venue", err)
		return redirect(c, detail, FlashDanger, "Something went wrong. Please try again later.")
	}
	return redirect(c, detail, FlashSuccess, fmt.Sprintf("Venue %s was successfully updated!", in.Name))
}

// Delete handles DELETE /venues/:id.
func (h *VenueHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	name, err := h.Mutate.DeleteVenue(c.Request().Context(), id)
	if err != nil {
		h.logMutation(c, "delete venue", err)
		return redirect(c, "/", FlashDanger, "Oh no, something went wrong. Please try again later.")
	}
	return redirect(c, "/", FlashSuccess, fmt.Sprintf("Venue %s was successfully deleted.", name))
}

type searchPage struct {
	Results    service.SearchResult `json:"results"`
	SearchTerm string               `json:"search_term"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
