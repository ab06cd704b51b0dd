package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/PA55ION/fyyur/internal/model"
)

// VenueInput carries the submitted venue form.  Optional strings left
// empty are stored as NULL.
type VenueInput struct {
	Name               string   `validate:"required,max=255"`
	City               string   `validate:"required,max=120"`
	State              string   `validate:"required,max=120"`
	Address            string   `validate:"required,max=120"`
	Phone              string   `validate:"max=120"`
	ImageLink          string   `validate:"max=500"`
	FacebookLink       string   `validate:"max=120"`
	Website            string   `validate:"max=255"`
	Genres             []string `validate:"dive,required"`
	SeekingTalent      bool
	SeekingDescription string
}

// ArtistInput carries the submitted artist form.
type ArtistInput struct {
	Name               string   `validate:"required,max=255"`
	City               string   `validate:"required,max=120"`
	State              string   `validate:"required,max=120"`
	Phone              string   `validate:"required,max=120"`
	ImageLink          string   `validate:"max=500"`
	FacebookLink       string   `validate:"max=120"`
	Website            string   `validate:"max=255"`
	Genres             []string `validate:"dive,required"`
	SeekingVenue       bool
	SeekingDescription string
}

// ShowInput carries the submitted show form.
type ShowInput struct {
	VenueID   int64     `validate:"gt=0"`
	ArtistID  int64     `validate:"gt=0"`
	StartTime time.Time `validate:"required"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validateInput runs struct validation and reports any failure as a
// constraint violation naming the offending fields.
func validateInput(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: invalid %s", ErrConstraintViolation, strings.Join(fields, ", "))
	}
	return err
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func cleanGenres(in []string) model.Genres {
	out := make(model.Genres, 0, len(in))
	for _, g := range in {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func (in *VenueInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Address = strings.TrimSpace(in.Address)
	in.Genres = cleanGenres(in.Genres)
}

// toModel builds the venue row.  The seeking description is dropped
// whenever the venue is not seeking talent.
func (in VenueInput) toModel(id int64) *model.Venue {
	v := &model.Venue{
		ID:            id,
		Name:          in.Name,
		City:          in.City,
		State:         in.State,
		Address:       in.Address,
		Phone:         optional(in.Phone),
		ImageLink:     optional(in.ImageLink),
		FacebookLink:  optional(in.FacebookLink),
		Website:       optional(in.Website),
		Genres:        cleanGenres(in.Genres),
		SeekingTalent: in.SeekingTalent,
	}
	if in.SeekingTalent {
		v.SeekingDescription = optional(in.SeekingDescription)
	}
	return v
}

func (in *ArtistInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Genres = cleanGenres(in.Genres)
}

func (in ArtistInput) toModel(id int64) *model.Artist {
	a := &model.Artist{
		ID:           id,
		Name:         in.Name,
		City:         in.City,
		State:        in.State,
		Phone:        in.Phone,
		ImageLink:    optional(in.ImageLink),
		FacebookLink: optional(in.FacebookLink),
		Website:      optional(in.Website),
		Genres:       cleanGenres(in.Genres),
		SeekingVenue: in.SeekingVenue,
	}
	if in.SeekingVenue {
		a.SeekingDescription = optional(in.SeekingDescription)
	}
	return a
}
