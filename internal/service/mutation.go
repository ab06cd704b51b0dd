package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/PA55ION/fyyur/internal/model"
	"github.com/PA55ION/fyyur/internal/queue"
	"github.com/PA55ION/fyyur/internal/repository"
)

// MutationService implements the write side.  Each method opens its own
// transaction through repository.RunInTx; nothing is shared between calls.
type MutationService struct {
	db       *sql.DB
	venues   *repository.VenueRepo
	artists  *repository.ArtistRepo
	shows    *repository.ShowRepo
	validate *validator.Validate
	events   EventPublisher
	log      *zap.Logger
	now      Clock
}

// NewMutationService constructs a MutationService.  A nil publisher
// discards events and a nil logger discards diagnostics.
func NewMutationService(db *sql.DB, events EventPublisher, log *zap.Logger) *MutationService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MutationService{
		db:       db,
		venues:   repository.NewVenueRepo(db),
		artists:  repository.NewArtistRepo(db),
		shows:    repository.NewShowRepo(db),
		validate: newValidator(),
		events:   events,
		log:      log,
		now:      SystemClock,
	}
}

// CreateVenue validates the input, inserts the venue and returns its id.
func (s *MutationService) CreateVenue(ctx context.Context, in VenueInput) (int64, error) {
	in.normalize()
	if err := validateInput(s.validate, in); err != nil {
		return 0, err
	}
	v := in.toModel(0)
	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.venues.WithTx(tx).Create(ctx, v)
	})
	if err != nil {
		return 0, fmt.Errorf("create venue: %w", err)
	}
	s.emit(ctx, queue.Event{Type: queue.VenueCreated, EntityID: v.ID, Name: v.Name})
	return v.ID, nil
}

// UpdateVenue overwrites every mutable field of an existing venue.
func (s *MutationService) UpdateVenue(ctx context.Context, id int64, in VenueInput) error {
	in.normalize()
	if err := validateInput(s.validate, in); err != nil {
		return err
	}
	v := in.toModel(id)
	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.venues.WithTx(tx).Update(ctx, v)
	})
	if err != nil {
		return fmt.Errorf("update venue %d: %w", id, err)
	}
	s.emit(ctx, queue.Event{Type: queue.VenueUpdated, EntityID: id, Name: v.Name})
	return nil
}

// DeleteVenue removes a venue without shows.  It returns ErrNotFound for a
// missing venue and ErrConflict while shows reference it.
func (s *MutationService) DeleteVenue(ctx context.Context, id int64) (string, error) {
	var name string
	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.venues.WithTx(tx)
		v, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		name = v.Name
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return "", fmt.Errorf("delete venue %d: %w", id, err)
	}
	s.emit(ctx, queue.Event{Type: queue.VenueDeleted, EntityID: id, Name: name})
	return name, nil
}

// CreateArtist validates the input, inserts the artist and returns its id.
func (s *MutationService) CreateArtist(ctx context.Context, in ArtistInput) (int64, error) {
	in.normalize()
	if err := validateInput(s.validate, in); err != nil {
		return 0, err
	}
	a := in.toModel(0)
	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.artists.WithTx(tx).Create(ctx, a)
	})
	if err != nil {
		return 0, fmt.Errorf("create artist: %w", err)
	}
	s.emit(ctx, queue.Event{Type: queue.ArtistCreated, EntityID: a.ID, Name: a.Name})
	return a.ID, nil
}

// UpdateArtist overwrites every mutable field of an existing artist.
func (s *MutationService) UpdateArtist(ctx context.Context, id int64, in ArtistInput) error {
	in.normalize()
	if err := validateInput(s.validate, in); err != nil {
		return err
	}
	a := in.toModel(id)
	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.artists.WithTx(tx).Update(ctx, a)
	})
	if err != nil {
		return fmt.Errorf("update artist %d: %w", id, err)
	}
	s.emit(ctx, queue.Event{Type: queue.ArtistUpdated, EntityID: id, Name: a.Name})
	return nil
}

// DeleteArtist removes an artist without shows.
func (s *MutationService) DeleteArtist(ctx context.Context, id int64) (string, error) {
	var name string
	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.artists.WithTx(tx)
		a, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		name = a.Name
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return "", fmt.Errorf("delete artist %d: %w", id, err)
	}
	s.emit(ctx, queue.Event{Type: queue.ArtistDeleted, EntityID: id, Name: name})
	return name, nil
}

// CreateShow books an artist at a venue.  Both must exist, otherwise
// ErrConstraintViolation is returned and nothing is written.  Past start
// times and double bookings are accepted.
func (s *MutationService) CreateShow(ctx context.Context, in ShowInput) (int64, error) {
	if err := validateInput(s.validate, in); err != nil {
		return 0, err
	}
	sh := &model.Show{VenueID: in.VenueID, ArtistID: in.ArtistID, StartTime: in.StartTime}
	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := s.venues.WithTx(tx).Exists(ctx, in.VenueID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: venue %d does not exist", ErrConstraintViolation, in.VenueID)
		}
		ok, err = s.artists.WithTx(tx).Exists(ctx, in.ArtistID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: artist %d does not exist", ErrConstraintViolation, in.ArtistID)
		}
		return s.shows.WithTx(tx).Create(ctx, sh)
	})
	if err != nil {
		return 0, fmt.Errorf("create show: %w", err)
	}
	start := sh.StartTime
	s.emit(ctx, queue.Event{
		Type: queue.ShowCreated, EntityID: sh.ID,
		VenueID: sh.VenueID, ArtistID: sh.ArtistID, StartTime: &start,
	})
	return sh.ID, nil
}

// emit publishes after commit.  Delivery is best effort: a failure is
// logged and never turns a committed write into an error.
func (s *MutationService) emit(ctx context.Context, ev queue.Event) {
	ev.OccurredAt = s.now()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("event publish failed", zap.String("type", ev.Type), zap.Int64("entity_id", ev.EntityID), zap.Error(err))
	}
}
