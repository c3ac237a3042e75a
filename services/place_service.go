package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sjbaraho/app-places-backend/models"
	"github.com/sjbaraho/app-places-backend/store"
	"github.com/sjbaraho/app-places-backend/utils/errors"
)

const (
	defaultTxTimeout   = 10 * time.Second
	maxNearbyPlaces    = 50
	defaultNearbyRange = 3.0 // km
)

// PlaceService owns every write that touches a place. Creating and deleting a
// place also maintains the owner's places index; both records change in one
// unit of work or not at all.
type PlaceService struct {
	places    store.PlaceStore
	users     store.UserStore
	uow       store.UnitOfWork
	geocoder  Geocoder
	assets    AssetStore
	index     PlaceIndex
	txTimeout time.Duration
}

type PlaceServiceConfig struct {
	Places     store.PlaceStore
	Users      store.UserStore
	UnitOfWork store.UnitOfWork
	Geocoder   Geocoder
	Assets     AssetStore
	// Index is optional; without it nearby lookups are unavailable.
	Index     PlaceIndex
	TxTimeout time.Duration
}

func NewPlaceService(cfg PlaceServiceConfig) *PlaceService {
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = defaultTxTimeout
	}
	return &PlaceService{
		places:    cfg.Places,
		users:     cfg.Users,
		uow:       cfg.UnitOfWork,
		geocoder:  cfg.Geocoder,
		assets:    cfg.Assets,
		index:     cfg.Index,
		txTimeout: cfg.TxTimeout,
	}
}

type CreatePlaceRequest struct {
	Title       string
	Description string
	Address     string
	CreatorID   string
	Image       string
}

// atomically runs fn as one unit detached from the caller's cancellation, so
// a dropped connection cannot stop a unit halfway. Any failure means nothing
// was applied. An APIError raised inside fn is returned as is.
func (s *PlaceService) atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.txTimeout)
	defer cancel()
	if err := s.uow.Do(ctx, fn); err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return errors.Wrap(err, errors.ErrPersistenceFailure)
	}
	return nil
}

// loadOwner reads the user a place belongs to.
func (s *PlaceService) loadOwner(ctx context.Context, userID string) (*models.User, error) {
	owner, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.ErrOwnerNotFound
		}
		return nil, errors.Wrap(err, errors.ErrPersistenceFailure)
	}
	return owner, nil
}

func (s *PlaceService) CreatePlace(ctx context.Context, req CreatePlaceRequest) (*models.Place, error) {
	location, err := s.geocoder.Resolve(ctx, req.Address)
	if err != nil {
		if errors.Is(err, errors.ErrGeocodeFailure) {
			return nil, err
		}
		return nil, errors.Wrap(fmt.Errorf("geocode: %w", err), errors.ErrGeocodeFailure)
	}

	if _, err := s.loadOwner(ctx, req.CreatorID); err != nil {
		return nil, err
	}

	place := &models.Place{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Location:    location,
		Image:       req.Image,
		Creator:     req.CreatorID,
	}

	err = s.atomically(ctx, func(ctx context.Context) error {
		if err := s.places.Insert(ctx, place); err != nil {
			return fmt.Errorf("insert place: %w", err)
		}
		// Re-read inside the unit so a concurrent change to the owner is not lost.
		owner, err := s.loadOwner(ctx, req.CreatorID)
		if err != nil {
			return err
		}
		owner.Places = append(owner.Places, place.ID)
		if err := s.users.Save(ctx, owner); err != nil {
			return fmt.Errorf("save owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.index != nil {
		if err := s.index.Add(context.WithoutCancel(ctx), *place); err != nil {
			log.Printf("Failed to index place %s: %v", place.ID, err)
		}
	}
	return place, nil
}

func (s *PlaceService) DeletePlace(ctx context.Context, placeID, callerID string) error {
	place, err := s.findPlace(ctx, placeID)
	if err != nil {
		return err
	}

	if _, err := s.loadOwner(ctx, place.Creator); err != nil {
		return err
	}

	if err := Authorize(callerID, place.Creator); err != nil {
		return err
	}

	image := place.Image

	err = s.atomically(ctx, func(ctx context.Context) error {
		if err := s.places.DeleteByID(ctx, place.ID); err != nil {
			return fmt.Errorf("delete place: %w", err)
		}
		owner, err := s.loadOwner(ctx, place.Creator)
		if err != nil {
			return err
		}
		owner.RemovePlace(place.ID)
		if err := s.users.Save(ctx, owner); err != nil {
			return fmt.Errorf("save owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The records are gone; leftovers below are only logged.
	cleanupCtx := context.WithoutCancel(ctx)
	if s.assets != nil {
		if err := s.assets.DeleteByPath(cleanupCtx, image); err != nil {
			log.Printf("Failed to delete image %s of place %s: %v", image, place.ID, err)
		}
	}
	if s.index != nil {
		if err := s.index.Remove(cleanupCtx, place.ID); err != nil {
			log.Printf("Failed to unindex place %s: %v", place.ID, err)
		}
	}
	return nil
}

// UpdatePlace changes title and description only; everything else is fixed
// at creation.
func (s *PlaceService) UpdatePlace(ctx context.Context, placeID, callerID, title, description string) (*models.Place, error) {
	place, err := s.findPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(callerID, place.Creator); err != nil {
		return nil, err
	}

	place.Title = title
	place.Description = description
	if err := s.places.Save(context.WithoutCancel(ctx), place); err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistenceFailure)
	}
	return place, nil
}

func (s *PlaceService) GetPlaceByID(ctx context.Context, placeID string) (*models.Place, error) {
	return s.findPlace(ctx, placeID)
}

func (s *PlaceService) GetPlacesByUserID(ctx context.Context, userID string) ([]models.Place, error) {
	places, err := s.places.FindByCreator(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistenceFailure)
	}
	if len(places) == 0 {
		return nil, errors.ErrNotFound.WithMessage("Could not find places for the provided user id")
	}
	return places, nil
}

// NearbyPlaces returns places within radiusKm of center, closest first. A
// non-positive radius falls back to 3 km.
func (s *PlaceService) NearbyPlaces(ctx context.Context, center models.Location, radiusKm float64) ([]models.Place, error) {
	if !center.Valid() {
		return nil, errors.ErrInvalidInput
	}
	radiusKm = NearbyRadius(radiusKm)
	if s.index == nil {
		return nil, errors.Wrap(fmt.Errorf("no place index configured"), errors.ErrInternal)
	}

	ids, err := s.index.Nearby(ctx, center, radiusKm, maxNearbyPlaces)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistenceFailure)
	}

	places := make([]models.Place, 0, len(ids))
	for _, id := range ids {
		place, err := s.places.FindByID(ctx, id)
		if err != nil {
			// index entry outlived its place
			log.Printf("Skipping indexed place %s: %v", id, err)
			continue
		}
		places = append(places, *place)
	}
	log.Printf("Found %d places within %.2f km", len(places), radiusKm)
	return places, nil
}

// NearbyRadius is the radius in km a nearby search actually uses.
func NearbyRadius(radiusKm float64) float64 {
	if radiusKm <= 0 {
		return defaultNearbyRange
	}
	return radiusKm
}

func (s *PlaceService) findPlace(ctx context.Context, placeID string) (*models.Place, error) {
	if strings.TrimSpace(placeID) == "" {
		return nil, errors.ErrNotFound
	}
	place, err := s.places.FindByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(err, errors.ErrPersistenceFailure)
	}
	return place, nil
}
