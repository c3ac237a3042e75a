// Package store declares the persistence boundary used by the services.
//
// Implementations live in the mongostore and memstore subpackages. Calls made
// with the context handed to UnitOfWork.Do participate in that unit and are
// committed or rolled back together.
package store

import (
	"context"
	"errors"

	"github.com/sjbaraho/app-places-backend/models"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
}

type PlaceStore interface {
	FindByID(ctx context.Context, id string) (*models.Place, error)
	FindByCreator(ctx context.Context, userID string) ([]models.Place, error)
	Insert(ctx context.Context, place *models.Place) error
	Save(ctx context.Context, place *models.Place) error
	DeleteByID(ctx context.Context, id string) error
}

// UnitOfWork runs fn as one atomic unit. If fn returns an error (or panics)
// none of its writes are kept.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
