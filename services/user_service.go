package services

import (
	"context"

	"github.com/sjbaraho/app-places-backend/models"
	"github.com/sjbaraho/app-places-backend/store"
	"github.com/sjbaraho/app-places-backend/utils/errors"
)

type UserService struct {
	users  store.UserStore
	hasher *PasswordHasher
	tokens *TokenIssuer
}

func NewUserService(users store.UserStore, hasher *PasswordHasher, tokens *TokenIssuer) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// ListUsers returns every account. Password digests never leave the service.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistenceFailure)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
