package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sjbaraho/app-places-backend/models"
	"github.com/sjbaraho/app-places-backend/store"
	"github.com/sjbaraho/app-places-backend/utils/errors"
)

type SignupRequest struct {
	Name     string
	Email    string
	Password string
	Image    string
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new user and issues a token.
//
// The email pre-check and the insert are separate calls, so two concurrent
// signups can both pass the check. The store's unique email constraint is the
// real guard; losing that race also yields ErrDuplicateEmail.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, errors.ErrDuplicateEmail
	case !errors.Is(err, store.ErrNotFound):
		return nil, errors.Wrap(err, errors.ErrPersistenceFailure)
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Image:        req.Image,
		Places:       []string{},
	}
	if err := s.users.Insert(context.WithoutCancel(ctx), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errors.ErrDuplicateEmail
		}
		return nil, errors.Wrap(err, errors.ErrPersistenceFailure)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{UserID: user.ID, Email: user.Email, Token: token}, nil
}

// Login authenticates a user and returns a token. An unknown email and a
// wrong password fail the same way so the response does not reveal which
// accounts exist.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.VerifyDummy(ctx, password)
			return nil, errors.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.ErrPersistenceFailure)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{UserID: user.ID, Email: user.Email, Token: token}, nil
}
