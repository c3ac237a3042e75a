package services

import (
	"context"
	"testing"
	"time"

	"github.com/sjbaraho/app-places-backend/store/memstore"
	apierrors "github.com/sjbaraho/app-places-backend/utils/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() (*UserService, *memstore.Store, *TokenIssuer) {
	mem := memstore.New()
	tokens := NewTokenIssuer("test-secret", time.Hour)
	return NewUserService(mem.Users(), newTestHasher(), tokens), mem, tokens
}

func TestSignupThenLogin(t *testing.T) {
	svc, mem, tokens := newTestUserService()
	ctx := context.Background()

	signup, err := svc.Signup(ctx, SignupRequest{Name: "Alice", Email: "a@x.com", Password: "secret123", Image: "uploads/images/alice.png"})
	require.NoError(t, err)
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, "a@x.com", signup.Email)

	claims, err := tokens.Verify(signup.Token)
	require.NoError(t, err)
	assert.Equal(t, signup.UserID, claims.UserID)

	login, err := svc.Login(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, signup.UserID, login.UserID)

	_, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, apierrors.ErrInvalidCredentials)

	stored, err := mem.Users().FindByID(ctx, signup.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.Empty(t, stored.Places)
	assert.NotNil(t, stored.Places)
}

func TestSignup_DuplicateEmailInsertsNothing(t *testing.T) {
	svc, mem, _ := newTestUserService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, SignupRequest{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupRequest{Name: "Eve", Email: " A@X.com ", Password: "secret456"})

	assert.ErrorIs(t, err, apierrors.ErrDuplicateEmail)
	users, _ := mem.Len()
	assert.Equal(t, 1, users)
}

func TestSignup_LosingUniqueIndexRaceIsDuplicateEmail(t *testing.T) {
	mem := memstore.New()
	svc := NewUserService(&raceUserStore{UserStore: mem.Users()}, newTestHasher(), NewTokenIssuer("s", time.Hour))
	ctx := context.Background()
	_, err := svc.Signup(ctx, SignupRequest{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupRequest{Name: "Eve", Email: "a@x.com", Password: "secret123"})

	assert.ErrorIs(t, err, apierrors.ErrDuplicateEmail)
}

func TestLogin_TwiceGivesDistinctTokensForSameIdentity(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, SignupRequest{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	first, err := svc.Login(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, first.Email, second.Email)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestLogin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, SignupRequest{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, "nobody@x.com", "secret123")
	_, wrongErr := svc.Login(ctx, "a@x.com", "nope")

	assert.ErrorIs(t, unknownErr, apierrors.ErrInvalidCredentials)
	assert.Equal(t, wrongErr.Error(), unknownErr.Error())
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, SignupRequest{Name: "Alice", Email: "Alice@Example.com", Password: "secret123"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.Email)
}

func TestListUsers_HidesPasswordDigest(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, SignupRequest{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)

	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Empty(t, users[0].PasswordHash)
}
