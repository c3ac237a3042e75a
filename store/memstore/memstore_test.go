package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/sjbaraho/app-places-backend/models"
	"github.com/sjbaraho/app-places-backend/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, id, email string) {
	t.Helper()
	require.NoError(t, s.Users().Insert(context.Background(), &models.User{ID: id, Name: id, Email: email, Places: []string{}}))
}

func TestDo_CommitKeepsWrites(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "a@x.com")
	ctx := context.Background()

	err := s.Do(ctx, func(ctx context.Context) error {
		if err := s.Places().Insert(ctx, &models.Place{ID: "p1", Creator: "u1"}); err != nil {
			return err
		}
		u, err := s.Users().FindByID(ctx, "u1")
		if err != nil {
			return err
		}
		u.Places = append(u.Places, "p1")
		return s.Users().Save(ctx, u)
	})
	require.NoError(t, err)

	u, err := s.Users().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, u.Places)
	_, err = s.Places().FindByID(ctx, "p1")
	assert.NoError(t, err)
}

func TestDo_ErrorRestoresSnapshot(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "a@x.com")
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Do(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Places().Insert(ctx, &models.Place{ID: "p1", Creator: "u1"}))
		u, err := s.Users().FindByID(ctx, "u1")
		require.NoError(t, err)
		u.Places = append(u.Places, "p1")
		require.NoError(t, s.Users().Save(ctx, u))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Places().FindByID(ctx, "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	u, err := s.Users().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u.Places)
}

func TestDo_PanicRestoresSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.Do(ctx, func(ctx context.Context) error {
			_ = s.Places().Insert(ctx, &models.Place{ID: "p1"})
			panic("mid-unit")
		})
	})

	_, places := s.Len()
	assert.Zero(t, places)
	// lock released
	assert.NoError(t, s.Places().Insert(ctx, &models.Place{ID: "p2"}))
}

func TestUserStore_EmailIsUnique(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "a@x.com")

	err := s.Users().Insert(context.Background(), &models.User{ID: "u2", Email: "a@x.com"})

	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestUserStore_ReturnsCopies(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "a@x.com")
	ctx := context.Background()

	u, err := s.Users().FindByID(ctx, "u1")
	require.NoError(t, err)
	u.Places = append(u.Places, "p1")

	again, err := s.Users().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, again.Places)
}

func TestPlaceStore_FindByCreatorAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Places().Insert(ctx, &models.Place{ID: "p1", Creator: "u1"}))
	require.NoError(t, s.Places().Insert(ctx, &models.Place{ID: "p2", Creator: "u2"}))
	require.NoError(t, s.Places().Insert(ctx, &models.Place{ID: "p3", Creator: "u1"}))

	places, err := s.Places().FindByCreator(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "p1", places[0].ID)
	assert.Equal(t, "p3", places[1].ID)

	require.NoError(t, s.Places().DeleteByID(ctx, "p1"))
	assert.ErrorIs(t, s.Places().DeleteByID(ctx, "p1"), store.ErrNotFound)
	assert.Equal(t, []string{"p2", "p3"}, s.PlaceIDs())
}
