package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sjbaraho/app-places-backend/models"
	"github.com/sjbaraho/app-places-backend/store"
	"github.com/sjbaraho/app-places-backend/store/memstore"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// The doubles below are shared by concurrent callers; counters are only
// read once those callers are done.
type fakeGeocoder struct {
	mu    sync.Mutex
	loc   models.Location
	err   error
	calls int
}

func (g *fakeGeocoder) Resolve(ctx context.Context, address string) (models.Location, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return models.Location{}, g.err
	}
	return g.loc, nil
}

type fakeIndex struct {
	mu         sync.Mutex
	entries    map[string]models.Location
	nearby     []string
	lastRadius float64
	addErr     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: make(map[string]models.Location)}
}

func (i *fakeIndex) Add(ctx context.Context, place models.Place) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.addErr != nil {
		return i.addErr
	}
	i.entries[place.ID] = place.Location
	return nil
}

func (i *fakeIndex) Remove(ctx context.Context, placeID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, placeID)
	return nil
}

func (i *fakeIndex) Nearby(ctx context.Context, center models.Location, radiusKm float64, limit int) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.lastRadius = radiusKm
	return i.nearby, nil
}

type fakeAssets struct {
	mu        sync.Mutex
	deleted   []string
	deleteErr error
}

func (a *fakeAssets) Save(ctx context.Context, r io.Reader, ext string) (string, error) {
	return "uploads/images/fake." + ext, nil
}

func (a *fakeAssets) DeleteByPath(ctx context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleted = append(a.deleted, path)
	return a.deleteErr
}

// failingUserStore fails Save, after the unit has already inserted a place.
type failingUserStore struct {
	store.UserStore
	mu      sync.Mutex
	saveErr error
	saves   int
}

func (f *failingUserStore) Save(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	f.saves++
	f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.UserStore.Save(ctx, user)
}

// recordingPlaceStore counts writes so tests can assert that none happened.
type recordingPlaceStore struct {
	store.PlaceStore
	mu     sync.Mutex
	writes int
}

func (r *recordingPlaceStore) recordWrite() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
}

func (r *recordingPlaceStore) Insert(ctx context.Context, p *models.Place) error {
	r.recordWrite()
	return r.PlaceStore.Insert(ctx, p)
}

func (r *recordingPlaceStore) Save(ctx context.Context, p *models.Place) error {
	r.recordWrite()
	return r.PlaceStore.Save(ctx, p)
}

func (r *recordingPlaceStore) DeleteByID(ctx context.Context, id string) error {
	r.recordWrite()
	return r.PlaceStore.DeleteByID(ctx, id)
}

var errStoreDown = errors.New("connection reset by peer")

type testEnv struct {
	mem      *memstore.Store
	places   *recordingPlaceStore
	users    *failingUserStore
	geocoder *fakeGeocoder
	assets   *fakeAssets
	index    *fakeIndex
	svc      *PlaceService
	userSvc  *UserService
}

func newTestHasher() *PasswordHasher {
	return NewPasswordHasherWithCost(bcrypt.MinCost, 5*time.Second)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := memstore.New()
	env := &testEnv{
		mem:      mem,
		places:   &recordingPlaceStore{PlaceStore: mem.Places()},
		users:    &failingUserStore{UserStore: mem.Users()},
		geocoder: &fakeGeocoder{loc: models.Location{Lat: 51.523, Lng: -0.1586}},
		assets:   &fakeAssets{},
		index:    newFakeIndex(),
	}
	env.svc = NewPlaceService(PlaceServiceConfig{
		Places:     env.places,
		Users:      env.users,
		UnitOfWork: mem,
		Geocoder:   env.geocoder,
		Assets:     env.assets,
		Index:      env.index,
		TxTimeout:  time.Second,
	})
	env.userSvc = NewUserService(mem.Users(), newTestHasher(), NewTokenIssuer("test-secret", time.Hour))
	return env
}

func (e *testEnv) signup(t *testing.T, name, email string) string {
	t.Helper()
	res, err := e.userSvc.Signup(context.Background(), SignupRequest{Name: name, Email: email, Password: "secret123", Image: "uploads/images/" + name + ".png"})
	require.NoError(t, err)
	return res.UserID
}

func (e *testEnv) createPlace(t *testing.T, creatorID string) *models.Place {
	t.Helper()
	place, err := e.svc.CreatePlace(context.Background(), CreatePlaceRequest{
		Title:       "Tower",
		Description: "desc",
		Address:     "221B Baker St, London",
		CreatorID:   creatorID,
		Image:       "uploads/images/tower.png",
	})
	require.NoError(t, err)
	return place
}

// raceUserStore hides existing emails from the pre-check, as if a concurrent
// signup inserted between check and insert.
type raceUserStore struct {
	store.UserStore
}

func (r *raceUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, store.ErrNotFound
}
