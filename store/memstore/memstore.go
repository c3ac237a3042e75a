// Package memstore keeps users and places in process memory. It backs the
// "memory" store driver and the service tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/sjbaraho/app-places-backend/models"
	"github.com/sjbaraho/app-places-backend/store"
)

type txKey struct{}

// Store serializes units of work behind a single lock and restores a
// snapshot when a unit fails.
type Store struct {
	mu     sync.Mutex
	users  map[string]models.User
	places map[string]models.Place
	// insertion order, so listings are stable
	userOrder  []string
	placeOrder []string
}

func New() *Store {
	return &Store{
		users:  make(map[string]models.User),
		places: make(map[string]models.Place),
	}
}

func (s *Store) Users() *UserStore   { return &UserStore{s: s} }
func (s *Store) Places() *PlaceStore { return &PlaceStore{s: s} }

type snapshot struct {
	users      map[string]models.User
	places     map[string]models.Place
	userOrder  []string
	placeOrder []string
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		users:      make(map[string]models.User, len(s.users)),
		places:     make(map[string]models.Place, len(s.places)),
		userOrder:  append([]string(nil), s.userOrder...),
		placeOrder: append([]string(nil), s.placeOrder...),
	}
	for id, u := range s.users {
		snap.users[id] = cloneUser(u)
	}
	for id, p := range s.places {
		snap.places[id] = p
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.places = snap.places
	s.userOrder = snap.userOrder
	s.placeOrder = snap.placeOrder
}

// Do implements store.UnitOfWork. Nested calls join the outer unit.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.restore(snap)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock takes the store lock unless ctx already belongs to a unit holding it.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func cloneUser(u models.User) models.User {
	u.Places = append([]string{}, u.Places...)
	return u
}

type UserStore struct{ s *Store }

func (us *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	defer us.s.lock(ctx)()
	u, ok := us.s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

func (us *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer us.s.lock(ctx)()
	for _, id := range us.s.userOrder {
		if u := us.s.users[id]; u.Email == email {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (us *UserStore) Insert(ctx context.Context, user *models.User) error {
	defer us.s.lock(ctx)()
	if _, ok := us.s.users[user.ID]; ok {
		return store.ErrDuplicate
	}
	for _, u := range us.s.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	us.s.users[user.ID] = cloneUser(*user)
	us.s.userOrder = append(us.s.userOrder, user.ID)
	return nil
}

func (us *UserStore) Save(ctx context.Context, user *models.User) error {
	defer us.s.lock(ctx)()
	if _, ok := us.s.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	for id, u := range us.s.users {
		if id != user.ID && u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	us.s.users[user.ID] = cloneUser(*user)
	return nil
}

func (us *UserStore) List(ctx context.Context) ([]models.User, error) {
	defer us.s.lock(ctx)()
	users := make([]models.User, 0, len(us.s.userOrder))
	for _, id := range us.s.userOrder {
		users = append(users, cloneUser(us.s.users[id]))
	}
	return users, nil
}

type PlaceStore struct{ s *Store }

func (ps *PlaceStore) FindByID(ctx context.Context, id string) (*models.Place, error) {
	defer ps.s.lock(ctx)()
	p, ok := ps.s.places[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (ps *PlaceStore) FindByCreator(ctx context.Context, userID string) ([]models.Place, error) {
	defer ps.s.lock(ctx)()
	var places []models.Place
	for _, id := range ps.s.placeOrder {
		if p := ps.s.places[id]; p.Creator == userID {
			places = append(places, p)
		}
	}
	return places, nil
}

func (ps *PlaceStore) Insert(ctx context.Context, place *models.Place) error {
	defer ps.s.lock(ctx)()
	if _, ok := ps.s.places[place.ID]; ok {
		return store.ErrDuplicate
	}
	ps.s.places[place.ID] = *place
	ps.s.placeOrder = append(ps.s.placeOrder, place.ID)
	return nil
}

func (ps *PlaceStore) Save(ctx context.Context, place *models.Place) error {
	defer ps.s.lock(ctx)()
	if _, ok := ps.s.places[place.ID]; !ok {
		return store.ErrNotFound
	}
	ps.s.places[place.ID] = *place
	return nil
}

func (ps *PlaceStore) DeleteByID(ctx context.Context, id string) error {
	defer ps.s.lock(ctx)()
	if _, ok := ps.s.places[id]; !ok {
		return store.ErrNotFound
	}
	delete(ps.s.places, id)
	ps.s.placeOrder = removeID(ps.s.placeOrder, id)
	return nil
}

// Len returns the number of stored users and places.
func (s *Store) Len() (users, places int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), len(s.places)
}

// PlaceIDs returns all stored place ids, sorted.
func (s *Store) PlaceIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.places))
	for id := range s.places {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
