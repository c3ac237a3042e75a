// Package mongostore persists users and places in MongoDB. Units of work run
// inside a session transaction, which requires a replica set deployment.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sjbaraho/app-places-backend/models"
	"github.com/sjbaraho/app-places-backend/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	usersCollection  = "users"
	placesCollection = "places"
)

type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	places *mongo.Collection
}

// Connect dials MongoDB, checks the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Println("Connected to MongoDB")

	db := client.Database(database)
	s := &Store{
		client: client,
		users:  db.Collection(usersCollection),
		places: db.Collection(placesCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// The unique email index is the authoritative guard against two concurrent
// signups with the same address.
func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	_, err = s.places.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "creator", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create places creator index: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Users() *UserStore   { return &UserStore{c: s.users} }
func (s *Store) Places() *PlaceStore { return &PlaceStore{c: s.places} }

// Do implements store.UnitOfWork. WithTransaction retries fn on transient
// transaction errors (for example a write conflict on the owning user) and
// aborts the transaction when fn returns an error.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	}, txOpts)
	return err
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	default:
		return err
	}
}

type UserStore struct{ c *mongo.Collection }

func (us *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := us.c.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (us *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := us.c.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (us *UserStore) Insert(ctx context.Context, user *models.User) error {
	if user.Places == nil {
		user.Places = []string{}
	}
	_, err := us.c.InsertOne(ctx, user)
	return mapErr(err)
}

func (us *UserStore) Save(ctx context.Context, user *models.User) error {
	if user.Places == nil {
		user.Places = []string{}
	}
	res, err := us.c.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (us *UserStore) List(ctx context.Context) ([]models.User, error) {
	cursor, err := us.c.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"password_hash": 0}))
	if err != nil {
		return nil, mapErr(err)
	}
	defer cursor.Close(ctx)
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type PlaceStore struct{ c *mongo.Collection }

func (ps *PlaceStore) FindByID(ctx context.Context, id string) (*models.Place, error) {
	var place models.Place
	if err := ps.c.FindOne(ctx, bson.M{"_id": id}).Decode(&place); err != nil {
		return nil, mapErr(err)
	}
	return &place, nil
}

func (ps *PlaceStore) FindByCreator(ctx context.Context, userID string) ([]models.Place, error) {
	cursor, err := ps.c.Find(ctx, bson.M{"creator": userID})
	if err != nil {
		return nil, mapErr(err)
	}
	defer cursor.Close(ctx)
	var places []models.Place
	if err := cursor.All(ctx, &places); err != nil {
		return nil, err
	}
	return places, nil
}

func (ps *PlaceStore) Insert(ctx context.Context, place *models.Place) error {
	_, err := ps.c.InsertOne(ctx, place)
	return mapErr(err)
}

func (ps *PlaceStore) Save(ctx context.Context, place *models.Place) error {
	res, err := ps.c.ReplaceOne(ctx, bson.M{"_id": place.ID}, place)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (ps *PlaceStore) DeleteByID(ctx context.Context, id string) error {
	res, err := ps.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
