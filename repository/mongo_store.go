package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	TutorCollection   = "tutors"
	BookingCollection = "booked-tutors"
)

type mongoStore struct {
	client   *mongo.Client
	tutors   *mongo.Collection
	bookings *mongo.Collection
}

// NewMongoStore builds a Store over the tutors and booked-tutors collections
// of database. Transactions need a replica set or a sharded cluster.
func NewMongoStore(client *mongo.Client, database string) Store {
	db := client.Database(database)
	return &mongoStore{
		client:   client,
		tutors:   db.Collection(TutorCollection),
		bookings: db.Collection(BookingCollection),
	}
}

// EnsureMongoIndexes creates the indexes the queries and the booking uniqueness rely on.
func EnsureMongoIndexes(ctx context.Context, client *mongo.Client, database string) error {
	db := client.Database(database)

	_, err := db.Collection(BookingCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tutorId", Value: 1}, {Key: "userEmail", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("tutor_user_unique"),
		},
		{Keys: bson.D{{Key: "userEmail", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("booking indexes: %w", err)
	}

	_, err = db.Collection(TutorCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "language", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("tutor indexes: %w", err)
	}
	return nil
}

func (s *mongoStore) Tutors() TutorRepository {
	return &mongoTutorRepository{collection: s.tutors}
}

func (s *mongoStore) Bookings() BookingRepository {
	return &mongoBookingRepository{collection: s.bookings}
}

// WithTransaction hands fn a session context; every repository call made with
// it joins the transaction.
func (s *mongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return translateMongoError(err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return translateMongoError(err)
}

func (s *mongoStore) Ping(ctx context.Context) error {
	return translateMongoError(s.client.Ping(ctx, readpref.Primary()))
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translateMongoError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return apperrors.ErrConflict
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
}
