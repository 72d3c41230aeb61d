package repository

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_hunt/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// bookingDocument keeps client-supplied booking fields at the top level of the
// document, next to the server-owned ones.
type bookingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	TutorID     string             `bson:"tutorId"`
	UserEmail   string             `bson:"userEmail"`
	HasReviewed bool               `bson:"hasReviewed"`
	Extra       bson.M             `bson:",inline"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d bookingDocument) model() models.Booking {
	return models.Booking{
		ID:          d.ID.Hex(),
		TutorID:     d.TutorID,
		UserEmail:   d.UserEmail,
		HasReviewed: d.HasReviewed,
		Details:     models.BookingDetails(d.Extra).Extra(),
		CreatedAt:   d.CreatedAt,
	}
}

type mongoBookingRepository struct {
	collection *mongo.Collection
}

func (r *mongoBookingRepository) FindByTutorAndUser(ctx context.Context, tutorID, userEmail string) (*models.Booking, error) {
	var doc bookingDocument
	err := r.collection.FindOne(ctx, bson.M{"tutorId": tutorID, "userEmail": userEmail}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, translateMongoError(err)
	}
	booking := doc.model()
	return &booking, nil
}

func (r *mongoBookingRepository) ListByUser(ctx context.Context, userEmail string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userEmail": userEmail}, opts)
	if err != nil {
		return nil, translateMongoError(err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, translateMongoError(err)
		}
		bookings = append(bookings, doc.model())
	}
	return bookings, translateMongoError(cursor.Err())
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.HasReviewed = false
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	doc := bookingDocument{
		ID:          primitive.NewObjectID(),
		TutorID:     booking.TutorID,
		UserEmail:   booking.UserEmail,
		HasReviewed: false,
		Extra:       bson.M(booking.Details.Extra()),
		CreatedAt:   booking.CreatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err)
	}
	booking.ID = doc.ID.Hex()
	return nil
}

func (r *mongoBookingRepository) MarkReviewed(ctx context.Context, tutorID, userEmail string) (bool, error) {
	filter := bson.M{"tutorId": tutorID, "userEmail": userEmail, "hasReviewed": false}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"hasReviewed": true}})
	if err != nil {
		return false, translateMongoError(err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *mongoBookingRepository) CountReviewedByTutor(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"hasReviewed": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$tutorId", "reviewed": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translateMongoError(err)
	}
	defer cursor.Close(ctx)

	counts := map[string]int{}
	for cursor.Next(ctx) {
		var row struct {
			TutorID  string `bson:"_id"`
			Reviewed int    `bson:"reviewed"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, translateMongoError(err)
		}
		counts[row.TutorID] = row.Reviewed
	}
	return counts, translateMongoError(cursor.Err())
}

func (r *mongoBookingRepository) CountUsers(ctx context.Context) (int64, error) {
	users, err := r.collection.Distinct(ctx, "userEmail", bson.M{})
	if err != nil {
		return 0, translateMongoError(err)
	}
	return int64(len(users)), nil
}
