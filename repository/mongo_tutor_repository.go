package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type tutorDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Email       string             `bson:"email"`
	Name        string             `bson:"name,omitempty"`
	Language    string             `bson:"language"`
	Price       float64            `bson:"price"`
	Image       string             `bson:"image"`
	Description string             `bson:"description"`
	Review      int                `bson:"review"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty"`
}

func newTutorDocument(t *models.Tutor) tutorDocument {
	return tutorDocument{
		Email:       t.Email,
		Name:        t.Name,
		Language:    t.Language,
		Price:       t.Price,
		Image:       t.Image,
		Description: t.Description,
		Review:      t.Review,
		CreatedAt:   t.CreatedAt,
	}
}

func (d tutorDocument) model() models.Tutor {
	return models.Tutor{
		ID:          d.ID.Hex(),
		Email:       d.Email,
		Name:        d.Name,
		Language:    d.Language,
		Price:       d.Price,
		Image:       d.Image,
		Description: d.Description,
		Review:      d.Review,
		CreatedAt:   d.CreatedAt,
	}
}

func tutorListFilter(filter models.TutorFilter) bson.M {
	query := bson.M{}
	if filter.OwnerEmail != "" {
		query["email"] = filter.OwnerEmail
	}
	if filter.Language != "" {
		query["language"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Language), Options: "i"}
	}
	return query
}

type mongoTutorRepository struct {
	collection *mongo.Collection
}

func decodeTutors(ctx context.Context, cursor *mongo.Cursor) ([]models.Tutor, error) {
	defer cursor.Close(ctx)

	tutors := []models.Tutor{}
	for cursor.Next(ctx) {
		var doc tutorDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, translateMongoError(err)
		}
		tutors = append(tutors, doc.model())
	}
	return tutors, translateMongoError(cursor.Err())
}

func (r *mongoTutorRepository) List(ctx context.Context, filter models.TutorFilter, page, pageSize int) (*models.TutorPage, error) {
	page, pageSize = ClampPage(page, pageSize)
	query := tutorListFilter(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, translateMongoError(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(Offset(page, pageSize))).
		SetLimit(int64(pageSize))
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, translateMongoError(err)
	}
	tutors, err := decodeTutors(ctx, cursor)
	if err != nil {
		return nil, err
	}

	return &models.TutorPage{
		Items:      tutors,
		Page:       page,
		TotalPages: TotalPages(total, pageSize),
		TotalItems: total,
	}, nil
}

func (r *mongoTutorRepository) GetByID(ctx context.Context, id string) (*models.Tutor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrNotFound.WithMessage("tutor not found")
	}

	var doc tutorDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	tutor := doc.model()
	return &tutor, nil
}

func (r *mongoTutorRepository) ListByCategory(ctx context.Context, category string) ([]models.Tutor, error) {
	query := bson.M{"language": bson.M{"$eq": NormalizeCategory(category)}}
	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translateMongoError(err)
	}
	return decodeTutors(ctx, cursor)
}

func (r *mongoTutorRepository) Create(ctx context.Context, tutor *models.Tutor) error {
	tutor.Review = 0
	if tutor.CreatedAt.IsZero() {
		tutor.CreatedAt = time.Now().UTC()
	}
	doc := newTutorDocument(tutor)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err)
	}
	tutor.ID = doc.ID.Hex()
	return nil
}

func (r *mongoTutorRepository) Update(ctx context.Context, id string, update models.TutorUpdate) (*models.Tutor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrNotFound.WithMessage("tutor not found")
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc tutorDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": update.Fields()}, opts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotFound.WithMessage("tutor not found")
		}
		return nil, translateMongoError(err)
	}
	tutor := doc.model()
	return &tutor, nil
}

func (r *mongoTutorRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrNotFound.WithMessage("tutor not found")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translateMongoError(err)
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound.WithMessage("tutor not found")
	}
	return nil
}

func (r *mongoTutorRepository) IncrementReview(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrUpdateFailed
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"review": 1}})
	if err != nil {
		return translateMongoError(err)
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrUpdateFailed
	}
	return nil
}

func (r *mongoTutorRepository) RaiseReviewCount(ctx context.Context, id string, from, to int) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil || to <= from {
		return false, nil
	}

	filter := bson.M{"_id": oid, "review": from}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"review": to}})
	if err != nil {
		return false, translateMongoError(err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *mongoTutorRepository) ReviewCounts(ctx context.Context) (map[string]int, error) {
	opts := options.Find().SetProjection(bson.M{"review": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translateMongoError(err)
	}
	defer cursor.Close(ctx)

	counts := map[string]int{}
	for cursor.Next(ctx) {
		var doc struct {
			ID     primitive.ObjectID `bson:"_id"`
			Review int                `bson:"review"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, translateMongoError(err)
		}
		counts[doc.ID.Hex()] = doc.Review
	}
	return counts, translateMongoError(cursor.Err())
}

func (r *mongoTutorRepository) Count(ctx context.Context) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	return total, translateMongoError(err)
}

func (r *mongoTutorRepository) CountLanguages(ctx context.Context) (int64, error) {
	languages, err := r.collection.Distinct(ctx, "language", bson.M{})
	if err != nil {
		return 0, translateMongoError(err)
	}
	return int64(len(languages)), nil
}

func (r *mongoTutorRepository) SumReviews(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$review"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, translateMongoError(err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total int64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, translateMongoError(err)
		}
	}
	return result.Total, translateMongoError(cursor.Err())
}
