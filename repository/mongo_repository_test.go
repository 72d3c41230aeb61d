package repository

import (
	"context"
	"testing"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const (
	tutorsNS   = "tutorsdb.tutors"
	bookingsNS = "tutorsdb.booked-tutors"
)

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func mockStore(mt *mtest.T) Store {
	return NewMongoStore(mt.Client, mt.DB.Name())
}

func updateResult(matched, modified int32) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: modified},
	)
}

// nextCommand returns the next command the client sent, failing when there is none.
func nextCommand(mt *mtest.T, name string) bson.Raw {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt, "expected a %s command", name)
	require.Equal(mt, name, evt.CommandName)
	return evt.Command
}

func TestMongoTutorList(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("pages with skip and limit", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, tutorsNS, mtest.FirstBatch, bson.D{{Key: "n", Value: 23}}),
			mtest.CreateCursorResponse(0, tutorsNS, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: oid},
				{Key: "email", Value: "owner@example.com"},
				{Key: "language", Value: "C++"},
				{Key: "review", Value: 2},
			}),
		)

		page, err := mockStore(mt).Tutors().List(ctx, models.TutorFilter{Language: "c++"}, 3, 10)
		require.NoError(mt, err)
		assert.Equal(mt, 3, page.Page)
		assert.Equal(mt, 3, page.TotalPages)
		assert.Equal(mt, int64(23), page.TotalItems)
		require.Len(mt, page.Items, 1)
		assert.Equal(mt, oid.Hex(), page.Items[0].ID)
		assert.Equal(mt, 2, page.Items[0].Review)

		nextCommand(mt, "aggregate")
		find := nextCommand(mt, "find")
		assert.Equal(mt, int64(20), find.Lookup("skip").AsInt64())
		assert.Equal(mt, int64(10), find.Lookup("limit").AsInt64())
		assert.Equal(mt, int64(1), find.Lookup("sort", "_id").AsInt64())
		pattern, options := find.Lookup("filter", "language").Regex()
		assert.Equal(mt, `c\+\+`, pattern)
		assert.Equal(mt, "i", options)
	})

	mt.Run("huge page keeps skip positive", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, tutorsNS, mtest.FirstBatch, bson.D{{Key: "n", Value: 3}}),
			mtest.CreateCursorResponse(0, tutorsNS, mtest.FirstBatch),
		)

		page, err := mockStore(mt).Tutors().List(ctx, models.TutorFilter{}, 1000000000000000001, 10)
		require.NoError(mt, err)
		assert.Empty(mt, page.Items)
		assert.Equal(mt, MaxPage, page.Page)

		nextCommand(mt, "aggregate")
		find := nextCommand(mt, "find")
		assert.Positive(mt, find.Lookup("skip").AsInt64())
	})
}

func TestMongoTutorLookups(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("found", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tutorsNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "email", Value: "owner@example.com"},
			{Key: "language", Value: "English"},
			{Key: "price", Value: 12.5},
		}))

		tutor, err := mockStore(mt).Tutors().GetByID(ctx, oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, "owner@example.com", tutor.Email)
		assert.Equal(mt, 12.5, tutor.Price)
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tutorsNS, mtest.FirstBatch))

		_, err := mockStore(mt).Tutors().GetByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		_, err := mockStore(mt).Tutors().GetByID(ctx, "not-an-object-id")
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("category matches exactly", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tutorsNS, mtest.FirstBatch))

		tutors, err := mockStore(mt).Tutors().ListByCategory(ctx, "eNGLISH")
		require.NoError(mt, err)
		assert.NotNil(mt, tutors)

		find := nextCommand(mt, "find")
		assert.Equal(mt, "English", find.Lookup("filter", "language", "$eq").StringValue())
	})
}

func TestMongoTutorWrites(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()
	id := primitive.NewObjectID().Hex()

	mt.Run("create stores a zero counter", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		tutor := &models.Tutor{Email: "owner@example.com", Language: "English", Review: 9}
		require.NoError(mt, mockStore(mt).Tutors().Create(ctx, tutor))
		assert.Len(mt, tutor.ID, 24)
		assert.Zero(mt, tutor.Review)

		insert := nextCommand(mt, "insert")
		assert.Equal(mt, int64(0), insert.Lookup("documents", "0", "review").AsInt64())
	})

	mt.Run("delete of a missing tutor", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := mockStore(mt).Tutors().Delete(ctx, id)
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
		assert.Equal(mt, "tutor not found", err.Error())
	})

	mt.Run("increment uses $inc", func(mt *mtest.T) {
		mt.AddMockResponses(updateResult(1, 1))

		require.NoError(mt, mockStore(mt).Tutors().IncrementReview(ctx, id))

		update := nextCommand(mt, "update")
		assert.Equal(mt, int64(1), update.Lookup("updates", "0", "u", "$inc", "review").AsInt64())
	})

	mt.Run("increment of a missing tutor", func(mt *mtest.T) {
		mt.AddMockResponses(updateResult(0, 0))

		err := mockStore(mt).Tutors().IncrementReview(ctx, id)
		assert.ErrorIs(mt, err, apperrors.ErrUpdateFailed)
	})

	mt.Run("raise is conditional on the old counter", func(mt *mtest.T) {
		mt.AddMockResponses(updateResult(1, 1), updateResult(0, 0))
		tutors := mockStore(mt).Tutors()

		raised, err := tutors.RaiseReviewCount(ctx, id, 1, 3)
		require.NoError(mt, err)
		assert.True(mt, raised)

		update := nextCommand(mt, "update")
		assert.Equal(mt, int64(1), update.Lookup("updates", "0", "q", "review").AsInt64())
		assert.Equal(mt, int64(3), update.Lookup("updates", "0", "u", "$set", "review").AsInt64())

		raised, err = tutors.RaiseReviewCount(ctx, id, 1, 3)
		require.NoError(mt, err)
		assert.False(mt, raised)
	})

	mt.Run("raise never lowers", func(mt *mtest.T) {
		raised, err := mockStore(mt).Tutors().RaiseReviewCount(ctx, id, 4, 2)
		require.NoError(mt, err)
		assert.False(mt, raised)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestMongoTutorAggregates(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("distinct languages", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{"English", "Spanish"}}))

		total, err := mockStore(mt).Tutors().CountLanguages(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), total)
		nextCommand(mt, "distinct")
	})

	mt.Run("sum of reviews", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tutorsNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: int64(12)},
		}))

		total, err := mockStore(mt).Tutors().SumReviews(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, int64(12), total)
	})

	mt.Run("sum over no tutors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tutorsNS, mtest.FirstBatch))

		total, err := mockStore(mt).Tutors().SumReviews(ctx)
		require.NoError(mt, err)
		assert.Zero(mt, total)
	})
}

func TestMongoBookings(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("create keeps extra fields at the top level", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		booking := &models.Booking{
			TutorID:   "t1",
			UserEmail: "ana@example.com",
			Details:   models.BookingDetails{"price": 15.0, "hasReviewed": true},
		}
		require.NoError(mt, mockStore(mt).Bookings().Create(ctx, booking))
		assert.Len(mt, booking.ID, 24)

		doc := nextCommand(mt, "insert").Lookup("documents", "0").Document()
		assert.Equal(mt, 15.0, doc.Lookup("price").Double())
		assert.False(mt, doc.Lookup("hasReviewed").Boolean())
		assert.Equal(mt, "t1", doc.Lookup("tutorId").StringValue())
		_, err := doc.LookupErr("details")
		assert.Error(mt, err)
	})

	mt.Run("duplicate pair is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: tutorsdb.booked-tutors index: tutor_user_unique",
		}))

		err := mockStore(mt).Bookings().Create(ctx, &models.Booking{TutorID: "t1", UserEmail: "ana@example.com"})
		assert.ErrorIs(mt, err, apperrors.ErrConflict)
	})

	mt.Run("list decodes top-level extras", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, bookingsNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "tutorId", Value: "t1"},
			{Key: "userEmail", Value: "ana@example.com"},
			{Key: "hasReviewed", Value: true},
			{Key: "price", Value: 20.0},
			{Key: "language", Value: "French"},
		}))

		bookings, err := mockStore(mt).Bookings().ListByUser(ctx, "ana@example.com")
		require.NoError(mt, err)
		require.Len(mt, bookings, 1)
		assert.True(mt, bookings[0].HasReviewed)
		assert.Equal(mt, models.BookingDetails{"price": 20.0, "language": "French"}, bookings[0].Details)
	})

	mt.Run("missing pair is nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, bookingsNS, mtest.FirstBatch))

		booking, err := mockStore(mt).Bookings().FindByTutorAndUser(ctx, "t1", "ana@example.com")
		require.NoError(mt, err)
		assert.Nil(mt, booking)
	})

	mt.Run("mark reviewed only flips false", func(mt *mtest.T) {
		mt.AddMockResponses(updateResult(1, 1), updateResult(0, 0))
		bookings := mockStore(mt).Bookings()

		changed, err := bookings.MarkReviewed(ctx, "t1", "ana@example.com")
		require.NoError(mt, err)
		assert.True(mt, changed)

		update := nextCommand(mt, "update")
		assert.False(mt, update.Lookup("updates", "0", "q", "hasReviewed").Boolean())
		assert.True(mt, update.Lookup("updates", "0", "u", "$set", "hasReviewed").Boolean())

		changed, err = bookings.MarkReviewed(ctx, "t1", "ana@example.com")
		require.NoError(mt, err)
		assert.False(mt, changed)
	})

	mt.Run("reviewed counts per tutor", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, bookingsNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "t1"}, {Key: "reviewed", Value: 2}},
			bson.D{{Key: "_id", Value: "t2"}, {Key: "reviewed", Value: 1}},
		))

		counts, err := mockStore(mt).Bookings().CountReviewedByTutor(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, map[string]int{"t1": 2, "t2": 1}, counts)
	})

	mt.Run("distinct users", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{"ana@example.com"}}))

		total, err := mockStore(mt).Bookings().CountUsers(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), total)
	})
}

func TestMongoWithTransaction(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()
	tutorID := primitive.NewObjectID().Hex()

	review := func(ctx context.Context, tx Store) error {
		changed, err := tx.Bookings().MarkReviewed(ctx, tutorID, "ana@example.com")
		if err != nil {
			return err
		}
		if !changed {
			return apperrors.ErrForbidden.WithMessage("already reviewed")
		}
		return tx.Tutors().IncrementReview(ctx, tutorID)
	}

	mt.Run("commits both writes", func(mt *mtest.T) {
		mt.AddMockResponses(updateResult(1, 1), updateResult(1, 1), mtest.CreateSuccessResponse())

		require.NoError(mt, mockStore(mt).WithTransaction(ctx, review))

		first := nextCommand(mt, "update")
		assert.True(mt, first.Lookup("startTransaction").Boolean())
		assert.False(mt, first.Lookup("autocommit").Boolean())
		second := nextCommand(mt, "update")
		assert.Equal(mt, first.Lookup("txnNumber").AsInt64(), second.Lookup("txnNumber").AsInt64())
		nextCommand(mt, "commitTransaction")
	})

	mt.Run("aborts when fn fails", func(mt *mtest.T) {
		mt.AddMockResponses(updateResult(1, 0), mtest.CreateSuccessResponse())

		err := mockStore(mt).WithTransaction(ctx, review)
		assert.ErrorIs(mt, err, apperrors.ErrForbidden)
		assert.Equal(mt, "already reviewed", err.Error())

		nextCommand(mt, "update")
		nextCommand(mt, "abortTransaction")
	})

	mt.Run("failed increment rolls back", func(mt *mtest.T) {
		mt.AddMockResponses(updateResult(1, 1), updateResult(0, 0), mtest.CreateSuccessResponse())

		err := mockStore(mt).WithTransaction(ctx, review)
		assert.ErrorIs(mt, err, apperrors.ErrUpdateFailed)

		nextCommand(mt, "update")
		nextCommand(mt, "update")
		nextCommand(mt, "abortTransaction")
	})
}
