// Package repository is the data-access layer for tutors and bookings.
//
// Two stores implement it: Postgres through gorm and MongoDB through the
// official driver. Both translate driver errors into apperrors values so the
// layers above never see a driver type.
package repository

import (
	"context"
	"math"

	"github.com/anjiri1684/tutor_hunt/models"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps Offset within int for every allowed page size.
	MaxPage         = math.MaxInt / MaxPageSize
)

type TutorRepository interface {
	List(ctx context.Context, filter models.TutorFilter, page, pageSize int) (*models.TutorPage, error)
	GetByID(ctx context.Context, id string) (*models.Tutor, error)
	ListByCategory(ctx context.Context, category string) ([]models.Tutor, error)
	Create(ctx context.Context, tutor *models.Tutor) error
	Update(ctx context.Context, id string, update models.TutorUpdate) (*models.Tutor, error)
	Delete(ctx context.Context, id string) error
	IncrementReview(ctx context.Context, id string) error
	// RaiseReviewCount sets the counter to `to` only while it still equals
	// `from` and to is greater, and reports whether it did. Counters never go down.
	RaiseReviewCount(ctx context.Context, id string, from, to int) (bool, error)
	// ReviewCounts returns the stored review counter of every tutor keyed by id.
	ReviewCounts(ctx context.Context) (map[string]int, error)
	Count(ctx context.Context) (int64, error)
	CountLanguages(ctx context.Context) (int64, error)
	SumReviews(ctx context.Context) (int64, error)
}

type BookingRepository interface {
	// FindByTutorAndUser returns nil, nil when no booking exists for the pair.
	FindByTutorAndUser(ctx context.Context, tutorID, userEmail string) (*models.Booking, error)
	ListByUser(ctx context.Context, userEmail string) ([]models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	// MarkReviewed flips hasReviewed only while it is still false and reports whether it did.
	MarkReviewed(ctx context.Context, tutorID, userEmail string) (bool, error)
	CountReviewedByTutor(ctx context.Context) (map[string]int, error)
	CountUsers(ctx context.Context) (int64, error)
}

// Store bundles the repositories with a transaction boundary.
type Store interface {
	Tutors() TutorRepository
	Bookings() BookingRepository
	// WithTransaction runs fn so that every write made through tx commits or rolls back together.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
