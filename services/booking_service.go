// Package services holds the booking workflow and the stats aggregator.
package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/auth"
	"github.com/anjiri1684/tutor_hunt/models"
	"github.com/anjiri1684/tutor_hunt/repository"
)

const notifyTimeout = 15 * time.Second

var (
	errAlreadyBooked   = apperrors.ErrConflict.WithMessage("already booked")
	errNotBooked       = apperrors.ErrNotFound.WithMessage("not booked")
	errAlreadyReviewed = apperrors.ErrForbidden.WithMessage("already reviewed")
	errTutorNotFound   = apperrors.ErrNotFound.WithMessage("tutor not found")
	errEmailMismatch   = apperrors.ErrForbidden.WithMessage("forbidden access")
)

// BookingNotifier tells a tutor's owner about a new booking.
type BookingNotifier interface {
	NotifyBooking(ctx context.Context, tutor models.Tutor, booking models.Booking) error
}

// ChangeListener is told after every successful write.
type ChangeListener interface {
	Changed(ctx context.Context)
}

type BookingService struct {
	store    repository.Store
	notifier BookingNotifier
	listener ChangeListener
}

func NewBookingService(store repository.Store, notifier BookingNotifier, listener ChangeListener) *BookingService {
	return &BookingService{store: store, notifier: notifier, listener: listener}
}

type CreateBookingInput struct {
	TutorID   string
	UserEmail string
	Details   models.BookingDetails
}

// CreateBooking records that a user booked a tutor. A second booking for the
// same pair is a Conflict, whether caught by the lookup or by the unique index.
func (s *BookingService) CreateBooking(ctx context.Context, identity auth.Identity, in CreateBookingInput) (*models.Booking, error) {
	tutorID := strings.TrimSpace(in.TutorID)
	userEmail := strings.TrimSpace(in.UserEmail)
	if userEmail == "" {
		userEmail = identity.Email
	}
	if tutorID == "" {
		return nil, apperrors.ErrBadRequest.WithMessage("tutorId is required")
	}
	if userEmail == "" {
		return nil, apperrors.ErrBadRequest.WithMessage("userEmail is required")
	}

	bookings := s.store.Bookings()
	existing, err := bookings.FindByTutorAndUser(ctx, tutorID, userEmail)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errAlreadyBooked
	}

	booking := &models.Booking{
		TutorID:   tutorID,
		UserEmail: userEmail,
		Details:   in.Details,
	}
	if err := bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, errAlreadyBooked
		}
		return nil, err
	}

	s.notifyOwner(*booking)
	s.changed(ctx)
	return booking, nil
}

func (s *BookingService) notifyOwner(booking models.Booking) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		tutor, err := s.store.Tutors().GetByID(ctx, booking.TutorID)
		if err != nil {
			log.Printf("booking %s: tutor %s lookup for notification: %v", booking.ID, booking.TutorID, err)
			return
		}
		if err := s.notifier.NotifyBooking(ctx, *tutor, booking); err != nil {
			log.Printf("booking %s: notify %s: %v", booking.ID, tutor.Email, err)
		}
	}()
}

// SubmitReview accepts one review per booking. The booking flag and the
// tutor counter change together or not at all.
func (s *BookingService) SubmitReview(ctx context.Context, identity auth.Identity, tutorID, targetEmail string) error {
	targetEmail = strings.TrimSpace(targetEmail)
	if targetEmail == "" {
		return apperrors.ErrBadRequest.WithMessage("email is required")
	}
	if identity.Email != targetEmail {
		return errEmailMismatch
	}

	if _, err := s.store.Tutors().GetByID(ctx, tutorID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return errTutorNotFound
		}
		return err
	}

	booking, err := s.store.Bookings().FindByTutorAndUser(ctx, tutorID, targetEmail)
	if err != nil {
		return err
	}
	if booking == nil {
		return errNotBooked
	}
	if booking.HasReviewed {
		return errAlreadyReviewed
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		changed, err := tx.Bookings().MarkReviewed(ctx, tutorID, targetEmail)
		if err != nil {
			return err
		}
		if !changed {
			return errAlreadyReviewed
		}
		if err := tx.Tutors().IncrementReview(ctx, tutorID); err != nil {
			if errors.Is(err, apperrors.ErrUpdateFailed) {
				return apperrors.ErrInternal.WithMessage("failed to update review")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.changed(ctx)
	return nil
}

// ListBookings returns the caller's own bookings in creation order.
func (s *BookingService) ListBookings(ctx context.Context, identity auth.Identity, email string) ([]models.Booking, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.ErrBadRequest.WithMessage("email is required")
	}
	if identity.Email != email {
		return nil, errEmailMismatch
	}
	return s.store.Bookings().ListByUser(ctx, email)
}

func (s *BookingService) changed(ctx context.Context) {
	if s.listener != nil {
		s.listener.Changed(ctx)
	}
}
