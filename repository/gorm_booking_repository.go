package repository

import (
	"context"
	"errors"

	"github.com/anjiri1684/tutor_hunt/models"
	"gorm.io/gorm"
)

type gormBookingRepository struct {
	db *gorm.DB
}

func (r *gormBookingRepository) FindByTutorAndUser(ctx context.Context, tutorID, userEmail string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("tutor_id = ? AND user_email = ?", tutorID, userEmail).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateGormError(err)
	}
	return &booking, nil
}

func (r *gormBookingRepository) ListByUser(ctx context.Context, userEmail string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.WithContext(ctx).
		Where("user_email = ?", userEmail).
		Order("id asc").
		Find(&bookings).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return bookings, nil
}

func (r *gormBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.HasReviewed = false
	return translateGormError(r.db.WithContext(ctx).Create(booking).Error)
}

func (r *gormBookingRepository) MarkReviewed(ctx context.Context, tutorID, userEmail string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("tutor_id = ? AND user_email = ? AND has_reviewed = ?", tutorID, userEmail, false).
		UpdateColumn("has_reviewed", true)
	if result.Error != nil {
		return false, translateGormError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormBookingRepository) CountReviewedByTutor(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		TutorID  string
		Reviewed int
	}
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Select("tutor_id, COUNT(*) AS reviewed").
		Where("has_reviewed = ?", true).
		Group("tutor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.TutorID] = row.Reviewed
	}
	return counts, nil
}

func (r *gormBookingRepository) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).Distinct("user_email").Count(&total).Error
	return total, translateGormError(err)
}
