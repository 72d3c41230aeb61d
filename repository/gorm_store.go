package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore builds a Store over a gorm connection. The connection must be
// opened with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Tutors() TutorRepository {
	return &gormTutorRepository{db: s.db}
}

func (s *gormStore) Bookings() BookingRepository {
	return &gormBookingRepository{db: s.db}
}

func (s *gormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return translateGormError(err)
	}
	return translateGormError(sqlDB.PingContext(ctx))
}

func (s *gormStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translateGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrConflict
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
}
