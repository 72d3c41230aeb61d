package repository

import (
	"context"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/models"
	"gorm.io/gorm"
)

type gormTutorRepository struct {
	db *gorm.DB
}

func (r *gormTutorRepository) filtered(ctx context.Context, filter models.TutorFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Tutor{})
	if filter.OwnerEmail != "" {
		query = query.Where("email = ?", filter.OwnerEmail)
	}
	if filter.Language != "" {
		query = query.Where("language ILIKE ?", "%"+escapeLike(filter.Language)+"%")
	}
	return query
}

func (r *gormTutorRepository) List(ctx context.Context, filter models.TutorFilter, page, pageSize int) (*models.TutorPage, error) {
	page, pageSize = ClampPage(page, pageSize)

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, translateGormError(err)
	}

	tutors := []models.Tutor{}
	if err := r.filtered(ctx, filter).
		Order("id asc").
		Offset(Offset(page, pageSize)).
		Limit(pageSize).
		Find(&tutors).Error; err != nil {
		return nil, translateGormError(err)
	}

	return &models.TutorPage{
		Items:      tutors,
		Page:       page,
		TotalPages: TotalPages(total, pageSize),
		TotalItems: total,
	}, nil
}

func (r *gormTutorRepository) GetByID(ctx context.Context, id string) (*models.Tutor, error) {
	var tutor models.Tutor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tutor).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &tutor, nil
}

func (r *gormTutorRepository) ListByCategory(ctx context.Context, category string) ([]models.Tutor, error) {
	tutors := []models.Tutor{}
	err := r.db.WithContext(ctx).
		Where("language = ?", NormalizeCategory(category)).
		Order("id asc").
		Find(&tutors).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return tutors, nil
}

func (r *gormTutorRepository) Create(ctx context.Context, tutor *models.Tutor) error {
	tutor.Review = 0
	return translateGormError(r.db.WithContext(ctx).Create(tutor).Error)
}

func (r *gormTutorRepository) Update(ctx context.Context, id string, update models.TutorUpdate) (*models.Tutor, error) {
	result := r.db.WithContext(ctx).Model(&models.Tutor{}).Where("id = ?", id).Updates(update.Fields())
	if result.Error != nil {
		return nil, translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound.WithMessage("tutor not found")
	}
	return r.GetByID(ctx, id)
}

func (r *gormTutorRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Tutor{}, "id = ?", id)
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithMessage("tutor not found")
	}
	return nil
}

func (r *gormTutorRepository) IncrementReview(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&models.Tutor{}).
		Where("id = ?", id).
		UpdateColumn("review", gorm.Expr("review + ?", 1))
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUpdateFailed
	}
	return nil
}

func (r *gormTutorRepository) RaiseReviewCount(ctx context.Context, id string, from, to int) (bool, error) {
	if to <= from {
		return false, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Tutor{}).
		Where("id = ? AND review = ?", id, from).
		UpdateColumn("review", to)
	if result.Error != nil {
		return false, translateGormError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormTutorRepository) ReviewCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		ID     string
		Review int
	}
	if err := r.db.WithContext(ctx).Model(&models.Tutor{}).Select("id, review").Scan(&rows).Error; err != nil {
		return nil, translateGormError(err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Review
	}
	return counts, nil
}

func (r *gormTutorRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Tutor{}).Count(&total).Error
	return total, translateGormError(err)
}

func (r *gormTutorRepository) CountLanguages(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Tutor{}).Distinct("language").Count(&total).Error
	return total, translateGormError(err)
}

func (r *gormTutorRepository) SumReviews(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Tutor{}).Select("COALESCE(SUM(review), 0)").Row().Scan(&total)
	return total, translateGormError(err)
}
