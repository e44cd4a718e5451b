package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/models"
)

// RatingRepository persists session ratings.
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	FindBySessionAndRater(ctx context.Context, sessionID, raterID uint) (models.Rating, error)
	ListForUser(ctx context.Context, ratedUserID uint) ([]models.Rating, error)
	Average(ctx context.Context, ratedUserID uint) (float64, int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository constructs a rating repository backed by GORM.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *ratingRepository) FindBySessionAndRater(ctx context.Context, sessionID, raterID uint) (models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND rater_id = ?", sessionID, raterID).
		First(&rating).Error
	if err != nil {
		return models.Rating{}, err
	}
	return rating, nil
}

func (r *ratingRepository) ListForUser(ctx context.Context, ratedUserID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Where("rated_user_id = ?", ratedUserID).
		Order("created_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) Average(ctx context.Context, ratedUserID uint) (float64, int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Where("rated_user_id = ?", ratedUserID).
		Count(&count).Error
	if err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var average float64
	err = r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("AVG(rating)").
		Where("rated_user_id = ?", ratedUserID).
		Scan(&average).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, err
	}
	return average, count, nil
}
