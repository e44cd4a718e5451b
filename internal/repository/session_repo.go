package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/models"
)

// BalanceStats aggregates the hour totals derived from logged sessions.
type BalanceStats struct {
	HoursTaught   float64
	HoursLearned  float64
	TotalSessions int
}

// SessionRepository persists logged sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uint) (models.Session, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Session, error)
	ListRecent(ctx context.Context, limit int) ([]models.Session, error)
	Balance(ctx context.Context, userID uint) (BalanceStats, error)
	MarkRated(ctx context.Context, id uint) error
	CountAll(ctx context.Context) (int64, error)
	TotalHours(ctx context.Context) (float64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a session repository backed by GORM.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("Teacher").Preload("Student").First(session, session.ID).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, id uint) (models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Student").
		First(&session, id).Error
	if err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *sessionRepository) ListForUser(ctx context.Context, userID uint) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Student").
		Where("teacher_id = ? OR student_id = ?", userID, userID).
		Order("date DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) ListRecent(ctx context.Context, limit int) ([]models.Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Student").
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) Balance(ctx context.Context, userID uint) (BalanceStats, error) {
	var stats BalanceStats

	type sums struct {
		Hours float64
		Count int
	}

	var taught sums
	err := r.db.WithContext(ctx).Model(&models.Session{}).
		Select("COALESCE(SUM(hours), 0) AS hours, COUNT(*) AS count").
		Where("teacher_id = ?", userID).
		Scan(&taught).Error
	if err != nil {
		return BalanceStats{}, err
	}

	var learned sums
	err = r.db.WithContext(ctx).Model(&models.Session{}).
		Select("COALESCE(SUM(hours), 0) AS hours, COUNT(*) AS count").
		Where("student_id = ?", userID).
		Scan(&learned).Error
	if err != nil {
		return BalanceStats{}, err
	}

	stats.HoursTaught = taught.Hours
	stats.HoursLearned = learned.Hours
	stats.TotalSessions = taught.Count + learned.Count
	return stats, nil
}

func (r *sessionRepository) MarkRated(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Update("rated", true).Error
}

func (r *sessionRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Session{}).Count(&count).Error
	return count, err
}

func (r *sessionRepository) TotalHours(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Session{}).
		Select("COALESCE(SUM(hours), 0)").
		Scan(&total).Error
	return total, err
}
