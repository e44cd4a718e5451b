package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/models"
)

// AdminRepository provides the cross-entity reads and writes reserved for
// administrators.
type AdminRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountVerifiedUsers(ctx context.Context) (int64, error)
	// DeleteUserCascade removes the user together with their swap
	// requests, chat messages, sessions, ratings and notifications in a
	// single transaction.
	DeleteUserCascade(ctx context.Context, userID uint) error
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository constructs an admin repository backed by GORM.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *adminRepository) CountVerifiedUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("is_verified = ?", true).
		Count(&count).Error
	return count, err
}

func (r *adminRepository) DeleteUserCascade(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var requestIDs []uint
		err := tx.Model(&models.SwapRequest{}).
			Where("from_user_id = ? OR to_user_id = ?", userID, userID).
			Pluck("id", &requestIDs).Error
		if err != nil {
			return err
		}

		if len(requestIDs) > 0 {
			if err := tx.Where("swap_request_id IN ?", requestIDs).Delete(&models.ChatMessage{}).Error; err != nil {
				return err
			}
		}

		var sessionIDs []uint
		err = tx.Model(&models.Session{}).
			Where("teacher_id = ? OR student_id = ?", userID, userID).
			Pluck("id", &sessionIDs).Error
		if err != nil {
			return err
		}

		if len(sessionIDs) > 0 {
			if err := tx.Where("session_id IN ?", sessionIDs).Delete(&models.Rating{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", sessionIDs).Delete(&models.Session{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("from_user_id = ? OR to_user_id = ?", userID, userID).Delete(&models.SwapRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("rater_id = ? OR rated_user_id = ?", userID, userID).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
