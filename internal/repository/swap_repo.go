package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/models"
)

// ErrActiveSwapExists indicates an active (pending or accepted) request
// already exists for the ordered user pair.
var ErrActiveSwapExists = errors.New("active swap request already exists")

// SwapRequestRepository persists swap requests and their lifecycle updates.
type SwapRequestRepository interface {
	// CreateIfNoActive inserts the request unless an active one already
	// exists for the same ordered (from, to) pair. The check and insert
	// run inside one transaction to close the duplicate-send race.
	CreateIfNoActive(ctx context.Context, request *models.SwapRequest) error
	FindByID(ctx context.Context, id uint) (models.SwapRequest, error)
	Inbox(ctx context.Context, userID uint, status string) ([]models.SwapRequest, error)
	Outbox(ctx context.Context, userID uint, status string) ([]models.SwapRequest, error)
	// Respond flips a pending request addressed to recipientID into the
	// given terminal status. Returns gorm.ErrRecordNotFound when the
	// request is missing, not owned, or no longer pending.
	Respond(ctx context.Context, id, recipientID uint, status string) (models.SwapRequest, error)
	// Cancel flips a pending request sent by senderID to cancelled.
	Cancel(ctx context.Context, id, senderID uint) (models.SwapRequest, error)
	CountPending(ctx context.Context, userID uint) (int64, error)
	ListBetween(ctx context.Context, userID1, userID2 uint) ([]models.SwapRequest, error)
	AcceptedForUser(ctx context.Context, userID uint) ([]models.SwapRequest, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type swapRequestRepository struct {
	db *gorm.DB
}

// NewSwapRequestRepository constructs a swap request repository backed by GORM.
func NewSwapRequestRepository(db *gorm.DB) SwapRequestRepository {
	return &swapRequestRepository{db: db}
}

func (r *swapRequestRepository) CreateIfNoActive(ctx context.Context, request *models.SwapRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.SwapRequest{}).
			Where("from_user_id = ? AND to_user_id = ? AND status IN ?",
				request.FromUserID, request.ToUserID, models.ActiveSwapStatuses).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrActiveSwapExists
		}

		return tx.Create(request).Error
	})
}

func (r *swapRequestRepository) FindByID(ctx context.Context, id uint) (models.SwapRequest, error) {
	var request models.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("FromUser").
		Preload("ToUser").
		First(&request, id).Error
	if err != nil {
		return models.SwapRequest{}, err
	}
	return request, nil
}

func (r *swapRequestRepository) Inbox(ctx context.Context, userID uint, status string) ([]models.SwapRequest, error) {
	return r.list(ctx, "to_user_id", userID, status)
}

func (r *swapRequestRepository) Outbox(ctx context.Context, userID uint, status string) ([]models.SwapRequest, error) {
	return r.list(ctx, "from_user_id", userID, status)
}

func (r *swapRequestRepository) list(ctx context.Context, column string, userID uint, status string) ([]models.SwapRequest, error) {
	query := r.db.WithContext(ctx).
		Preload("FromUser").
		Preload("ToUser").
		Where(column+" = ?", userID)

	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var requests []models.SwapRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *swapRequestRepository) Respond(ctx context.Context, id, recipientID uint, status string) (models.SwapRequest, error) {
	now := time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&models.SwapRequest{}).
		Where("id = ? AND to_user_id = ? AND status = ?", id, recipientID, models.SwapStatusPending).
		Updates(map[string]interface{}{"status": status, "responded_at": now})
	if result.Error != nil {
		return models.SwapRequest{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.SwapRequest{}, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *swapRequestRepository) Cancel(ctx context.Context, id, senderID uint) (models.SwapRequest, error) {
	result := r.db.WithContext(ctx).Model(&models.SwapRequest{}).
		Where("id = ? AND from_user_id = ? AND status = ?", id, senderID, models.SwapStatusPending).
		Update("status", models.SwapStatusCancelled)
	if result.Error != nil {
		return models.SwapRequest{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.SwapRequest{}, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *swapRequestRepository) CountPending(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SwapRequest{}).
		Where("to_user_id = ? AND status = ?", userID, models.SwapStatusPending).
		Count(&count).Error
	return count, err
}

func (r *swapRequestRepository) ListBetween(ctx context.Context, userID1, userID2 uint) ([]models.SwapRequest, error) {
	var requests []models.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("FromUser").
		Preload("ToUser").
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *swapRequestRepository) AcceptedForUser(ctx context.Context, userID uint) ([]models.SwapRequest, error) {
	var requests []models.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("FromUser").
		Preload("ToUser").
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?", userID, userID, models.SwapStatusAccepted).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *swapRequestRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SwapRequest{}).Count(&count).Error
	return count, err
}

func (r *swapRequestRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SwapRequest{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
