package models

import "time"

// Swap request lifecycle states. Every state except pending is terminal.
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusDeclined  = "declined"
	SwapStatusCancelled = "cancelled"
)

// ActiveSwapStatuses are the states that block a second request for the
// same ordered user pair.
var ActiveSwapStatuses = []string{SwapStatusPending, SwapStatusAccepted}

// SwapRequest is a proposal from one user to another to exchange a taught
// skill for a desired skill.
type SwapRequest struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	FromUserID   uint       `gorm:"not null;index:idx_swap_pair_status" json:"from_user_id"`
	ToUserID     uint       `gorm:"not null;index:idx_swap_pair_status;index" json:"to_user_id"`
	FromUser     User       `gorm:"foreignKey:FromUserID" json:"from_user"`
	ToUser       User       `gorm:"foreignKey:ToUserID" json:"to_user"`
	SkillToTeach string     `gorm:"size:128;not null" json:"skill_to_teach"`
	SkillToLearn string     `gorm:"size:128;not null" json:"skill_to_learn"`
	Message      string     `gorm:"type:text;not null" json:"message"`
	Status       string     `gorm:"size:16;not null;default:pending;index:idx_swap_pair_status" json:"status"`
	RespondedAt  *time.Time `json:"responded_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsParticipant reports whether the given user is either side of the request.
func (r SwapRequest) IsParticipant(userID uint) bool {
	return r.FromUserID == userID || r.ToUserID == userID
}

// OtherParty returns the counterpart of the given participant.
func (r SwapRequest) OtherParty(userID uint) uint {
	if r.FromUserID == userID {
		return r.ToUserID
	}
	return r.FromUserID
}
