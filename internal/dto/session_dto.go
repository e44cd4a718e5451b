package dto

import (
	"time"

	"github.com/skillswap-labs/skillswap-api/internal/models"
)

// SessionLogRequest records a completed teach/learn meeting. Role describes
// the caller's part in the session.
type SessionLogRequest struct {
	PartnerID uint      `json:"partner_id" validate:"required"`
	Skill     string    `json:"skill" validate:"required,min=1,max=128"`
	Hours     float64   `json:"hours" validate:"required,gte=0.5"`
	Date      time.Time `json:"date" validate:"required"`
	Role      string    `json:"role" validate:"required,oneof=teacher student"`
}

// SessionResponse is the serialized representation of a session.
type SessionResponse struct {
	ID        uint             `json:"id"`
	Teacher   AuthUserResponse `json:"teacher"`
	Student   AuthUserResponse `json:"student"`
	Skill     string           `json:"skill"`
	Hours     float64          `json:"hours"`
	Date      time.Time        `json:"date"`
	Rated     bool             `json:"rated"`
	CreatedAt time.Time        `json:"created_at"`
}

// SessionDetailResponse adds rating affordances to a session.
type SessionDetailResponse struct {
	Session    SessionResponse  `json:"session"`
	UserToRate AuthUserResponse `json:"user_to_rate"`
	CanRate    bool             `json:"can_rate"`
}

// BalanceResponse is the aggregate hour balance derived from sessions.
type BalanceResponse struct {
	HoursTaught   float64 `json:"hours_taught"`
	HoursLearned  float64 `json:"hours_learned"`
	Balance       float64 `json:"balance"`
	TotalSessions int     `json:"total_sessions"`
}

// RatingSubmitRequest scores a completed session.
type RatingSubmitRequest struct {
	SessionID   uint   `json:"session_id" validate:"required"`
	RatedUserID uint   `json:"rated_user_id" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Comment     string `json:"comment" validate:"omitempty,max=500"`
	RaterRole   string `json:"rater_role" validate:"required,oneof=teacher student"`
}

// RatingResponse is the serialized representation of a rating.
type RatingResponse struct {
	ID          uint      `json:"id"`
	SessionID   uint      `json:"session_id"`
	RaterID     uint      `json:"rater_id"`
	RatedUserID uint      `json:"rated_user_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	RaterRole   string    `json:"rater_role"`
	CreatedAt   time.Time `json:"created_at"`
}

// AverageRatingResponse is a user's mean received rating.
type AverageRatingResponse struct {
	UserID  uint    `json:"user_id"`
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// NewSessionResponse converts a session model into its DTO.
func NewSessionResponse(session models.Session) SessionResponse {
	return SessionResponse{
		ID:        session.ID,
		Teacher:   NewAuthUserResponse(session.Teacher),
		Student:   NewAuthUserResponse(session.Student),
		Skill:     session.Skill,
		Hours:     session.Hours,
		Date:      session.Date,
		Rated:     session.Rated,
		CreatedAt: session.CreatedAt,
	}
}

// NewSessionResponseSlice converts a slice of sessions into DTOs.
func NewSessionResponseSlice(sessions []models.Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, NewSessionResponse(session))
	}
	return out
}

// NewRatingResponse converts a rating model into its DTO.
func NewRatingResponse(rating models.Rating) RatingResponse {
	return RatingResponse{
		ID:          rating.ID,
		SessionID:   rating.SessionID,
		RaterID:     rating.RaterID,
		RatedUserID: rating.RatedUserID,
		Rating:      rating.Rating,
		Comment:     rating.Comment,
		RaterRole:   rating.RaterRole,
		CreatedAt:   rating.CreatedAt,
	}
}

// NewRatingResponseSlice converts ratings into DTOs.
func NewRatingResponseSlice(ratings []models.Rating) []RatingResponse {
	out := make([]RatingResponse, 0, len(ratings))
	for _, rating := range ratings {
		out = append(out, NewRatingResponse(rating))
	}
	return out
}
