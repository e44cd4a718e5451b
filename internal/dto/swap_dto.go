package dto

import (
	"time"

	"github.com/skillswap-labs/skillswap-api/internal/models"
)

// SwapRequestCreateRequest is the payload for sending a swap request.
type SwapRequestCreateRequest struct {
	ToUserID     uint   `json:"to_user_id" validate:"required"`
	SkillToTeach string `json:"skill_to_teach" validate:"required,min=1,max=128"`
	SkillToLearn string `json:"skill_to_learn" validate:"required,min=1,max=128"`
	Message      string `json:"message" validate:"required,min=10,max=500"`
}

// SwapRequestResponse is the serialized representation of a swap request.
type SwapRequestResponse struct {
	ID           uint              `json:"id"`
	FromUser     AuthUserResponse  `json:"from_user"`
	ToUser       AuthUserResponse  `json:"to_user"`
	SkillToTeach string            `json:"skill_to_teach"`
	SkillToLearn string            `json:"skill_to_learn"`
	Message      string            `json:"message"`
	Status       string            `json:"status"`
	RespondedAt  *time.Time        `json:"responded_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ConnectionStatusResponse reports whether two users share an active request.
type ConnectionStatusResponse struct {
	Connected bool                 `json:"connected"`
	Status    string               `json:"status,omitempty"`
	Request   *SwapRequestResponse `json:"request,omitempty"`
}

// PendingCountResponse is the inbound pending request counter for UI badges.
type PendingCountResponse struct {
	Count int64 `json:"count"`
}

// NewSwapRequestResponse converts a swap request model into its DTO.
func NewSwapRequestResponse(request models.SwapRequest) SwapRequestResponse {
	return SwapRequestResponse{
		ID:           request.ID,
		FromUser:     NewAuthUserResponse(request.FromUser),
		ToUser:       NewAuthUserResponse(request.ToUser),
		SkillToTeach: request.SkillToTeach,
		SkillToLearn: request.SkillToLearn,
		Message:      request.Message,
		Status:       request.Status,
		RespondedAt:  request.RespondedAt,
		CreatedAt:    request.CreatedAt,
	}
}

// NewSwapRequestResponseSlice converts a slice of swap requests into DTOs.
func NewSwapRequestResponseSlice(requests []models.SwapRequest) []SwapRequestResponse {
	out := make([]SwapRequestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, NewSwapRequestResponse(request))
	}
	return out
}
