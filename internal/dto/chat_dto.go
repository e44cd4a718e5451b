package dto

import (
	"time"

	"github.com/skillswap-labs/skillswap-api/internal/models"
)

// ChatSendRequest is the payload for posting a message into a conversation.
// The recipient is derived from the swap request, never supplied by clients.
type ChatSendRequest struct {
	SwapRequestID uint   `json:"swap_request_id" validate:"required"`
	Message       string `json:"message" validate:"required,min=1,max=2000"`
}

// ChatMessageResponse is the serialized representation of a chat message.
type ChatMessageResponse struct {
	ID            uint      `json:"id"`
	SwapRequestID uint      `json:"swap_request_id"`
	FromUserID    uint      `json:"from_user_id"`
	FromUserName  string    `json:"from_user_name,omitempty"`
	ToUserID      uint      `json:"to_user_id"`
	Message       string    `json:"message"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

// ConversationLastMessage summarizes the newest message in a conversation.
type ConversationLastMessage struct {
	Text      string    `json:"text"`
	FromMe    bool      `json:"from_me"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationResponse is the per-relationship aggregate of all accepted
// swap requests between the caller and one other user.
type ConversationResponse struct {
	SwapRequestID    uint                     `json:"swap_request_id"`
	OtherUser        AuthUserResponse         `json:"other_user"`
	OtherUserAvatar  string                   `json:"other_user_avatar,omitempty"`
	LastMessage      *ConversationLastMessage `json:"last_message,omitempty"`
	UnreadCount      int64                    `json:"unread_count"`
	Skills           string                   `json:"skills"`
	SwapRequestCount int                      `json:"swap_request_count"`
}

// UnreadCountResponse is the total number of unread messages for a user.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// ChatInboundEvent is the envelope read from a websocket client.
type ChatInboundEvent struct {
	Type          string `json:"type" validate:"required,oneof=message typing stop_typing"`
	SwapRequestID uint   `json:"swap_request_id" validate:"required"`
	Message       string `json:"message" validate:"omitempty,max=2000"`
	UserName      string `json:"user_name" validate:"omitempty,max=100"`
}

// ChatOutboundEvent is the envelope written to websocket clients.
type ChatOutboundEvent struct {
	Type          string               `json:"type"`
	SwapRequestID uint                 `json:"swap_request_id,omitempty"`
	UserID        uint                 `json:"user_id,omitempty"`
	UserName      string               `json:"user_name,omitempty"`
	Message       *ChatMessageResponse `json:"message,omitempty"`
	Error         string               `json:"error,omitempty"`
}

// NewChatMessageResponse converts a chat message model into its DTO.
func NewChatMessageResponse(message models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:            message.ID,
		SwapRequestID: message.SwapRequestID,
		FromUserID:    message.FromUserID,
		FromUserName:  message.FromUser.Name,
		ToUserID:      message.ToUserID,
		Message:       message.Message,
		IsRead:        message.IsRead,
		CreatedAt:     message.CreatedAt,
	}
}

// NewChatMessageResponseSlice converts a slice of chat messages into DTOs.
func NewChatMessageResponseSlice(messages []models.ChatMessage) []ChatMessageResponse {
	out := make([]ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewChatMessageResponse(message))
	}
	return out
}
