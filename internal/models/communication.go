package models

import "time"

// ChatMessage is a single message exchanged inside an accepted swap request.
// Messages reference whichever request was named when they were sent; the
// chat service merges them per user pair when reading.
type ChatMessage struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	SwapRequestID uint        `gorm:"not null;index" json:"swap_request_id"`
	SwapRequest   SwapRequest `gorm:"foreignKey:SwapRequestID" json:"-"`
	FromUserID    uint        `gorm:"not null;index" json:"from_user_id"`
	ToUserID      uint        `gorm:"not null;index" json:"to_user_id"`
	FromUser      User        `gorm:"foreignKey:FromUserID" json:"from_user"`
	ToUser        User        `gorm:"foreignKey:ToUserID" json:"-"`
	Message       string      `gorm:"type:text;not null" json:"message"`
	IsRead        bool        `gorm:"not null;default:false" json:"is_read"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Notification represents an in-app notification targeted to a specific user.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:64" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
