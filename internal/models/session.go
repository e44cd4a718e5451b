package models

import "time"

// Rater roles on a logged session.
const (
	RaterRoleTeacher = "teacher"
	RaterRoleStudent = "student"
)

// Session is a completed teach/learn meeting between two matched users.
// Immutable once logged except for the Rated flag.
type Session struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeacherID uint      `gorm:"not null;index:idx_session_pair" json:"teacher_id"`
	StudentID uint      `gorm:"not null;index:idx_session_pair" json:"student_id"`
	Teacher   User      `gorm:"foreignKey:TeacherID" json:"teacher"`
	Student   User      `gorm:"foreignKey:StudentID" json:"student"`
	Skill     string    `gorm:"size:128;not null" json:"skill"`
	Hours     float64   `gorm:"not null" json:"hours"`
	Date      time.Time `gorm:"not null;index" json:"date"`
	Rated     bool      `gorm:"not null;default:false" json:"rated"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsParticipant reports whether the user took part in the session.
func (s Session) IsParticipant(userID uint) bool {
	return s.TeacherID == userID || s.StudentID == userID
}

// Rating records one participant's score for a session. The unique index on
// (session_id, rater_id) guarantees at most one rating per rater per session.
type Rating struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   uint      `gorm:"not null;uniqueIndex:idx_rating_session_rater" json:"session_id"`
	RaterID     uint      `gorm:"not null;uniqueIndex:idx_rating_session_rater" json:"rater_id"`
	RatedUserID uint      `gorm:"not null;index" json:"rated_user_id"`
	Rating      int       `gorm:"not null" json:"rating"`
	Comment     string    `gorm:"size:500" json:"comment"`
	RaterRole   string    `gorm:"size:16;not null" json:"rater_role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
