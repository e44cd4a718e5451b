package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// User roles recognised by the platform.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SkillList stores a list of skill names as a JSON column.
type SkillList []string

// Value implements driver.Valuer.
func (s SkillList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	payload, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan implements sql.Scanner.
func (s *SkillList) Scan(value interface{}) error {
	if value == nil {
		*s = SkillList{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported skill list type %T", value)
	}
}

// Profile holds the public-facing portion of a user account.
type Profile struct {
	Bio             string            `gorm:"type:text" json:"bio"`
	TeachSkills     SkillList         `gorm:"type:json" json:"teach_skills"`
	LearnSkills     SkillList         `gorm:"type:json" json:"learn_skills"`
	Availability    string            `gorm:"size:128" json:"availability"`
	Location        string            `gorm:"size:128" json:"location"`
	Avatar          string            `gorm:"size:512" json:"avatar"`
	Language        string            `gorm:"size:64;default:English" json:"language"`
	Timezone        string            `gorm:"size:64" json:"timezone"`
	ExperienceLevel string            `gorm:"size:32" json:"experience_level"`
	HourlyRate      *float64          `json:"hourly_rate"`
	Website         string            `gorm:"size:255" json:"website"`
	SocialLinks     datatypes.JSONMap `gorm:"type:json" json:"social_links"`
}

// UserStats carries denormalized activity counters. Informational only;
// the session subsystem remains the source of truth for balances.
type UserStats struct {
	CompletedSessions int     `json:"completed_sessions"`
	HoursTaught       float64 `json:"hours_taught"`
	HoursLearned      float64 `json:"hours_learned"`
	ResponseRate      float64 `json:"response_rate"`
}

// User represents a registered member of the skill exchange.
type User struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Name                 string     `gorm:"size:255;not null" json:"name"`
	Email                string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password             string     `gorm:"size:255;not null" json:"-"`
	Role                 string     `gorm:"size:16;not null;default:user" json:"role"`
	IsVerified           bool       `gorm:"not null;default:false" json:"is_verified"`
	VerificationToken    string     `gorm:"size:64;index" json:"-"`
	ResetPasswordToken   string     `gorm:"size:64" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	Profile              Profile    `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
	Stats                UserStats  `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
