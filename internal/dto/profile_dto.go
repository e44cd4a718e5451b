package dto

import (
	"time"

	"github.com/skillswap-labs/skillswap-api/internal/models"
)

// SocialLinksRequest mirrors the optional social profiles on a user.
type SocialLinksRequest struct {
	Github   string `json:"github" validate:"omitempty,max=255"`
	Linkedin string `json:"linkedin" validate:"omitempty,max=255"`
	Twitter  string `json:"twitter" validate:"omitempty,max=255"`
}

// ProfileUpdateRequest is the payload for profile edits. Nil pointers leave
// the stored value untouched.
type ProfileUpdateRequest struct {
	Name            *string             `json:"name" validate:"omitempty,min=2,max=100"`
	Bio             *string             `json:"bio" validate:"omitempty,max=1000"`
	TeachSkills     *[]string           `json:"teach_skills" validate:"omitempty,max=50,dive,min=1,max=128"`
	LearnSkills     *[]string           `json:"learn_skills" validate:"omitempty,max=50,dive,min=1,max=128"`
	Availability    *string             `json:"availability" validate:"omitempty,max=128"`
	Location        *string             `json:"location" validate:"omitempty,max=128"`
	Language        *string             `json:"language" validate:"omitempty,max=64"`
	Timezone        *string             `json:"timezone" validate:"omitempty,max=64"`
	ExperienceLevel *string             `json:"experience_level" validate:"omitempty,oneof=Beginner Intermediate Advanced Expert"`
	HourlyRate      *float64            `json:"hourly_rate" validate:"omitempty,gte=0"`
	Website         *string             `json:"website" validate:"omitempty,max=255"`
	SocialLinks     *SocialLinksRequest `json:"social_links"`
}

// ProfileResponse is the serialized profile section of a user.
type ProfileResponse struct {
	Bio             string            `json:"bio"`
	TeachSkills     []string          `json:"teach_skills"`
	LearnSkills     []string          `json:"learn_skills"`
	Availability    string            `json:"availability"`
	Location        string            `json:"location"`
	Avatar          string            `json:"avatar"`
	Language        string            `json:"language"`
	Timezone        string            `json:"timezone"`
	ExperienceLevel string            `json:"experience_level"`
	HourlyRate      *float64          `json:"hourly_rate"`
	Website         string            `json:"website"`
	SocialLinks     map[string]string `json:"social_links"`
}

// UserResponse is the full public representation of a user account.
type UserResponse struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	Verified  bool             `json:"verified"`
	Profile   ProfileResponse  `json:"profile"`
	Stats     models.UserStats `json:"stats"`
	CreatedAt time.Time        `json:"created_at"`
}

// AvatarUploadResponse returns the stored avatar location.
type AvatarUploadResponse struct {
	URL string `json:"url"`
}

// NewProfileResponse converts the embedded profile into its DTO.
func NewProfileResponse(profile models.Profile) ProfileResponse {
	links := make(map[string]string)
	for key, value := range profile.SocialLinks {
		if str, ok := value.(string); ok {
			links[key] = str
		}
	}

	teach := profile.TeachSkills
	if teach == nil {
		teach = []string{}
	}
	learn := profile.LearnSkills
	if learn == nil {
		learn = []string{}
	}

	return ProfileResponse{
		Bio:             profile.Bio,
		TeachSkills:     teach,
		LearnSkills:     learn,
		Availability:    profile.Availability,
		Location:        profile.Location,
		Avatar:          profile.Avatar,
		Language:        profile.Language,
		Timezone:        profile.Timezone,
		ExperienceLevel: profile.ExperienceLevel,
		HourlyRate:      profile.HourlyRate,
		Website:         profile.Website,
		SocialLinks:     links,
	}
}

// NewUserResponse converts a user model into its DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Verified:  user.IsVerified,
		Profile:   NewProfileResponse(user.Profile),
		Stats:     user.Stats,
		CreatedAt: user.CreatedAt,
	}
}

// NewUserResponseSlice converts a slice of users into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}
