package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/models"
	"github.com/skillswap-labs/skillswap-api/internal/repository"
)

var (
	// ErrAvatarTooLarge indicates the uploaded image exceeds the size limit.
	ErrAvatarTooLarge = errors.New("avatar exceeds the maximum allowed size")
	// ErrAvatarNotImage indicates the uploaded file is not a supported image.
	ErrAvatarNotImage = errors.New("avatar must be a png, jpeg or webp image")
	// ErrAvatarStorageUnavailable indicates no upload backend is configured.
	ErrAvatarStorageUnavailable = errors.New("avatar storage is not configured")
)

// AvatarStorage persists avatar images and returns their public URL.
type AvatarStorage interface {
	UploadAvatar(ctx context.Context, userID uint, name string, reader io.Reader) (string, error)
}

// ProfileService exposes profile reads, edits and avatar uploads.
type ProfileService interface {
	GetProfile(ctx context.Context, userID uint) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.UserResponse, error)
	UploadAvatar(ctx context.Context, userID uint, filename string, size int64, reader io.Reader) (dto.AvatarUploadResponse, error)
}

type profileService struct {
	users        repository.UserRepository
	storage      AvatarStorage
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
	maxAvatarLen int64
}

// NewProfileService constructs the profile service. maxAvatarMB bounds the
// accepted avatar upload size.
func NewProfileService(users repository.UserRepository, storage AvatarStorage, validate *validator.Validate, maxAvatarMB int, logger zerolog.Logger) ProfileService {
	return &profileService{
		users:        users,
		storage:      storage,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger.With().Str("component", "profile_service").Logger(),
		maxAvatarLen: int64(maxAvatarMB) * 1024 * 1024,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		user.Profile.Bio = s.sanitizer.Sanitize(*req.Bio)
	}
	if req.TeachSkills != nil {
		user.Profile.TeachSkills = normalizeSkills(*req.TeachSkills)
	}
	if req.LearnSkills != nil {
		user.Profile.LearnSkills = normalizeSkills(*req.LearnSkills)
	}
	if req.Availability != nil {
		user.Profile.Availability = *req.Availability
	}
	if req.Location != nil {
		user.Profile.Location = *req.Location
	}
	if req.Language != nil {
		user.Profile.Language = *req.Language
	}
	if req.Timezone != nil {
		user.Profile.Timezone = *req.Timezone
	}
	if req.ExperienceLevel != nil {
		user.Profile.ExperienceLevel = *req.ExperienceLevel
	}
	if req.HourlyRate != nil {
		user.Profile.HourlyRate = req.HourlyRate
	}
	if req.Website != nil {
		user.Profile.Website = *req.Website
	}
	if req.SocialLinks != nil {
		user.Profile.SocialLinks = datatypes.JSONMap{
			"github":   req.SocialLinks.Github,
			"linkedin": req.SocialLinks.Linkedin,
			"twitter":  req.SocialLinks.Twitter,
		}
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("profile updated")
	return dto.NewUserResponse(user), nil
}

func (s *profileService) UploadAvatar(ctx context.Context, userID uint, filename string, size int64, reader io.Reader) (dto.AvatarUploadResponse, error) {
	if s.storage == nil {
		return dto.AvatarUploadResponse{}, ErrAvatarStorageUnavailable
	}
	if size > s.maxAvatarLen {
		return dto.AvatarUploadResponse{}, ErrAvatarTooLarge
	}

	payload, err := io.ReadAll(io.LimitReader(reader, s.maxAvatarLen+1))
	if err != nil {
		return dto.AvatarUploadResponse{}, fmt.Errorf("failed to read avatar: %w", err)
	}
	if int64(len(payload)) > s.maxAvatarLen {
		return dto.AvatarUploadResponse{}, ErrAvatarTooLarge
	}

	kind := mimetype.Detect(payload)
	if !isSupportedAvatarType(kind.String()) {
		return dto.AvatarUploadResponse{}, ErrAvatarNotImage
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return dto.AvatarUploadResponse{}, err
	}

	url, err := s.storage.UploadAvatar(ctx, userID, filename, bytes.NewReader(payload))
	if err != nil {
		return dto.AvatarUploadResponse{}, err
	}

	user.Profile.Avatar = url
	if err := s.users.Update(ctx, &user); err != nil {
		return dto.AvatarUploadResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Str("mime", kind.String()).
		Int("bytes", len(payload)).
		Msg("avatar stored")

	return dto.AvatarUploadResponse{URL: url}, nil
}

func isSupportedAvatarType(mime string) bool {
	switch mime {
	case "image/png", "image/jpeg", "image/webp":
		return true
	}
	return false
}

func normalizeSkills(skills []string) models.SkillList {
	out := make(models.SkillList, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
