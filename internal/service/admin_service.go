package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/models"
	"github.com/skillswap-labs/skillswap-api/internal/repository"
)

const topSkillsLimit = 10

// AdminService backs the admin reporting and moderation endpoints.
type AdminService interface {
	PlatformStats(ctx context.Context) (dto.PlatformStatsResponse, error)
	TopSkills(ctx context.Context) (dto.TopSkillsResponse, error)
	SearchUsers(ctx context.Context, query string) ([]dto.UserResponse, error)
	RecentActivity(ctx context.Context, limit int) (dto.RecentActivityResponse, error)
	DeleteUser(ctx context.Context, userID uint) error
}

type adminService struct {
	admin    repository.AdminRepository
	users    repository.UserRepository
	swaps    repository.SwapRequestRepository
	sessions repository.SessionRepository
	logger   zerolog.Logger
}

// NewAdminService constructs the admin service.
func NewAdminService(admin repository.AdminRepository, users repository.UserRepository, swaps repository.SwapRequestRepository, sessions repository.SessionRepository, logger zerolog.Logger) AdminService {
	return &adminService{
		admin:    admin,
		users:    users,
		swaps:    swaps,
		sessions: sessions,
		logger:   logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *adminService) PlatformStats(ctx context.Context) (dto.PlatformStatsResponse, error) {
	tracer := otel.Tracer("github.com/skillswap-labs/skillswap-api/internal/service/admin")
	ctx, span := tracer.Start(ctx, "admin.platform_stats")
	defer span.End()

	totalUsers, err := s.admin.CountUsers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_users_failed")
		return dto.PlatformStatsResponse{}, err
	}

	verifiedUsers, err := s.admin.CountVerifiedUsers(ctx)
	if err != nil {
		return dto.PlatformStatsResponse{}, err
	}

	totalSwaps, err := s.swaps.CountAll(ctx)
	if err != nil {
		return dto.PlatformStatsResponse{}, err
	}

	acceptedSwaps, err := s.swaps.CountByStatus(ctx, models.SwapStatusAccepted)
	if err != nil {
		return dto.PlatformStatsResponse{}, err
	}

	totalSessions, err := s.sessions.CountAll(ctx)
	if err != nil {
		return dto.PlatformStatsResponse{}, err
	}

	totalHours, err := s.sessions.TotalHours(ctx)
	if err != nil {
		return dto.PlatformStatsResponse{}, err
	}

	acceptanceRate := 0
	if totalSwaps > 0 {
		acceptanceRate = int(math.Round(float64(acceptedSwaps) / float64(totalSwaps) * 100))
	}

	span.SetAttributes(
		attribute.Int64("admin.total_users", totalUsers),
		attribute.Int64("admin.total_swaps", totalSwaps),
	)

	return dto.PlatformStatsResponse{
		TotalUsers:        totalUsers,
		VerifiedUsers:     verifiedUsers,
		TotalSwapRequests: totalSwaps,
		AcceptedSwaps:     acceptedSwaps,
		AcceptanceRate:    acceptanceRate,
		TotalSessions:     totalSessions,
		TotalHours:        totalHours,
	}, nil
}

func (s *adminService) TopSkills(ctx context.Context) (dto.TopSkillsResponse, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return dto.TopSkillsResponse{}, err
	}

	teach := make(map[string]*dto.SkillCount)
	learn := make(map[string]*dto.SkillCount)
	for _, user := range users {
		countSkills(teach, user.Profile.TeachSkills)
		countSkills(learn, user.Profile.LearnSkills)
	}

	return dto.TopSkillsResponse{
		TopTeach: rankSkills(teach, topSkillsLimit),
		TopLearn: rankSkills(learn, topSkillsLimit),
	}, nil
}

func (s *adminService) SearchUsers(ctx context.Context, query string) ([]dto.UserResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		users, err := s.users.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return dto.NewUserResponseSlice(users), nil
	}

	users, err := s.users.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *adminService) RecentActivity(ctx context.Context, limit int) (dto.RecentActivityResponse, error) {
	users, err := s.users.ListRecent(ctx, limit)
	if err != nil {
		return dto.RecentActivityResponse{}, err
	}

	sessions, err := s.sessions.ListRecent(ctx, limit)
	if err != nil {
		return dto.RecentActivityResponse{}, err
	}

	recentUsers := make([]dto.AuthUserResponse, 0, len(users))
	for _, user := range users {
		recentUsers = append(recentUsers, dto.NewAuthUserResponse(user))
	}

	return dto.RecentActivityResponse{
		RecentUsers:    recentUsers,
		RecentSessions: dto.NewSessionResponseSlice(sessions),
	}, nil
}

// DeleteUser removes the account and everything hanging off it: swap
// requests, chat messages, sessions, ratings and notifications.
func (s *adminService) DeleteUser(ctx context.Context, userID uint) error {
	if err := s.admin.DeleteUserCascade(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info().Uint("user_id", userID).Msg("user deleted by admin")
	return nil
}

func countSkills(counts map[string]*dto.SkillCount, skills models.SkillList) {
	for _, skill := range skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if entry, ok := counts[key]; ok {
			entry.Count++
			continue
		}
		counts[key] = &dto.SkillCount{Skill: trimmed, Count: 1}
	}
}

func rankSkills(counts map[string]*dto.SkillCount, limit int) []dto.SkillCount {
	ranked := make([]dto.SkillCount, 0, len(counts))
	for _, entry := range counts {
		ranked = append(ranked, *entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Skill < ranked[j].Skill
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
