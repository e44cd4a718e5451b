package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/repository"
)

// BrowseService produces the scored candidate listing and top matches for
// a viewer.
type BrowseService interface {
	Browse(ctx context.Context, viewerID uint, query dto.BrowseQuery) (dto.BrowseResponse, error)
	TopMatches(ctx context.Context, viewerID uint, limit int) ([]dto.MatchedUser, error)
	SearchSkills(ctx context.Context, query string) ([]string, error)
}

type browseService struct {
	users    repository.UserRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewBrowseService constructs the browse service.
func NewBrowseService(users repository.UserRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) BrowseService {
	return &browseService{
		users:    users,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "browse_service").Logger(),
	}
}

func (s *browseService) Browse(ctx context.Context, viewerID uint, query dto.BrowseQuery) (dto.BrowseResponse, error) {
	matched, locations, err := s.scoredListing(ctx, viewerID)
	if err != nil {
		return dto.BrowseResponse{}, err
	}

	matched = applyBrowseFilters(matched, query)

	switch query.Sort {
	case "newest":
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].User.CreatedAt.After(matched[j].User.CreatedAt)
		})
	case "name":
		sort.SliceStable(matched, func(i, j int) bool {
			return strings.ToLower(matched[i].User.Name) < strings.ToLower(matched[j].User.Name)
		})
	default:
		// Already in match order.
	}

	return dto.BrowseResponse{
		Users:      matched,
		TotalUsers: len(matched),
		Filters: dto.BrowseFilters{
			Locations:        locations,
			ExperienceLevels: []string{"Beginner", "Intermediate", "Advanced", "Expert"},
		},
		AppliedFilters: query,
	}, nil
}

func (s *browseService) TopMatches(ctx context.Context, viewerID uint, limit int) ([]dto.MatchedUser, error) {
	matched, _, err := s.scoredListing(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return FindTopMatches(matched, limit), nil
}

func (s *browseService) SearchSkills(ctx context.Context, query string) ([]string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < 2 {
		return []string{}, nil
	}

	users, err := s.users.ListVerified(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	skills := make([]string, 0, 16)
	for _, user := range users {
		for _, skill := range append(user.Profile.TeachSkills, user.Profile.LearnSkills...) {
			lower := strings.ToLower(skill)
			if !strings.Contains(lower, query) {
				continue
			}
			if _, ok := seen[lower]; ok {
				continue
			}
			seen[lower] = struct{}{}
			skills = append(skills, skill)
		}
	}

	sort.Strings(skills)
	return skills, nil
}

// scoredListing returns the full match-ordered listing for a viewer plus
// the distinct location filter values. The result is cached per viewer for
// a short TTL because every browse page load recomputes scores against the
// whole directory.
func (s *browseService) scoredListing(ctx context.Context, viewerID uint) ([]dto.MatchedUser, []string, error) {
	type cached struct {
		Users     []dto.MatchedUser `json:"users"`
		Locations []string          `json:"locations"`
	}

	cacheKey := fmt.Sprintf("browse:match:%d", viewerID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var entry cached
			if unmarshalErr := json.Unmarshal([]byte(raw), &entry); unmarshalErr == nil {
				s.logger.Debug().Uint("viewer_id", viewerID).Msg("browse cache hit")
				return entry.Users, entry.Locations, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read browse cache")
		}
	}

	viewer, err := s.users.FindByID(ctx, viewerID)
	if err != nil {
		return nil, nil, err
	}

	users, err := s.users.ListVerified(ctx)
	if err != nil {
		return nil, nil, err
	}

	matched := AllUsersWithMatch(viewer, users)

	locationSet := make(map[string]struct{})
	locations := make([]string, 0, 8)
	for _, user := range users {
		location := strings.TrimSpace(user.Profile.Location)
		if location == "" {
			continue
		}
		if _, ok := locationSet[location]; ok {
			continue
		}
		locationSet[location] = struct{}{}
		locations = append(locations, location)
	}
	sort.Strings(locations)

	if s.cache != nil {
		payload, err := json.Marshal(cached{Users: matched, Locations: locations})
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store browse cache")
			}
		}
	}

	return matched, locations, nil
}

func applyBrowseFilters(matched []dto.MatchedUser, query dto.BrowseQuery) []dto.MatchedUser {
	search := strings.ToLower(strings.TrimSpace(query.Search))
	location := strings.ToLower(strings.TrimSpace(query.Location))

	out := matched[:0:0]
	for _, item := range matched {
		if search != "" && !matchesSearch(item.User, search) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(item.User.Profile.Location), location) {
			continue
		}
		if query.Experience != "" && item.User.Profile.ExperienceLevel != query.Experience {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesSearch(user dto.UserResponse, search string) bool {
	if strings.Contains(strings.ToLower(user.Name), search) {
		return true
	}
	for _, skill := range append(user.Profile.TeachSkills, user.Profile.LearnSkills...) {
		if strings.Contains(strings.ToLower(skill), search) {
			return true
		}
	}
	return false
}
