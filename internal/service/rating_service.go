package service

import (
	"context"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/models"
	"github.com/skillswap-labs/skillswap-api/internal/repository"
)

var (
	// ErrSessionAlreadyRated indicates the session already carries a rating.
	ErrSessionAlreadyRated = errors.New("this session has already been rated")
	// ErrAlreadyRated indicates the caller already rated this session.
	ErrAlreadyRated = errors.New("session already rated by this user")
	// ErrRatingNotAllowed indicates the rating does not match the session
	// participants.
	ErrRatingNotAllowed = errors.New("rating does not match the session participants")
)

// RatingService records and aggregates session ratings.
type RatingService interface {
	Submit(ctx context.Context, raterID uint, req dto.RatingSubmitRequest) (dto.RatingResponse, error)
	ListForUser(ctx context.Context, ratedUserID uint) ([]dto.RatingResponse, error)
	Average(ctx context.Context, ratedUserID uint) (dto.AverageRatingResponse, error)
}

type ratingService struct {
	ratings   repository.RatingRepository
	sessions  repository.SessionRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRatingService constructs the rating service.
func NewRatingService(ratings repository.RatingRepository, sessions repository.SessionRepository, validate *validator.Validate, logger zerolog.Logger) RatingService {
	return &ratingService{
		ratings:   ratings,
		sessions:  sessions,
		validator: validate,
		logger:    logger.With().Str("component", "rating_service").Logger(),
	}
}

func (s *ratingService) Submit(ctx context.Context, raterID uint, req dto.RatingSubmitRequest) (dto.RatingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.RatingResponse{}, err
	}

	session, err := s.sessions.FindByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RatingResponse{}, ErrSessionNotFound
		}
		return dto.RatingResponse{}, err
	}

	if !session.IsParticipant(raterID) || !session.IsParticipant(req.RatedUserID) || raterID == req.RatedUserID {
		return dto.RatingResponse{}, ErrRatingNotAllowed
	}

	// The stated role must match where the rater actually sat in the session.
	if req.RaterRole == models.RaterRoleTeacher && session.TeacherID != raterID {
		return dto.RatingResponse{}, ErrRatingNotAllowed
	}
	if req.RaterRole == models.RaterRoleStudent && session.StudentID != raterID {
		return dto.RatingResponse{}, ErrRatingNotAllowed
	}

	// One rating closes the session for both sides.
	if session.Rated {
		return dto.RatingResponse{}, ErrSessionAlreadyRated
	}

	// Second guard against a rating row whose MarkRated update was lost.
	if _, err := s.ratings.FindBySessionAndRater(ctx, req.SessionID, raterID); err == nil {
		return dto.RatingResponse{}, ErrAlreadyRated
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.RatingResponse{}, err
	}

	rating := models.Rating{
		SessionID:   req.SessionID,
		RaterID:     raterID,
		RatedUserID: req.RatedUserID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		RaterRole:   req.RaterRole,
	}

	if err := s.ratings.Create(ctx, &rating); err != nil {
		return dto.RatingResponse{}, err
	}

	if err := s.sessions.MarkRated(ctx, session.ID); err != nil {
		s.logger.Warn().Err(err).Uint("session_id", session.ID).Msg("failed to flag session as rated")
	}

	s.logger.Info().
		Uint("session_id", session.ID).
		Uint("rater_id", raterID).
		Int("rating", req.Rating).
		Msg("rating submitted")

	return dto.NewRatingResponse(rating), nil
}

func (s *ratingService) ListForUser(ctx context.Context, ratedUserID uint) ([]dto.RatingResponse, error) {
	ratings, err := s.ratings.ListForUser(ctx, ratedUserID)
	if err != nil {
		return nil, err
	}
	return dto.NewRatingResponseSlice(ratings), nil
}

func (s *ratingService) Average(ctx context.Context, ratedUserID uint) (dto.AverageRatingResponse, error) {
	average, count, err := s.ratings.Average(ctx, ratedUserID)
	if err != nil {
		return dto.AverageRatingResponse{}, err
	}

	return dto.AverageRatingResponse{
		UserID:  ratedUserID,
		Average: math.Round(average*10) / 10,
		Count:   count,
	}, nil
}
