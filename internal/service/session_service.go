package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/models"
	"github.com/skillswap-labs/skillswap-api/internal/repository"
)

var (
	// ErrNoAcceptedSwap indicates no accepted swap request links the two
	// users, so a session cannot be logged between them.
	ErrNoAcceptedSwap = errors.New("no accepted swap request with this user")
	// ErrSessionNotFound indicates the session is missing or not visible to
	// the caller.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSelfSession indicates a user tried to log a session with themselves.
	ErrSelfSession = errors.New("cannot log a session with yourself")
)

// SessionService records completed sessions and derives hour balances.
type SessionService interface {
	Log(ctx context.Context, userID uint, req dto.SessionLogRequest) (dto.SessionResponse, error)
	Get(ctx context.Context, sessionID, userID uint) (dto.SessionDetailResponse, error)
	ListForUser(ctx context.Context, userID uint) ([]dto.SessionResponse, error)
	Balance(ctx context.Context, userID uint) (dto.BalanceResponse, error)
}

type sessionService struct {
	sessions  repository.SessionRepository
	swaps     repository.SwapRequestRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(sessions repository.SessionRepository, swaps repository.SwapRequestRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) SessionService {
	return &sessionService{
		sessions:  sessions,
		swaps:     swaps,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "session_service").Logger(),
	}
}

func (s *sessionService) Log(ctx context.Context, userID uint, req dto.SessionLogRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionResponse{}, err
	}

	if req.PartnerID == userID {
		return dto.SessionResponse{}, ErrSelfSession
	}

	if _, err := s.users.FindByID(ctx, req.PartnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrUserNotFound
		}
		return dto.SessionResponse{}, err
	}

	linked, err := s.hasAcceptedSwap(ctx, userID, req.PartnerID)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	if !linked {
		return dto.SessionResponse{}, ErrNoAcceptedSwap
	}

	session := models.Session{
		Skill: req.Skill,
		Hours: req.Hours,
		Date:  req.Date,
	}
	if req.Role == models.RaterRoleTeacher {
		session.TeacherID = userID
		session.StudentID = req.PartnerID
	} else {
		session.TeacherID = req.PartnerID
		session.StudentID = userID
	}

	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}

	s.logger.Info().
		Uint("session_id", session.ID).
		Uint("teacher_id", session.TeacherID).
		Uint("student_id", session.StudentID).
		Float64("hours", session.Hours).
		Msg("session logged")

	return dto.NewSessionResponse(session), nil
}

func (s *sessionService) Get(ctx context.Context, sessionID, userID uint) (dto.SessionDetailResponse, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionDetailResponse{}, ErrSessionNotFound
		}
		return dto.SessionDetailResponse{}, err
	}
	if !session.IsParticipant(userID) {
		return dto.SessionDetailResponse{}, ErrSessionNotFound
	}

	detail := dto.SessionDetailResponse{Session: dto.NewSessionResponse(session)}

	if session.TeacherID == userID {
		detail.UserToRate = dto.NewAuthUserResponse(session.Student)
	} else {
		detail.UserToRate = dto.NewAuthUserResponse(session.Teacher)
	}

	// A single rating closes the session for both participants.
	detail.CanRate = !session.Rated

	return detail, nil
}

func (s *sessionService) ListForUser(ctx context.Context, userID uint) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponseSlice(sessions), nil
}

// Balance derives the hour balance from logged sessions. The denormalized
// counters on the user row are not consulted.
func (s *sessionService) Balance(ctx context.Context, userID uint) (dto.BalanceResponse, error) {
	stats, err := s.sessions.Balance(ctx, userID)
	if err != nil {
		return dto.BalanceResponse{}, err
	}

	return dto.BalanceResponse{
		HoursTaught:   stats.HoursTaught,
		HoursLearned:  stats.HoursLearned,
		Balance:       stats.HoursTaught - stats.HoursLearned,
		TotalSessions: stats.TotalSessions,
	}, nil
}

func (s *sessionService) hasAcceptedSwap(ctx context.Context, userID, partnerID uint) (bool, error) {
	requests, err := s.swaps.ListBetween(ctx, userID, partnerID)
	if err != nil {
		return false, err
	}
	for _, request := range requests {
		if request.Status == models.SwapStatusAccepted {
			return true, nil
		}
	}
	return false, nil
}
