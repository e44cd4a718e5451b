package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/models"
	"github.com/skillswap-labs/skillswap-api/internal/observability"
	"github.com/skillswap-labs/skillswap-api/internal/repository"
)

var (
	// ErrSelfSwap indicates a user tried to send a request to themselves.
	ErrSelfSwap = errors.New("cannot send a swap request to yourself")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateSwap indicates an active request for the pair already exists.
	ErrDuplicateSwap = errors.New("an active swap request with this user already exists")
	// ErrSenderCannotTeach indicates the offered skill is not on the sender's
	// teach list.
	ErrSenderCannotTeach = errors.New("you do not offer this skill")
	// ErrRecipientCannotTeach indicates the requested skill is not on the
	// recipient's teach list.
	ErrRecipientCannotTeach = errors.New("this user does not offer that skill")
	// ErrSwapNotActionable covers a request that is missing, not addressed to
	// the caller, or already processed. Deliberately indistinct so callers
	// cannot probe for other users' requests.
	ErrSwapNotActionable = errors.New("swap request not found or already processed")
)

// Notifier delivers an in-app notification. Failures are the caller's to
// ignore; delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, userID uint, notificationType, message string) error
}

// SwapService drives the swap request lifecycle.
type SwapService interface {
	Send(ctx context.Context, senderID uint, req dto.SwapRequestCreateRequest) (dto.SwapRequestResponse, error)
	Accept(ctx context.Context, requestID, recipientID uint) (dto.SwapRequestResponse, error)
	Decline(ctx context.Context, requestID, recipientID uint) (dto.SwapRequestResponse, error)
	Cancel(ctx context.Context, requestID, senderID uint) (dto.SwapRequestResponse, error)
	Get(ctx context.Context, requestID, userID uint) (dto.SwapRequestResponse, error)
	Inbox(ctx context.Context, userID uint, status string) ([]dto.SwapRequestResponse, error)
	Outbox(ctx context.Context, userID uint, status string) ([]dto.SwapRequestResponse, error)
	PendingCount(ctx context.Context, userID uint) (dto.PendingCountResponse, error)
	ConnectionStatus(ctx context.Context, userID, otherUserID uint) (dto.ConnectionStatusResponse, error)
}

type swapService struct {
	swaps     repository.SwapRequestRepository
	users     repository.UserRepository
	mailer    Mailer
	notifier  Notifier
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewSwapService constructs the swap lifecycle service. notifier may be nil.
func NewSwapService(swaps repository.SwapRequestRepository, users repository.UserRepository, mailer Mailer, notifier Notifier, validate *validator.Validate, logger zerolog.Logger) SwapService {
	return &swapService{
		swaps:     swaps,
		users:     users,
		mailer:    mailer,
		notifier:  notifier,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "swap_service").Logger(),
	}
}

func (s *swapService) Send(ctx context.Context, senderID uint, req dto.SwapRequestCreateRequest) (dto.SwapRequestResponse, error) {
	tracer := otel.Tracer("github.com/skillswap-labs/skillswap-api/internal/service/swap")
	ctx, span := tracer.Start(ctx, "swap.send")
	span.SetAttributes(
		attribute.Int64("swap.sender_id", int64(senderID)),
		attribute.Int64("swap.recipient_id", int64(req.ToUserID)),
	)
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.SwapRequestResponse{}, err
	}

	if req.ToUserID == senderID {
		return dto.SwapRequestResponse{}, ErrSelfSwap
	}

	recipient, err := s.users.FindByID(ctx, req.ToUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SwapRequestResponse{}, ErrUserNotFound
		}
		return dto.SwapRequestResponse{}, err
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return dto.SwapRequestResponse{}, err
	}

	if !hasSkill(sender.Profile.TeachSkills, req.SkillToTeach) {
		return dto.SwapRequestResponse{}, ErrSenderCannotTeach
	}
	if !hasSkill(recipient.Profile.TeachSkills, req.SkillToLearn) {
		return dto.SwapRequestResponse{}, ErrRecipientCannotTeach
	}

	request := models.SwapRequest{
		FromUserID:   senderID,
		ToUserID:     req.ToUserID,
		SkillToTeach: strings.TrimSpace(req.SkillToTeach),
		SkillToLearn: strings.TrimSpace(req.SkillToLearn),
		Message:      s.sanitizer.Sanitize(req.Message),
		Status:       models.SwapStatusPending,
	}

	if err := s.swaps.CreateIfNoActive(ctx, &request); err != nil {
		if errors.Is(err, repository.ErrActiveSwapExists) {
			return dto.SwapRequestResponse{}, ErrDuplicateSwap
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "create_failed")
		return dto.SwapRequestResponse{}, err
	}

	request.FromUser = sender
	request.ToUser = recipient

	observability.SwapRequests().WithLabelValues(models.SwapStatusPending).Inc()
	s.logger.Info().
		Uint("request_id", request.ID).
		Uint("from", senderID).
		Uint("to", req.ToUserID).
		Msg("swap request sent")

	s.notifyBestEffort(ctx, recipient.ID, "swap_request",
		sender.Name+" wants to swap "+request.SkillToTeach+" for "+request.SkillToLearn)
	if err := s.mailer.SwapRequestReceived(ctx, recipient.Email, SwapMailData{
		RecipientName: recipient.Name,
		SenderName:    sender.Name,
		SkillToTeach:  request.SkillToTeach,
		SkillToLearn:  request.SkillToLearn,
		Message:       request.Message,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("request_id", request.ID).Msg("swap mail failed")
	}

	return dto.NewSwapRequestResponse(request), nil
}

func (s *swapService) Accept(ctx context.Context, requestID, recipientID uint) (dto.SwapRequestResponse, error) {
	return s.respond(ctx, requestID, recipientID, models.SwapStatusAccepted)
}

func (s *swapService) Decline(ctx context.Context, requestID, recipientID uint) (dto.SwapRequestResponse, error) {
	return s.respond(ctx, requestID, recipientID, models.SwapStatusDeclined)
}

func (s *swapService) respond(ctx context.Context, requestID, recipientID uint, status string) (dto.SwapRequestResponse, error) {
	tracer := otel.Tracer("github.com/skillswap-labs/skillswap-api/internal/service/swap")
	ctx, span := tracer.Start(ctx, "swap.respond")
	span.SetAttributes(
		attribute.Int64("swap.request_id", int64(requestID)),
		attribute.String("swap.status", status),
	)
	defer span.End()

	request, err := s.swaps.Respond(ctx, requestID, recipientID, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SwapRequestResponse{}, ErrSwapNotActionable
		}
		span.RecordError(err)
		return dto.SwapRequestResponse{}, err
	}

	observability.SwapRequests().WithLabelValues(status).Inc()
	s.logger.Info().
		Uint("request_id", request.ID).
		Str("status", status).
		Msg("swap request responded")

	data := SwapMailData{
		RecipientName: request.FromUser.Name,
		SenderName:    request.ToUser.Name,
		SkillToTeach:  request.SkillToTeach,
		SkillToLearn:  request.SkillToLearn,
	}

	if status == models.SwapStatusAccepted {
		s.notifyBestEffort(ctx, request.FromUserID, "swap_accepted",
			request.ToUser.Name+" accepted your swap request")
		if err := s.mailer.SwapRequestAccepted(ctx, request.FromUser.Email, data); err != nil {
			s.logger.Warn().Err(err).Uint("request_id", request.ID).Msg("accept mail failed")
		}
	} else {
		s.notifyBestEffort(ctx, request.FromUserID, "swap_declined",
			request.ToUser.Name+" declined your swap request")
		if err := s.mailer.SwapRequestDeclined(ctx, request.FromUser.Email, data); err != nil {
			s.logger.Warn().Err(err).Uint("request_id", request.ID).Msg("decline mail failed")
		}
	}

	return dto.NewSwapRequestResponse(request), nil
}

func (s *swapService) Cancel(ctx context.Context, requestID, senderID uint) (dto.SwapRequestResponse, error) {
	request, err := s.swaps.Cancel(ctx, requestID, senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SwapRequestResponse{}, ErrSwapNotActionable
		}
		return dto.SwapRequestResponse{}, err
	}

	observability.SwapRequests().WithLabelValues(models.SwapStatusCancelled).Inc()
	s.logger.Info().Uint("request_id", request.ID).Msg("swap request cancelled")
	return dto.NewSwapRequestResponse(request), nil
}

func (s *swapService) Get(ctx context.Context, requestID, userID uint) (dto.SwapRequestResponse, error) {
	request, err := s.swaps.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SwapRequestResponse{}, ErrSwapNotActionable
		}
		return dto.SwapRequestResponse{}, err
	}
	if !request.IsParticipant(userID) {
		return dto.SwapRequestResponse{}, ErrSwapNotActionable
	}
	return dto.NewSwapRequestResponse(request), nil
}

func (s *swapService) Inbox(ctx context.Context, userID uint, status string) ([]dto.SwapRequestResponse, error) {
	requests, err := s.swaps.Inbox(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	return dto.NewSwapRequestResponseSlice(requests), nil
}

func (s *swapService) Outbox(ctx context.Context, userID uint, status string) ([]dto.SwapRequestResponse, error) {
	requests, err := s.swaps.Outbox(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	return dto.NewSwapRequestResponseSlice(requests), nil
}

func (s *swapService) PendingCount(ctx context.Context, userID uint) (dto.PendingCountResponse, error) {
	count, err := s.swaps.CountPending(ctx, userID)
	if err != nil {
		return dto.PendingCountResponse{}, err
	}
	return dto.PendingCountResponse{Count: count}, nil
}

func (s *swapService) ConnectionStatus(ctx context.Context, userID, otherUserID uint) (dto.ConnectionStatusResponse, error) {
	requests, err := s.swaps.ListBetween(ctx, userID, otherUserID)
	if err != nil {
		return dto.ConnectionStatusResponse{}, err
	}

	for _, request := range requests {
		if request.Status == models.SwapStatusAccepted || request.Status == models.SwapStatusPending {
			response := dto.NewSwapRequestResponse(request)
			return dto.ConnectionStatusResponse{
				Connected: request.Status == models.SwapStatusAccepted,
				Status:    request.Status,
				Request:   &response,
			}, nil
		}
	}

	return dto.ConnectionStatusResponse{}, nil
}

func (s *swapService) notifyBestEffort(ctx context.Context, userID uint, notificationType, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, notificationType, message); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("notification failed")
	}
}

func hasSkill(skills models.SkillList, skill string) bool {
	target := strings.ToLower(strings.TrimSpace(skill))
	for _, candidate := range skills {
		if strings.ToLower(strings.TrimSpace(candidate)) == target {
			return true
		}
	}
	return false
}
