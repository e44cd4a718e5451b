package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/service"
	"github.com/skillswap-labs/skillswap-api/internal/utils"
)

// SwapHandler exposes the swap request lifecycle endpoints.
type SwapHandler struct {
	service service.SwapService
	logger  zerolog.Logger
}

// NewSwapHandler constructs a swap handler.
func NewSwapHandler(service service.SwapService, logger zerolog.Logger) *SwapHandler {
	return &SwapHandler{
		service: service,
		logger:  logger.With().Str("component", "swap_handler").Logger(),
	}
}

// Register wires the swap request routes.
func (h *SwapHandler) Register(router fiber.Router) {
	router.Post("/", h.send)
	router.Get("/inbox", h.inbox)
	router.Get("/outbox", h.outbox)
	router.Get("/pending-count", h.pendingCount)
	router.Get("/connection/:userId", h.connectionStatus)
	router.Get("/:id", h.get)
	router.Post("/:id/accept", h.accept)
	router.Post("/:id/decline", h.decline)
	router.Post("/:id/cancel", h.cancel)
}

func (h *SwapHandler) send(c *fiber.Ctx) error {
	var payload dto.SwapRequestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Send(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSelfSwap),
			errors.Is(err, service.ErrSenderCannotTeach),
			errors.Is(err, service.ErrRecipientCannotTeach):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrDuplicateSwap):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to send swap request")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to send swap request")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "swap request sent", response)
}

func (h *SwapHandler) inbox(c *fiber.Ctx) error {
	requests, err := h.service.Inbox(requestContext(c), userIDFromContext(c), c.Query("status"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list inbox")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list requests")
	}
	return utils.SendSuccess(c, "inbox", requests)
}

func (h *SwapHandler) outbox(c *fiber.Ctx) error {
	requests, err := h.service.Outbox(requestContext(c), userIDFromContext(c), c.Query("status"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list outbox")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list requests")
	}
	return utils.SendSuccess(c, "outbox", requests)
}

func (h *SwapHandler) pendingCount(c *fiber.Ctx) error {
	count, err := h.service.PendingCount(requestContext(c), userIDFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to count pending requests")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to count requests")
	}
	return utils.SendSuccess(c, "pending count", count)
}

func (h *SwapHandler) connectionStatus(c *fiber.Ctx) error {
	otherID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	status, err := h.service.ConnectionStatus(requestContext(c), userIDFromContext(c), otherID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to resolve connection status")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve connection status")
	}
	return utils.SendSuccess(c, "connection status", status)
}

func (h *SwapHandler) get(c *fiber.Ctx) error {
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	response, err := h.service.Get(requestContext(c), requestID, userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrSwapNotActionable) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to load swap request")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load swap request")
	}
	return utils.SendSuccess(c, "swap request", response)
}

func (h *SwapHandler) accept(c *fiber.Ctx) error {
	return h.respond(c, h.service.Accept, "swap request accepted")
}

func (h *SwapHandler) decline(c *fiber.Ctx) error {
	return h.respond(c, h.service.Decline, "swap request declined")
}

func (h *SwapHandler) cancel(c *fiber.Ctx) error {
	return h.respond(c, h.service.Cancel, "swap request cancelled")
}

func (h *SwapHandler) respond(c *fiber.Ctx, action func(ctx context.Context, id, userID uint) (dto.SwapRequestResponse, error), message string) error {
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	response, err := action(requestContext(c), requestID, userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrSwapNotActionable) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to update swap request")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update swap request")
	}

	return utils.SendSuccess(c, message, response)
}
