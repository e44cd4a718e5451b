package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/service"
	"github.com/skillswap-labs/skillswap-api/internal/utils"
)

// SessionHandler exposes session logging and balance endpoints.
type SessionHandler struct {
	service service.SessionService
	logger  zerolog.Logger
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(service service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register wires the session routes.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("/", h.log)
	router.Get("/", h.list)
	router.Get("/balance", h.balance)
	router.Get("/:id", h.get)
}

func (h *SessionHandler) log(c *fiber.Ctx) error {
	var payload dto.SessionLogRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	session, err := h.service.Log(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrSelfSession):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNoAcceptedSwap):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to log session")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to log session")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session logged", session)
}

func (h *SessionHandler) list(c *fiber.Ctx) error {
	sessions, err := h.service.ListForUser(requestContext(c), userIDFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list sessions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list sessions")
	}
	return utils.SendSuccess(c, "sessions", sessions)
}

func (h *SessionHandler) balance(c *fiber.Ctx) error {
	balance, err := h.service.Balance(requestContext(c), userIDFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute balance")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute balance")
	}
	return utils.SendSuccess(c, "balance", balance)
}

func (h *SessionHandler) get(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	detail, err := h.service.Get(requestContext(c), sessionID, userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to load session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load session")
	}
	return utils.SendSuccess(c, "session", detail)
}
