package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/service"
	"github.com/skillswap-labs/skillswap-api/internal/utils"
)

// RatingHandler exposes rating submission and aggregation endpoints.
type RatingHandler struct {
	service service.RatingService
	logger  zerolog.Logger
}

// NewRatingHandler constructs a rating handler.
func NewRatingHandler(service service.RatingService, logger zerolog.Logger) *RatingHandler {
	return &RatingHandler{
		service: service,
		logger:  logger.With().Str("component", "rating_handler").Logger(),
	}
}

// Register wires the rating routes.
func (h *RatingHandler) Register(router fiber.Router) {
	router.Post("/", h.submit)
	router.Get("/users/:id", h.listForUser)
	router.Get("/users/:id/average", h.average)
}

func (h *RatingHandler) submit(c *fiber.Ctx) error {
	var payload dto.RatingSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	rating, err := h.service.Submit(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSessionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrRatingNotAllowed):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrSessionAlreadyRated), errors.Is(err, service.ErrAlreadyRated):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to submit rating")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit rating")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "rating submitted", rating)
}

func (h *RatingHandler) listForUser(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	ratings, err := h.service.ListForUser(requestContext(c), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list ratings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list ratings")
	}
	return utils.SendSuccess(c, "ratings", ratings)
}

func (h *RatingHandler) average(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	average, err := h.service.Average(requestContext(c), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute average rating")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute average rating")
	}
	return utils.SendSuccess(c, "average rating", average)
}
