package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/service"
	"github.com/skillswap-labs/skillswap-api/internal/utils"
)

// BrowseHandler exposes the scored user listing and skill search.
type BrowseHandler struct {
	service service.BrowseService
	logger  zerolog.Logger
}

// NewBrowseHandler constructs a browse handler.
func NewBrowseHandler(service service.BrowseService, logger zerolog.Logger) *BrowseHandler {
	return &BrowseHandler{
		service: service,
		logger:  logger.With().Str("component", "browse_handler").Logger(),
	}
}

// Register wires the browse routes.
func (h *BrowseHandler) Register(router fiber.Router) {
	router.Get("/browse", h.browse)
	router.Get("/browse/matches", h.topMatches)
	router.Get("/skills/search", h.searchSkills)
}

func (h *BrowseHandler) browse(c *fiber.Ctx) error {
	var query dto.BrowseQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	response, err := h.service.Browse(requestContext(c), userIDFromContext(c), query)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to browse users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to browse users")
	}

	return utils.SendSuccess(c, "browse results", response)
}

func (h *BrowseHandler) topMatches(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	matches, err := h.service.TopMatches(requestContext(c), userIDFromContext(c), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute top matches")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute matches")
	}

	return utils.SendSuccess(c, "top matches", matches)
}

func (h *BrowseHandler) searchSkills(c *fiber.Ctx) error {
	skills, err := h.service.SearchSkills(requestContext(c), c.Query("q"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to search skills")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to search skills")
	}

	return utils.SendSuccess(c, "skills", skills)
}
