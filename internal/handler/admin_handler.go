package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillswap-labs/skillswap-api/internal/service"
	"github.com/skillswap-labs/skillswap-api/internal/utils"
)

// AdminHandler exposes the admin reporting and moderation endpoints.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler constructs an admin handler.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires the admin routes. Role enforcement happens in the router.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/stats", h.stats)
	router.Get("/skills/top", h.topSkills)
	router.Get("/users", h.searchUsers)
	router.Get("/activity", h.recentActivity)
	router.Delete("/users/:id", h.deleteUser)
}

func (h *AdminHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.PlatformStats(requestContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to aggregate platform stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to aggregate platform stats")
	}
	return utils.SendSuccess(c, "platform stats", stats)
}

func (h *AdminHandler) topSkills(c *fiber.Ctx) error {
	skills, err := h.service.TopSkills(requestContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to rank skills")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to rank skills")
	}
	return utils.SendSuccess(c, "top skills", skills)
}

func (h *AdminHandler) searchUsers(c *fiber.Ctx) error {
	users, err := h.service.SearchUsers(requestContext(c), c.Query("q"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to search users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to search users")
	}
	return utils.SendSuccess(c, "users", users)
}

func (h *AdminHandler) recentActivity(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	activity, err := h.service.RecentActivity(requestContext(c), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load recent activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load recent activity")
	}
	return utils.SendSuccess(c, "recent activity", activity)
}

func (h *AdminHandler) deleteUser(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if userID == userIDFromContext(c) {
		return utils.SendError(c, fiber.StatusBadRequest, "admins cannot delete their own account")
	}

	if err := h.service.DeleteUser(requestContext(c), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to delete user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete user")
	}

	return utils.SendSuccess(c, "user deleted", nil)
}
