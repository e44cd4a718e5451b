package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/middleware"
	"github.com/skillswap-labs/skillswap-api/internal/service"
	"github.com/skillswap-labs/skillswap-api/internal/utils"
)

// ChatHandler wires chat endpoints including the websocket upgrade.
type ChatHandler struct {
	service service.ChatService
	logger  zerolog.Logger
}

// NewChatHandler creates a chat handler instance.
func NewChatHandler(service service.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register binds chat routes under the provided router group.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
	router.Get("/conversations", h.conversations)
	router.Get("/unread-count", h.unreadCount)
	router.Get("/history/:requestId", h.history)
	router.Post("/messages", h.sendMessage)
}

func (h *ChatHandler) handleConnection(conn *websocket.Conn) {
	userID := websocketUserID(conn)
	if userID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	userName := ""
	if value := conn.Locals("user_name"); value != nil {
		userName = strings.TrimSpace(fmt.Sprint(value))
	}
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	opts := service.ChatConnectionOptions{
		UserID:   userID,
		UserName: userName,
		Context:  baseCtx,
	}

	h.logger.Info().Uint("user_id", userID).Msg("chat websocket connected")
	h.service.ServeConnection(conn, opts)
	h.logger.Info().Uint("user_id", userID).Msg("chat websocket disconnected")
}

func (h *ChatHandler) conversations(c *fiber.Ctx) error {
	conversations, err := h.service.Conversations(requestContext(c), userIDFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list conversations")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list conversations")
	}
	return utils.SendSuccess(c, "conversations", conversations)
}

func (h *ChatHandler) unreadCount(c *fiber.Ctx) error {
	count, err := h.service.UnreadCount(requestContext(c), userIDFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to count unread messages")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to count unread messages")
	}
	return utils.SendSuccess(c, "unread count", count)
}

func (h *ChatHandler) history(c *fiber.Ctx) error {
	swapRequestID, err := parseUintParam(c, "requestId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid swap request id")
	}

	messages, err := h.service.History(requestContext(c), userIDFromContext(c), swapRequestID)
	if err != nil {
		if errors.Is(err, service.ErrChatNotAllowed) {
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to load chat history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load chat history")
	}

	return utils.SendSuccess(c, "chat history", messages)
}

func (h *ChatHandler) sendMessage(c *fiber.Ctx) error {
	var payload dto.ChatSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	message, err := h.service.SendMessage(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrEmptyMessage):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrChatNotAllowed):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to send chat message")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to send chat message")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", message)
}

func websocketUserID(conn *websocket.Conn) uint {
	if value := conn.Locals("user_id"); value != nil {
		switch v := value.(type) {
		case uint:
			return v
		case int:
			if v > 0 {
				return uint(v)
			}
		case float64:
			if v > 0 {
				return uint(v)
			}
		}
	}
	return 0
}
