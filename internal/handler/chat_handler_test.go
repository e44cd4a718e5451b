package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/handler"
	"github.com/skillswap-labs/skillswap-api/internal/service"
)

type mockChatService struct {
	sendResp dto.ChatMessageResponse
	sendErr  error
	history  []dto.ChatMessageResponse

	lastSenderID  uint
	lastSend      dto.ChatSendRequest
	lastRequestID uint
	lastUserID    uint
}

func (m *mockChatService) SendMessage(_ context.Context, senderID uint, req dto.ChatSendRequest) (dto.ChatMessageResponse, error) {
	m.lastSenderID = senderID
	m.lastSend = req
	return m.sendResp, m.sendErr
}

func (m *mockChatService) History(_ context.Context, userID, swapRequestID uint) ([]dto.ChatMessageResponse, error) {
	m.lastUserID = userID
	m.lastRequestID = swapRequestID
	return m.history, nil
}

func (m *mockChatService) Conversations(_ context.Context, _ uint) ([]dto.ConversationResponse, error) {
	return nil, nil
}

func (m *mockChatService) UnreadCount(_ context.Context, _ uint) (dto.UnreadCountResponse, error) {
	return dto.UnreadCountResponse{}, nil
}

func (m *mockChatService) ServeConnection(_ *websocket.Conn, _ service.ChatConnectionOptions) {}

func (m *mockChatService) Start(_ context.Context) {}

func newChatTestApp(svc service.ChatService, userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	handler.NewChatHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/chat"))
	return app
}

func TestChatHandler_SendMessageErrorMapping(t *testing.T) {
	payload := `{"swap_request_id":3,"message":"<b></b>"}`

	app := newChatTestApp(&mockChatService{sendErr: service.ErrEmptyMessage}, 7)
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/chat/messages", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "an empty message is a validation failure")

	app = newChatTestApp(&mockChatService{sendErr: service.ErrChatNotAllowed}, 7)
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/chat/messages", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestChatHandler_SendMessageSuccess(t *testing.T) {
	svc := &mockChatService{sendResp: dto.ChatMessageResponse{ID: 5, Message: "hello"}}
	app := newChatTestApp(svc, 7)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/chat/messages", `{"swap_request_id":3,"message":"hello"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastSenderID)
	require.Equal(t, uint(3), svc.lastSend.SwapRequestID)
}

func TestChatHandler_HistoryRoute(t *testing.T) {
	svc := &mockChatService{history: []dto.ChatMessageResponse{{ID: 1}, {ID: 2}}}
	app := newChatTestApp(svc, 7)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/chat/history/42", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(42), svc.lastRequestID)
	require.Equal(t, uint(7), svc.lastUserID)

	var body struct {
		Data []dto.ChatMessageResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 2)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/chat/history/nope", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
