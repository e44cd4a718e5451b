package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/handler"
	"github.com/skillswap-labs/skillswap-api/internal/service"
)

type mockAuthService struct {
	registerResp dto.AuthUserResponse
	registerErr  error
	loginResp    dto.LoginResponse
	loginErr     error
	verifyErr    error
	forgotErr    error
	resetErr     error

	lastRegister dto.RegisterRequest
	lastLogin    dto.LoginRequest
	lastToken    string
	forgotCalls  int
}

func (m *mockAuthService) Register(_ context.Context, req dto.RegisterRequest) (dto.AuthUserResponse, error) {
	m.lastRegister = req
	return m.registerResp, m.registerErr
}

func (m *mockAuthService) Login(_ context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	m.lastLogin = req
	return m.loginResp, m.loginErr
}

func (m *mockAuthService) VerifyEmail(_ context.Context, token string) error {
	m.lastToken = token
	return m.verifyErr
}

func (m *mockAuthService) ForgotPassword(_ context.Context, _ dto.ForgotPasswordRequest) error {
	m.forgotCalls++
	return m.forgotErr
}

func (m *mockAuthService) ResetPassword(_ context.Context, _ dto.ResetPasswordRequest) error {
	return m.resetErr
}

func (m *mockAuthService) ChangePassword(_ context.Context, _ uint, _ dto.ChangePasswordRequest) error {
	return nil
}

func newAuthTestApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	handler.NewAuthHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/auth"))
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return req
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

func TestAuthHandler_RegisterSuccess(t *testing.T) {
	svc := &mockAuthService{registerResp: dto.AuthUserResponse{ID: 1, Name: "Alice", Email: "alice@example.com", Role: "user"}}
	app := newAuthTestApp(svc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", `{"name":"Alice","email":"alice@example.com"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool                 `json:"success"`
		Message string               `json:"message"`
		Data    dto.AuthUserResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "registration successful, check your mail", body.Message)
	require.Equal(t, uint(1), body.Data.ID)
	require.Equal(t, "alice@example.com", svc.lastRegister.Email)
}

func TestAuthHandler_RegisterConflict(t *testing.T) {
	svc := &mockAuthService{registerErr: service.ErrEmailTaken}
	app := newAuthTestApp(svc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", `{"name":"Alice","email":"alice@example.com"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
}

func TestAuthHandler_RegisterBadPayload(t *testing.T) {
	app := newAuthTestApp(&mockAuthService{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", `{"name":`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandler_LoginSuccess(t *testing.T) {
	svc := &mockAuthService{loginResp: dto.LoginResponse{
		User:  dto.AuthUserResponse{ID: 2, Email: "bob@example.com", Role: "user"},
		Token: "signed-token",
	}}
	app := newAuthTestApp(svc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"bob@example.com","password":"sup3rsecret"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool              `json:"success"`
		Data    dto.LoginResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "signed-token", body.Data.Token)
	require.Equal(t, "bob@example.com", svc.lastLogin.Email)
}

func TestAuthHandler_LoginRejections(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"bad credentials", service.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{"unverified account", service.ErrNotVerified, fiber.StatusForbidden},
		{"backend failure", errors.New("db down"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newAuthTestApp(&mockAuthService{loginErr: tc.err})
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"bob@example.com","password":"sup3rsecret"}`))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	svc := &mockAuthService{}
	app := newAuthTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-email?token=tok123", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "tok123", svc.lastToken)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-email", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	app = newAuthTestApp(&mockAuthService{verifyErr: service.ErrInvalidToken})
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-email?token=stale", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandler_ForgotPasswordNeverLeaks(t *testing.T) {
	svc := &mockAuthService{}
	app := newAuthTestApp(svc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"nobody@example.com"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 1, svc.forgotCalls)

	var body struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "if the address exists, a reset mail has been sent", body.Message)
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	app := newAuthTestApp(&mockAuthService{})
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/reset-password", `{"token":"tok","password":"newpassword1"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	app = newAuthTestApp(&mockAuthService{resetErr: service.ErrInvalidToken})
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/reset-password", `{"token":"bad","password":"newpassword1"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
