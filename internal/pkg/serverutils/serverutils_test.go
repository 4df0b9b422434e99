package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandlerMiddleware})
	api := app.Group("/api", NewJwtMiddleware(testSecret))
	api.Get("/me", func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("me", ctx.Locals("user_id").(string)))
	})
	api.Get("/admin", RequireRole("admin"), func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse[any]("ok", nil))
	})
	app.Get("/app-error", func(ctx *fiber.Ctx) error {
		return NewAppError(fiber.StatusBadGateway, "The assistant is unavailable", errors.New("dial tcp: refused"))
	})
	app.Get("/validation", func(ctx *fiber.Ctx) error {
		type req struct {
			Email string `validate:"required,email"`
		}
		return ValidateRequest(req{Email: "nope"})
	})
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return errors.New("pq: relation does not exist")
	})
	return app
}

func decode(t *testing.T, resp *http.Response) Response[any] {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out Response[any]
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestJwtMiddleware(t *testing.T) {
	app := newTestApp()
	userToken, err := IssueToken(testSecret, "user-1", "user", time.Hour)
	require.NoError(t, err)
	adminToken, err := IssueToken(testSecret, "admin-1", "admin", time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(testSecret, "user-1", "user", -time.Minute)
	require.NoError(t, err)
	forged, err := IssueToken("other-secret", "user-1", "admin", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "missing", path: "/api/me", want: fiber.StatusUnauthorized},
		{name: "valid", path: "/api/me", header: "Bearer " + userToken, want: fiber.StatusOK},
		{name: "expired", path: "/api/me", header: "Bearer " + expired, want: fiber.StatusUnauthorized},
		{name: "wrong secret", path: "/api/me", header: "Bearer " + forged, want: fiber.StatusUnauthorized},
		{name: "role denied", path: "/api/admin", header: "Bearer " + userToken, want: fiber.StatusForbidden},
		{name: "role allowed", path: "/api/admin", header: "Bearer " + adminToken, want: fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name    string
		path    string
		code    int
		message string
	}{
		{name: "app error hides cause", path: "/app-error", code: fiber.StatusBadGateway, message: "The assistant is unavailable"},
		{name: "validation", path: "/validation", code: fiber.StatusBadRequest, message: "email must be a valid email"},
		{name: "unknown error", path: "/boom", code: fiber.StatusInternalServerError, message: "Internal server error"},
		{name: "route not found", path: "/missing", code: fiber.StatusNotFound, message: "Cannot GET /missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
			body := decode(t, resp)
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}
