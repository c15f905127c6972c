package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ham-backend/internal/domain"
)

func errorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error { return err })
	return app
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("message %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", fmt.Errorf("%w: not a participant", domain.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{"validation", domain.NewValidationError("subject", "is required"), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"bad request", BadRequest("Invalid request body"), http.StatusBadRequest, "BAD_REQUEST"},
		{"unauthorized", Unauthorized("Missing authorization header"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := errorApp(tt.err).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.TraceID)
		})
	}
}

func TestErrorHandler_InternalMessageHidden(t *testing.T) {
	resp, err := errorApp(errors.New("pq: connection refused")).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Message)
}

func TestErrorHandler_ValidationFields(t *testing.T) {
	resp, err := errorApp(domain.NewValidationError("receiverId", "must be a valid UUID")).
		Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "must be a valid UUID", body.Fields["receiverId"])
}

func TestAPIKeyAuth(t *testing.T) {
	newApp := func(key string) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
		app.Post("/", APIKeyAuth(key), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })
		return app
	}

	send := func(app *fiber.App, key string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	app := newApp("s3cret")
	assert.Equal(t, http.StatusCreated, send(app, "s3cret"))
	assert.Equal(t, http.StatusUnauthorized, send(app, "wrong"))
	assert.Equal(t, http.StatusUnauthorized, send(app, ""))

	assert.Equal(t, http.StatusUnauthorized, send(newApp(""), "anything"))
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestLogger(nil))
	app.Get("/missing", func(c *fiber.Ctx) error { return fmt.Errorf("message %w", domain.ErrNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))
}
