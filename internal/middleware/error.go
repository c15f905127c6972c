package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ham-backend/internal/domain"
	"ham-backend/internal/pkg/logger"
)

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	TraceID string            `json:"traceId,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	errorCode := "INTERNAL_ERROR"
	var fields map[string]string

	var fiberErr *fiber.Error
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		code = fiber.StatusUnprocessableEntity
		message = "Validation failed"
		fields = validationErr.Fields
	case errors.Is(err, domain.ErrNotFound):
		code = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrForbidden):
		code = fiber.StatusForbidden
		message = err.Error()
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	switch code {
	case fiber.StatusBadRequest:
		errorCode = "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		errorCode = "UNAUTHORIZED"
	case fiber.StatusForbidden:
		errorCode = "FORBIDDEN"
	case fiber.StatusNotFound:
		errorCode = "NOT_FOUND"
	case fiber.StatusConflict:
		errorCode = "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		errorCode = "VALIDATION_ERROR"
	}

	traceID := uuid.New().String()[:8]

	if code >= fiber.StatusInternalServerError {
		logger.GetLogger().Error().
			Err(err).
			Str("trace_id", traceID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("unhandled error")
	}

	return c.Status(code).JSON(ErrorResponse{
		Code:    errorCode,
		Message: message,
		TraceID: traceID,
		Fields:  fields,
	})
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}
