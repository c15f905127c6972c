package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"ham-backend/internal/service/auth"
)

const UserIDContextKey = "user_id"

// ContactRecorder remembers the e-mail address carried by a verified token.
type ContactRecorder interface {
	Remember(userID, address string)
}

// AuthRequired verifies the bearer token and stores the caller's user id in
// the request locals. EventSource clients cannot set headers, so an
// access_token query parameter is accepted as a fallback.
func AuthRequired(authService auth.Service, contacts ContactRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("access_token")

		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return Unauthorized("Invalid authorization header format")
			}
			token = parts[1]
		}

		if token == "" {
			return Unauthorized("Missing authorization header")
		}

		claims, err := authService.ValidateAccessToken(token)
		if err != nil {
			return Unauthorized("Invalid or expired token")
		}

		userID := claims.CurrentUserID()
		if contacts != nil {
			contacts.Remember(userID, claims.Email)
		}

		c.Locals(UserIDContextKey, userID)

		return c.Next()
	}
}

func GetCurrentUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals(UserIDContextKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetUserID is GetCurrentUserID for handlers that must have a caller.
func GetUserID(c *fiber.Ctx) (string, error) {
	userID := GetCurrentUserID(c)
	if userID == "" {
		return "", Unauthorized("User not authenticated")
	}
	return userID, nil
}
