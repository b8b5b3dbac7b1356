package middleware

import (
	"errors"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bluebook-nepal/bluebook-backend/internal/models"
	"github.com/bluebook-nepal/bluebook-backend/internal/storage"
)

const userLocalsKey = "authUser"

// RequireAuth validates the bearer token and resolves the authenticated
// user into the request context
func RequireAuth(store storage.Store) fiber.Handler {
	secret := []byte(os.Getenv("JWT_SECRET"))

	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required.",
			})
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token.",
			})
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token.",
			})
		}

		user, err := store.GetUser(subject)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Account not found.",
			})
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// RequireAdmin allows only admin accounts past; must run after RequireAuth
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := AuthUser(c)
		if user == nil || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required.",
			})
		}
		return c.Next()
	}
}

// AuthUser returns the authenticated user resolved by RequireAuth
func AuthUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey).(*models.User)
	return user
}
