package middleware

import (
	"github.com/mayanksahu17/binary-system-sub001/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const adminKeyHeader = "X-Admin-Key"

// RequireAdminKey guards operator endpoints. The presented key is checked
// against the configured bcrypt hash; with no hash configured the surface is
// closed entirely rather than left open.
func RequireAdminKey(keyHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if keyHash == "" {
			return response.Unauthorized(c, "Admin surface is not configured")
		}
		key := c.Get(adminKeyHeader)
		if key == "" {
			return response.Unauthorized(c, "Missing admin key")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			return response.Unauthorized(c, "Invalid admin key")
		}
		return c.Next()
	}
}
