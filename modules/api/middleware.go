package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
)

// BasicAuth builds the access gate enforcing a single shared credential
// pair on every request it guards. Missing or mismatched credentials
// short-circuit with 401 before any handler or store call runs. The
// credentials carry no per-user identity; the userId domain field is
// unrelated application data.
func BasicAuth(username, password string) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Users: map[string]string{username: password},
		Realm: "Restricted",
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="Restricted"`)
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or missing credentials",
			})
		},
	})
}
