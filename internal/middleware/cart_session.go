package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Cart session transport.
const (
	CartSessionHeader = "X-Cart-Session"
	CartSessionCookie = "cart_session"
	LocalCartSession  = "cart_session"
)

// CartSession resolves the caller's cart session from the X-Cart-Session header or the
// cart_session cookie. A new session is issued when neither is present or the value is
// not a UUID; it is echoed back in both the header and the cookie.
func CartSession(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(CartSessionHeader)
		if id == "" {
			id = c.Cookies(CartSessionCookie)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		c.Locals(LocalCartSession, id)
		c.Set(CartSessionHeader, id)
		c.Cookie(&fiber.Cookie{
			Name:     CartSessionCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(ttl.Seconds()),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Next()
	}
}

// SessionID returns the cart session set by CartSession.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalCartSession).(string)
	return id
}
