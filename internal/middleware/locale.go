package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/firmsite-api/internal/locale"
	"github.com/noah-isme/firmsite-api/internal/utils"
)

// LocaleCookie remembers the visitor's last chosen locale.
const LocaleCookie = "site_lang"

const localeLocalsKey = "locale"

// Locale resolves the :locale route parameter against the supported set.
// Known codes are stored on the request and remembered in LocaleCookie; unknown codes get a 404.
func Locale(locales *locale.Set) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code, ok := locales.Lookup(c.Params("locale"))
		if !ok {
			return utils.Fail(c, fiber.StatusNotFound, "unsupported locale", fiber.Map{
				"supported": locales.Codes(),
			})
		}

		c.Locals(localeLocalsKey, code)
		if c.Cookies(LocaleCookie) != code {
			c.Cookie(&fiber.Cookie{
				Name:     LocaleCookie,
				Value:    code,
				Path:     "/",
				Expires:  time.Now().Add(365 * 24 * time.Hour),
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		return c.Next()
	}
}

// GetLocale returns the locale resolved by Locale, if any.
func GetLocale(c *fiber.Ctx) string {
	if value, ok := c.Locals(localeLocalsKey).(string); ok {
		return value
	}
	return ""
}
