package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/firmsite-api/internal/locale"
	"github.com/noah-isme/firmsite-api/internal/middleware"
	"github.com/noah-isme/firmsite-api/internal/service"
	"github.com/noah-isme/firmsite-api/internal/utils"
)

// SiteHandler serves locale routing, navigation and page metadata.
type SiteHandler struct {
	service service.SiteService
	locales *locale.Set
	logger  zerolog.Logger
}

// NewSiteHandler constructs a site handler.
func NewSiteHandler(service service.SiteService, locales *locale.Set, logger zerolog.Logger) *SiteHandler {
	return &SiteHandler{
		service: service,
		locales: locales,
		logger:  logger.With().Str("component", "site_handler").Logger(),
	}
}

// Register wires the per-locale metadata routes.
func (h *SiteHandler) Register(router fiber.Router) {
	group := router.Group("/:locale", middleware.Locale(h.locales))
	group.Get("/navigation", h.navigation)
	group.Get("/seo", h.seo)
}

// RegisterPublic wires the entry redirect, the sitemap and the unprefixed page redirect.
// It must be called after every other route so the page redirect only sees unmatched paths.
func (h *SiteHandler) RegisterPublic(app fiber.Router) {
	app.Get("/", h.entry)
	app.Get("/sitemap.xml", h.sitemap)
	app.Get("/*", h.redirectPage)
}

func (h *SiteHandler) navigation(c *fiber.Ctx) error {
	result, err := h.service.Navigation(middleware.GetLocale(c))
	if err != nil {
		return h.fail(c, err, "failed to build navigation")
	}
	return utils.OK(c, result, "navigation retrieved", nil)
}

func (h *SiteHandler) seo(c *fiber.Ctx) error {
	result, err := h.service.SEO(middleware.GetLocale(c), c.Query("path", "/"))
	if err != nil {
		return h.fail(c, err, "failed to build page metadata")
	}
	return utils.OK(c, result, "page metadata retrieved", nil)
}

func (h *SiteHandler) sitemap(c *fiber.Ctx) error {
	body, err := h.service.Sitemap()
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to render sitemap")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to render sitemap")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(body)
}

func (h *SiteHandler) entry(c *fiber.Ctx) error {
	code := h.service.PreferredLocale(c.Cookies(middleware.LocaleCookie), c.Get(fiber.HeaderAcceptLanguage))
	return c.Redirect(h.locales.Localize(code, "/")+queryString(c), fiber.StatusFound)
}

// redirectPage sends page paths to their canonical localized form.
// Paths without a supported prefix go to the visitor's preferred locale; canonical paths are left to the frontend.
func (h *SiteHandler) redirectPage(c *fiber.Ctx) error {
	path := c.Path()
	if path == "/api" || strings.HasPrefix(path, "/api/") || strings.Contains(path[strings.LastIndex(path, "/")+1:], ".") {
		return fiber.ErrNotFound
	}

	code, rest := h.locales.Split(path)
	if code == "" {
		code = h.service.PreferredLocale(c.Cookies(middleware.LocaleCookie), c.Get(fiber.HeaderAcceptLanguage))
	}
	target := h.locales.Localize(code, rest)
	if target == path {
		return fiber.ErrNotFound
	}
	return c.Redirect(target+queryString(c), fiber.StatusFound)
}

func (h *SiteHandler) fail(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrUnsupportedLocale):
		return utils.SendError(c, fiber.StatusNotFound, "unsupported locale")
	case errors.Is(err, service.ErrInvalidPagePath):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page path")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}

func queryString(c *fiber.Ctx) string {
	if query := string(c.Request().URI().QueryString()); query != "" {
		return "?" + query
	}
	return ""
}
