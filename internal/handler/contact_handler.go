package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/firmsite-api/internal/dto"
	"github.com/noah-isme/firmsite-api/internal/middleware"
	"github.com/noah-isme/firmsite-api/internal/service"
)

// ContactHandler handles contact form submissions.
type ContactHandler struct {
	service service.ContactService
	logger  zerolog.Logger
}

// NewContactHandler constructs a contact handler.
func NewContactHandler(service service.ContactService, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		service: service,
		logger:  logger.With().Str("component", "contact_handler").Logger(),
	}
}

// Register wires contact routes. Extra handlers run before the submission, e.g. a burst limiter.
func (h *ContactHandler) Register(router fiber.Router, handlers ...fiber.Handler) {
	router.Post("", append(handlers, h.submit)...)
}

func (h *ContactHandler) submit(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var payload dto.ContactRequest
	if err := c.BodyParser(&payload); err != nil {
		logger.Debug().Err(err).Msg("contact payload could not be parsed")
		return c.Status(fiber.StatusBadRequest).JSON(dto.ContactResult{Message: dto.ContactErrorGeneric})
	}
	payload.SourceKey = middleware.SourceKey(c)
	if payload.Locale == "" {
		payload.Locale = middleware.GetLocale(c)
	}

	outcome := h.service.Submit(c.UserContext(), payload)

	status := contactStatus(outcome.Kind)
	if outcome.Kind == service.ContactRateLimited {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(outcome.Remaining))
	}
	if status >= fiber.StatusInternalServerError {
		logger.Error().Str("outcome", string(outcome.Kind)).Str("reference_id", outcome.ReferenceID).Msg("contact submission not delivered")
	} else {
		logger.Info().Str("outcome", string(outcome.Kind)).Msg("contact submission handled")
	}

	return c.Status(status).JSON(outcome.Result())
}

// ContactBurstReached rejects requests over the burst limit. The response uses its
// own message code so clients do not mistake it for the submission cooldown.
func ContactBurstReached(window time.Duration) fiber.Handler {
	seconds := int(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ContactResult{Message: dto.ContactErrorTooManyRequests})
	}
}

func contactStatus(kind service.ContactOutcomeKind) int {
	switch kind {
	case service.ContactAccepted:
		return fiber.StatusOK
	case service.ContactRateLimited:
		return fiber.StatusTooManyRequests
	case service.ContactBotDetected, service.ContactValidationFailed:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
