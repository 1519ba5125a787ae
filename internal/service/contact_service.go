package service

import (
	"context"
	"errors"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/firmsite-api/internal/dto"
	"github.com/noah-isme/firmsite-api/internal/locale"
	"github.com/noah-isme/firmsite-api/internal/models"
	"github.com/noah-isme/firmsite-api/internal/observability"
	"github.com/noah-isme/firmsite-api/internal/repository"
	"github.com/noah-isme/firmsite-api/pkg/events"
)

// DefaultContactCooldown is the minimum gap between accepted submissions from one source.
const DefaultContactCooldown = 180 * time.Second

// ContactOutcomeKind tags the result of a submission attempt.
type ContactOutcomeKind string

// Submission outcomes.
const (
	ContactBotDetected      ContactOutcomeKind = "bot-detected"
	ContactRateLimited      ContactOutcomeKind = "rate-limited"
	ContactValidationFailed ContactOutcomeKind = "validation-failed"
	ContactDeliveryFailed   ContactOutcomeKind = "delivery-failed"
	ContactAccepted         ContactOutcomeKind = "accepted"
)

// ContactOutcome is the tagged result of one submission attempt.
type ContactOutcome struct {
	Kind        ContactOutcomeKind
	Remaining   int
	FieldErrors map[string][]string
	ReferenceID string
}

// Result converts the outcome into the response body sent to the browser.
// Bot detection and delivery failures share the generic error code.
func (o ContactOutcome) Result() dto.ContactResult {
	switch o.Kind {
	case ContactAccepted:
		return dto.ContactResult{Success: true}
	case ContactRateLimited:
		return dto.ContactResult{Message: dto.ContactErrorRateLimit, Remaining: o.Remaining}
	case ContactValidationFailed:
		return dto.ContactResult{Message: dto.ContactErrorGeneric, Errors: o.FieldErrors}
	default:
		return dto.ContactResult{Message: dto.ContactErrorGeneric}
	}
}

// ContactDelivery defines a transport to deliver contact messages.
type ContactDelivery interface {
	Deliver(ctx context.Context, submission models.ContactSubmission) error
}

// ContactEventPublisher announces accepted submissions to downstream consumers.
type ContactEventPublisher interface {
	PublishContactAccepted(ctx context.Context, evt events.ContactAccepted) error
}

// ContactService exposes the contact submission workflow.
type ContactService interface {
	Submit(ctx context.Context, req dto.ContactRequest) ContactOutcome
}

// ContactOption customises the contact service.
type ContactOption func(*contactService)

// WithContactClock replaces the time source used for cooldown bookkeeping.
func WithContactClock(now func() time.Time) ContactOption {
	return func(s *contactService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithContactCooldown overrides the cooldown window.
func WithContactCooldown(cooldown time.Duration) ContactOption {
	return func(s *contactService) {
		if cooldown > 0 {
			s.cooldown = cooldown
		}
	}
}

// WithContactArchive stores accepted submissions and their delivery status.
func WithContactArchive(repo repository.ContactRepository) ContactOption {
	return func(s *contactService) {
		s.archive = repo
	}
}

// WithContactEvents publishes an event after each delivered submission.
func WithContactEvents(publisher ContactEventPublisher) ContactOption {
	return func(s *contactService) {
		s.events = publisher
	}
}

// WithDeliveryTimeout bounds how long a single delivery may run.
func WithDeliveryTimeout(timeout time.Duration) ContactOption {
	return func(s *contactService) {
		if timeout > 0 {
			s.deliveryTimeout = timeout
		}
	}
}

type contactService struct {
	store           repository.CooldownStore
	archive         repository.ContactRepository
	locales         *locale.Set
	validator       *validator.Validate
	delivery        ContactDelivery
	events          ContactEventPublisher
	sanitizer       *bluemonday.Policy
	logger          zerolog.Logger
	tracer          trace.Tracer
	cooldown        time.Duration
	deliveryTimeout time.Duration
	now             func() time.Time
}

// NewContactService constructs a contact submission service.
// The contact validation tags are registered on validate.
func NewContactService(store repository.CooldownStore, locales *locale.Set, validate *validator.Validate, delivery ContactDelivery, logger zerolog.Logger, opts ...ContactOption) ContactService {
	registerContactValidations(validate, locales)

	s := &contactService{
		store:           store,
		locales:         locales,
		validator:       validate,
		delivery:        delivery,
		sanitizer:       bluemonday.StrictPolicy(),
		logger:          logger.With().Str("component", "contact_service").Logger(),
		tracer:          otel.Tracer("github.com/noah-isme/firmsite-api/internal/service/contact"),
		cooldown:        DefaultContactCooldown,
		deliveryTimeout: 30 * time.Second,
		now:             time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// contactAttempt carries one submission through the check pipeline.
type contactAttempt struct {
	request   dto.ContactRequest
	sourceKey string
	now       time.Time
}

// contactCheck either stops the pipeline with an outcome or lets the attempt through.
type contactCheck func(ctx context.Context, attempt *contactAttempt) (ContactOutcome, bool)

func (s *contactService) Submit(ctx context.Context, req dto.ContactRequest) ContactOutcome {
	ctx, span := s.tracer.Start(ctx, "contact.submit")
	defer span.End()

	attempt := &contactAttempt{
		request:   s.normalizeContactRequest(req),
		sourceKey: clampSourceKey(strings.TrimSpace(req.SourceKey)),
		now:       s.now(),
	}
	if attempt.sourceKey == "" {
		attempt.sourceKey = UnknownSourceKey
	}

	outcome := s.run(ctx, attempt)

	span.SetAttributes(attribute.String("contact.outcome", string(outcome.Kind)))
	if outcome.Kind == ContactAccepted {
		span.SetStatus(codes.Ok, "delivered")
	} else {
		span.SetStatus(codes.Error, string(outcome.Kind))
	}
	observability.ContactSubmissions().WithLabelValues(string(outcome.Kind)).Inc()

	return outcome
}

func (s *contactService) run(ctx context.Context, attempt *contactAttempt) ContactOutcome {
	checks := []contactCheck{s.checkHoneypot, s.checkCooldown, s.checkPayload}
	for _, check := range checks {
		if outcome, stop := check(ctx, attempt); stop {
			return outcome
		}
	}

	submission := s.accept(ctx, attempt)
	return s.deliver(ctx, submission)
}

func (s *contactService) checkHoneypot(_ context.Context, attempt *contactAttempt) (ContactOutcome, bool) {
	if attempt.request.Honeypot == "" {
		return ContactOutcome{}, false
	}
	s.logger.Info().Str("source", attempt.sourceKey).Msg("contact honeypot tripped")
	return ContactOutcome{Kind: ContactBotDetected}, true
}

func (s *contactService) checkCooldown(ctx context.Context, attempt *contactAttempt) (ContactOutcome, bool) {
	last, ok, err := s.store.LastAccepted(ctx, attempt.sourceKey)
	if err != nil {
		s.logger.Warn().Err(err).Str("source", attempt.sourceKey).Msg("cooldown lookup failed, allowing submission")
		return ContactOutcome{}, false
	}
	if !ok {
		return ContactOutcome{}, false
	}

	elapsed := attempt.now.Sub(last)
	if elapsed >= s.cooldown {
		return ContactOutcome{}, false
	}
	return ContactOutcome{Kind: ContactRateLimited, Remaining: remainingSeconds(s.cooldown, elapsed)}, true
}

func (s *contactService) checkPayload(_ context.Context, attempt *contactAttempt) (ContactOutcome, bool) {
	err := s.validator.Struct(attempt.request)
	if err == nil {
		return ContactOutcome{}, false
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		s.logger.Error().Err(err).Msg("contact validation could not run")
		return ContactOutcome{Kind: ContactValidationFailed, FieldErrors: map[string][]string{}}, true
	}

	fields := make(map[string][]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldErr.Field()] = append(fields[fieldErr.Field()], fieldErrorCode(fieldErr.Tag()))
	}
	return ContactOutcome{Kind: ContactValidationFailed, FieldErrors: fields}, true
}

// accept records the cooldown before delivery so a slow transport cannot be used to skip it.
func (s *contactService) accept(ctx context.Context, attempt *contactAttempt) models.ContactSubmission {
	if err := s.store.MarkAccepted(ctx, attempt.sourceKey, attempt.now); err != nil {
		s.logger.Warn().Err(err).Str("source", attempt.sourceKey).Msg("failed to record contact cooldown")
	}

	req := attempt.request
	return models.ContactSubmission{
		ReferenceID:    uuid.NewString(),
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Service:        req.Service,
		Message:        req.Message,
		SocialHandle:   req.LineID,
		SocialPlatform: req.SocialPlatform,
		Locale:         s.canonicalLocale(req.Locale),
		SourceKey:      attempt.sourceKey,
		Status:         models.ContactStatusQueued,
	}
}

func (s *contactService) deliver(ctx context.Context, submission models.ContactSubmission) ContactOutcome {
	// Delivery is not tied to the request lifetime once dispatched.
	deliveryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deliveryTimeout)
	defer cancel()

	if s.archive != nil {
		if err := s.archive.Create(deliveryCtx, &submission); err != nil {
			s.logger.Warn().Err(err).Str("reference_id", submission.ReferenceID).Msg("failed to archive contact submission")
		}
	}

	logger := s.logger.With().
		Str("reference_id", submission.ReferenceID).
		Str("email", maskEmailAddress(submission.Email)).
		Str("phone", maskPhone(submission.Phone)).
		Logger()

	if err := s.delivery.Deliver(deliveryCtx, submission); err != nil {
		logger.Error().Err(err).Msg("contact delivery failed")
		observability.ContactDeliveries().WithLabelValues("failed").Inc()
		s.updateArchive(deliveryCtx, submission, models.ContactStatusFailed, nil)
		return ContactOutcome{Kind: ContactDeliveryFailed, ReferenceID: submission.ReferenceID}
	}

	deliveredAt := s.now().UTC()
	observability.ContactDeliveries().WithLabelValues("sent").Inc()
	s.updateArchive(deliveryCtx, submission, models.ContactStatusSent, &deliveredAt)
	s.publish(deliveryCtx, submission, deliveredAt)

	logger.Info().Str("service", submission.Service).Msg("contact submission processed")
	return ContactOutcome{Kind: ContactAccepted, ReferenceID: submission.ReferenceID}
}

func (s *contactService) updateArchive(ctx context.Context, submission models.ContactSubmission, status string, deliveredAt *time.Time) {
	if s.archive == nil || submission.ID == 0 {
		return
	}
	if err := s.archive.UpdateStatus(ctx, submission.ID, status, deliveredAt); err != nil {
		s.logger.Warn().Err(err).Str("reference_id", submission.ReferenceID).Msg("failed to update contact archive status")
	}
}

func (s *contactService) publish(ctx context.Context, submission models.ContactSubmission, at time.Time) {
	if s.events == nil {
		return
	}
	evt := events.ContactAccepted{
		ReferenceID: submission.ReferenceID,
		Service:     submission.Service,
		Locale:      submission.Locale,
		Platform:    submission.SocialPlatform,
		AcceptedAt:  at,
	}
	if err := s.events.PublishContactAccepted(ctx, evt); err != nil {
		observability.ContactEventFailures().Inc()
		s.logger.Warn().Err(err).Str("reference_id", submission.ReferenceID).Msg("failed to publish contact event")
	}
}

func (s *contactService) canonicalLocale(code string) string {
	if s.locales == nil || code == "" {
		return ""
	}
	canonical, _ := s.locales.Lookup(code)
	return canonical
}

const maxSanitizePasses = 4

// sanitize reduces value to plain text. Entity-encoded markup is decoded and
// stripped again until the text is stable; if it never settles the escaped
// policy output is kept.
func (s *contactService) sanitize(value string) string {
	for pass := 0; pass < maxSanitizePasses; pass++ {
		cleaned := s.sanitizer.Sanitize(value)
		plain := html.UnescapeString(cleaned)
		if plain == value {
			return strings.TrimSpace(plain)
		}
		if pass == maxSanitizePasses-1 {
			return strings.TrimSpace(cleaned)
		}
		value = plain
	}
	return strings.TrimSpace(value)
}

// normalizeContactRequest trims and sanitizes the user-visible fields so the
// validator sees exactly what gets delivered. The honeypot stays raw.
func (s *contactService) normalizeContactRequest(req dto.ContactRequest) dto.ContactRequest {
	req.Name = s.sanitize(req.Name)
	req.Phone = s.sanitize(req.Phone)
	req.Email = strings.ToLower(s.sanitize(req.Email))
	req.Service = strings.ToLower(s.sanitize(req.Service))
	req.Message = s.sanitize(req.Message)
	req.LineID = s.sanitize(req.LineID)
	req.SocialPlatform = strings.ToLower(s.sanitize(req.SocialPlatform))
	req.Locale = strings.TrimSpace(req.Locale)
	return req
}

var phonePattern = regexp.MustCompile(`^[0-9+\-() ]{9,20}$`)

func registerContactValidations(v *validator.Validate, locales *locale.Set) {
	v.RegisterTagNameFunc(jsonFieldName)
	mustRegister(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if !phonePattern.MatchString(value) {
			return false
		}
		digits := 0
		for _, r := range value {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		return digits >= 8
	}))
	mustRegister(v.RegisterValidation("service", func(fl validator.FieldLevel) bool {
		value := models.ServiceCategory(fl.Field().String())
		for _, category := range models.ServiceCategories {
			if category == value {
				return true
			}
		}
		return false
	}))
	mustRegister(v.RegisterValidation("sitelocale", func(fl validator.FieldLevel) bool {
		return locales != nil && locales.Contains(fl.Field().String())
	}))
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

func fieldErrorCode(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "email":
		return "invalid_email"
	case "min":
		return "too_short"
	case "max":
		return "too_long"
	case "oneof", "service":
		return "invalid_option"
	case "phone":
		return "invalid_phone"
	case "sitelocale":
		return "invalid_locale"
	default:
		return "invalid"
	}
}
