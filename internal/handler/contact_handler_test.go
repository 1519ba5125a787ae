package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/firmsite-api/internal/dto"
	"github.com/noah-isme/firmsite-api/internal/handler"
	"github.com/noah-isme/firmsite-api/internal/middleware"
	"github.com/noah-isme/firmsite-api/internal/service"
)

type mockContactService struct {
	lastPayload dto.ContactRequest
	calls       int
	outcome     service.ContactOutcome
}

func (m *mockContactService) Submit(_ context.Context, req dto.ContactRequest) service.ContactOutcome {
	m.calls++
	m.lastPayload = req
	return m.outcome
}

func newContactApp(svc service.ContactService) *fiber.App {
	app := fiber.New()
	handler.NewContactHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/contact"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, body string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestContactHandler_SubmitAccepted(t *testing.T) {
	svc := &mockContactService{outcome: service.ContactOutcome{Kind: service.ContactAccepted, ReferenceID: "ref-1"}}
	app := newContactApp(svc)

	resp := postJSON(t, app, `{"name":"Jane Doe","phone":"0812345678","email":"jane@x.com","service":"registrations","sourceKey":"spoofed"}`,
		map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result dto.ContactResult
	decodeResponse(t, resp, &result)
	require.True(t, result.Success)
	require.Empty(t, result.Message)

	require.Equal(t, "Jane Doe", svc.lastPayload.Name)
	require.Equal(t, "registrations", svc.lastPayload.Service)
	require.Equal(t, "203.0.113.9", svc.lastPayload.SourceKey)
}

func TestContactHandler_FormEncodedPayload(t *testing.T) {
	svc := &mockContactService{outcome: service.ContactOutcome{Kind: service.ContactAccepted}}
	app := newContactApp(svc)

	form := url.Values{}
	form.Set("name", "Jane Doe")
	form.Set("email", "jane@x.com")
	form.Set("lineId", "jane.line")
	form.Set("website", "")
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Real-IP", "198.51.100.7")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "jane.line", svc.lastPayload.LineID)
	require.Equal(t, "198.51.100.7", svc.lastPayload.SourceKey)
}

func TestContactHandler_MissingAddressUsesSentinel(t *testing.T) {
	svc := &mockContactService{outcome: service.ContactOutcome{Kind: service.ContactAccepted}}
	resp := postJSON(t, newContactApp(svc), `{"name":"Jane"}`, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, service.UnknownSourceKey, svc.lastPayload.SourceKey)
}

func TestContactHandler_RateLimited(t *testing.T) {
	svc := &mockContactService{outcome: service.ContactOutcome{Kind: service.ContactRateLimited, Remaining: 170}}
	resp := postJSON(t, newContactApp(svc), `{"name":"Jane"}`, nil)

	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "170", resp.Header.Get(fiber.HeaderRetryAfter))

	var result dto.ContactResult
	decodeResponse(t, resp, &result)
	require.False(t, result.Success)
	require.Equal(t, dto.ContactErrorRateLimit, result.Message)
	require.Equal(t, 170, result.Remaining)
}

func TestContactHandler_ValidationFailed(t *testing.T) {
	svc := &mockContactService{outcome: service.ContactOutcome{
		Kind:        service.ContactValidationFailed,
		FieldErrors: map[string][]string{"email": {"invalid_email"}},
	}}
	resp := postJSON(t, newContactApp(svc), `{"email":"nope"}`, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result dto.ContactResult
	decodeResponse(t, resp, &result)
	require.Equal(t, dto.ContactErrorGeneric, result.Message)
	require.Equal(t, []string{"invalid_email"}, result.Errors["email"])
}

func TestContactHandler_BotAndDeliveryShareGenericError(t *testing.T) {
	cases := map[service.ContactOutcomeKind]int{
		service.ContactBotDetected:    fiber.StatusBadRequest,
		service.ContactDeliveryFailed: fiber.StatusInternalServerError,
	}
	for kind, status := range cases {
		t.Run(string(kind), func(t *testing.T) {
			svc := &mockContactService{outcome: service.ContactOutcome{Kind: kind}}
			resp := postJSON(t, newContactApp(svc), `{"website":"http://spam"}`, nil)
			require.Equal(t, status, resp.StatusCode)

			var result dto.ContactResult
			decodeResponse(t, resp, &result)
			require.Equal(t, dto.ContactResult{Message: dto.ContactErrorGeneric}, result)
		})
	}
}

func TestContactHandler_InvalidBody(t *testing.T) {
	svc := &mockContactService{}
	resp := postJSON(t, newContactApp(svc), `{"name":`, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Zero(t, svc.calls)
}

func TestContactHandler_LongForwardedAddressIsClamped(t *testing.T) {
	svc := &mockContactService{outcome: service.ContactOutcome{Kind: service.ContactAccepted}}
	forwarded := strings.Repeat("a", 500) + ", 10.0.0.1"
	resp := postJSON(t, newContactApp(svc), `{"name":"Jane"}`, map[string]string{"X-Forwarded-For": forwarded})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, svc.lastPayload.SourceKey, service.MaxSourceKeyLength)
}

func TestContactHandler_BurstLimitUsesItsOwnCode(t *testing.T) {
	svc := &mockContactService{outcome: service.ContactOutcome{Kind: service.ContactValidationFailed}}
	app := fiber.New()
	limiter := middleware.RateLimit(middleware.RateLimitConfig{
		Identifier:   "contact",
		Max:          1,
		Window:       time.Minute,
		LimitReached: handler.ContactBurstReached(time.Minute),
	})
	handler.NewContactHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/contact"), limiter)

	headers := map[string]string{"X-Forwarded-For": "203.0.113.9"}
	resp := postJSON(t, app, `{"email":"nope"}`, headers)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, `{"email":"nope"}`, headers)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))

	var result dto.ContactResult
	decodeResponse(t, resp, &result)
	require.Equal(t, dto.ContactResult{Message: dto.ContactErrorTooManyRequests}, result)
	require.Equal(t, 1, svc.calls)
}
