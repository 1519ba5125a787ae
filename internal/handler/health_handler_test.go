package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/firmsite-api/internal/config"
	"github.com/noah-isme/firmsite-api/internal/handler"
)

func TestHealthCheckReportsService(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(config.Config{AppName: "firmsite-api", AppEnv: "test"}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                   `json:"success"`
		Data    handler.HealthResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, "ok", payload.Data.Status)
	require.Equal(t, "firmsite-api", payload.Data.Service)
	require.Equal(t, "test", payload.Data.Environment)
}

func TestHealthCheckReportsFailingProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "firmsite-api", ContactStore: "redis"},
		handler.HealthProbe{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
		handler.HealthProbe{Name: "archive", Check: func(context.Context) error { return nil }},
	))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var payload struct {
		Data handler.HealthResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, "degraded", payload.Data.Status)
	require.Equal(t, "redis", payload.Data.ContactStore)
	require.Equal(t, map[string]string{"redis": "down", "archive": "up"}, payload.Data.Dependencies)
}
