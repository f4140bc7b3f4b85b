package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-synthesis-be/internal/pkg/logger"
	"ai-synthesis-be/internal/pkg/serverutils"
	internalWS "ai-synthesis-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventApp(auth fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	h := NewSynthesisEventHandler(internalWS.NewHub(nil, logger.NewNopLogger()), logger.NewNopLogger())
	h.RegisterRoutes(app.Group("/api"), auth)
	return app
}

func TestServeWsRequiresUpgrade(t *testing.T) {
	app := newEventApp(serverutils.NewJwtMiddleware("", false))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/synthesis/v1/events", nil), -1)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestServeWsAuth(t *testing.T) {
	secret := "test-secret"
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).SignedString([]byte(secret))
	require.NoError(t, err)
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).SignedString([]byte("other"))
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
	}{
		{name: "no token", path: "/api/synthesis/v1/events", wantStatus: fiber.StatusUnauthorized},
		{name: "wrong secret", path: "/api/synthesis/v1/events?token=" + foreign, wantStatus: fiber.StatusUnauthorized},
		{name: "query token", path: "/api/synthesis/v1/events?token=" + signed, wantStatus: fiber.StatusUpgradeRequired},
		{name: "bearer header", path: "/api/synthesis/v1/events", header: "Bearer " + signed, wantStatus: fiber.StatusUpgradeRequired},
	}

	app := newEventApp(serverutils.NewJwtMiddleware(secret, true))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req, -1)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
