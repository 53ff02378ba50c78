package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

// newApp mounts Auth and echoes what it stored in Locals.
func newApp(extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{Auth(secret)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user":   c.Locals(LocalUserID),
			"role":   c.Locals(LocalUserRole),
			"league": c.Locals(LocalLeagueID).(uuid.UUID).String(),
		})
	})
	app.Get("/", handlers...)
	return app
}

func get(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuth_AcceptsSignedToken(t *testing.T) {
	league := uuid.New()
	token, err := IssueToken(secret, "user-1", RoleAdmin, league, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, get(t, newApp(), token))
}

func TestAuth_Rejects(t *testing.T) {
	league := uuid.New()
	wrongKey, _ := IssueToken("other-secret", "user-1", RoleAdmin, league, time.Hour)
	expired, _ := IssueToken(secret, "user-1", RoleAdmin, league, -time.Minute)
	noSubject, _ := IssueToken(secret, "", RoleAdmin, league, time.Hour)
	noLeague, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             RoleAdmin,
	}).SignedString([]byte(secret))
	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		LeagueID:         league.String(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"no header", ""},
		{"garbage", "not-a-jwt"},
		{"wrong key", wrongKey},
		{"expired", expired},
		{"no subject", noSubject},
		{"no league", noLeague},
		{"alg none", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, fiber.StatusUnauthorized, get(t, newApp(), tt.token))
		})
	}
}

func TestRequireRole(t *testing.T) {
	league := uuid.New()
	tests := []struct {
		role string
		want int
	}{
		{RoleAdmin, fiber.StatusOK},
		{RoleManager, fiber.StatusOK},
		{RoleUser, fiber.StatusForbidden},
		{"superuser", fiber.StatusForbidden}, // unknown roles fall back to user
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			token, err := IssueToken(secret, "user-1", tt.role, league, time.Hour)
			require.NoError(t, err)
			assert.Equal(t, tt.want, get(t, newApp(CanWrite()), token))
		})
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/", RequireRole(RoleAdmin), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAuth_AcceptsQueryToken(t *testing.T) {
	token, err := IssueToken(secret, "scoreboard", RoleUser, uuid.New(), time.Hour)
	require.NoError(t, err)

	resp, err := newApp().Test(httptest.NewRequest("GET", "/?access_token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
