package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/history-importer/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5, "history-importer")

	token, expiresAt, err := tm.GenerateToken("ops@example.com", ScopeImport)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.True(t, claims.HasScope(ScopeImport))
	assert.False(t, claims.HasScope(ScopeMetrics))
}

func TestTokenDefaultsToAllScopes(t *testing.T) {
	tm := NewTokenManager("secret", 0, "")

	token, _, err := tm.GenerateToken("ops")
	require.NoError(t, err)
	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.ElementsMatch(t, AllScopes(), claims.Scopes)
}

func TestParseTokenRejectsForeignTokens(t *testing.T) {
	tm := NewTokenManager("secret", 5, "history-importer")

	other := NewTokenManager("other-secret", 5, "history-importer")
	forged, _, err := other.GenerateToken("ops")
	require.NoError(t, err)
	_, err = tm.ParseToken(forged)
	assert.Error(t, err)

	wrongIssuer := NewTokenManager("secret", 5, "someone-else")
	foreign, _, err := wrongIssuer.GenerateToken("ops")
	require.NoError(t, err)
	_, err = tm.ParseToken(foreign)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Scopes: AllScopes(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			Issuer:    "history-importer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.ParseToken(signed)
	assert.Error(t, err)
}

func TestParseScopes(t *testing.T) {
	scopes, ok := ParseScopes([]string{"imports:write", "history:read"})
	require.True(t, ok)
	assert.Equal(t, []Scope{ScopeImport, ScopeHistoryRead}, scopes)

	_, ok = ParseScopes([]string{"admin"})
	assert.False(t, ok)
}

func TestMiddlewareEnforcesScopes(t *testing.T) {
	tm := NewTokenManager("secret", 5, "history-importer")
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus())
		},
	})
	mw := NewAuthMiddleware(tm)
	app.Get("/imports", mw.Handle, RequireScope(ScopeImport), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		require.True(t, ok)
		return c.SendString(principal.Operator)
	})

	readOnly, _, err := tm.GenerateToken("reader", ScopeHistoryRead)
	require.NoError(t, err)
	writer, _, err := tm.GenerateToken("writer", ScopeImport)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"missing scope", "Bearer " + readOnly, http.StatusForbidden},
		{"granted", "Bearer " + writer, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/imports", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
