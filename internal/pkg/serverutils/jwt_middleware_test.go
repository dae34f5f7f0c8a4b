package serverutils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParseUserTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenStr := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": "3f6f3d64-8a10-4f0e-9f53-0123456789ab",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	userID, err := ParseUserToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "3f6f3d64-8a10-4f0e-9f53-0123456789ab", userID)
}

func TestParseUserTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenStr := signToken(t, "another-secret", jwt.MapClaims{"user_id": "abc"})
	_, err := ParseUserToken(tokenStr)
	assert.Error(t, err)
}

func TestParseUserTokenRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenStr := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": "abc",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	_, err := ParseUserToken(tokenStr)
	assert.Error(t, err)
}

func TestParseUserTokenRequiresUserIdClaim(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenStr := signToken(t, "test-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err := ParseUserToken(tokenStr)
	assert.Error(t, err)
}

func TestJwtMiddlewarePopulatesLocals(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	app := fiber.New()
	app.Use(JwtMiddleware)
	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})

	tokenStr := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	// Missing header is rejected before the handler runs.
	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
