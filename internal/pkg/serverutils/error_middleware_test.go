package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/", handler)
	return app
}

func TestAppErrorRendersStatusAndCode(t *testing.T) {
	app := testApp(func(ctx *fiber.Ctx) error {
		return NewNotFoundError("room not found")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	var body map[string]interface{}
	data, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "not_found", body["code"])
	assert.Equal(t, "room not found", body["message"])
}

func TestValidationErrorCarriesFieldErrors(t *testing.T) {
	app := testApp(func(ctx *fiber.Ctx) error {
		return NewValidationError("invalid payload", map[string]string{"text": "required"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	var body struct {
		Code   string            `json:"code"`
		Errors map[string]string `json:"errors"`
	}
	data, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "validation_error", body.Code)
	assert.Equal(t, "required", body.Errors["text"])
}

func TestUnknownErrorBecomesInternal(t *testing.T) {
	app := testApp(func(ctx *fiber.Ctx) error {
		return errors.New("db exploded")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	var body map[string]interface{}
	data, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(data, &body))
	// The cause must not leak to the client.
	assert.Equal(t, "Internal server error", body["message"])
}

func TestFiberErrorKeepsItsStatus(t *testing.T) {
	app := testApp(func(ctx *fiber.Ctx) error {
		return fiber.ErrUpgradeRequired
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
