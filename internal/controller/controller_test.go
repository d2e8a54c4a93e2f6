package controller

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestCurrentUserIdReadsValidClaim(t *testing.T) {
	app := fiber.New()
	ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(ctx)

	want := uuid.New()
	ctx.Locals("user_id", want.String())

	got, err := currentUserId(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCurrentUserIdMissingClaim(t *testing.T) {
	app := fiber.New()
	ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(ctx)

	_, err := currentUserId(ctx)

	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusUnauthorized, fiberErr.Code)
}

func TestCurrentUserIdNonStringClaim(t *testing.T) {
	app := fiber.New()
	ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(ctx)

	// A token minted with a non-string user_id must be rejected, not panic.
	ctx.Locals("user_id", 42)

	_, err := currentUserId(ctx)

	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusUnauthorized, fiberErr.Code)
}

func TestCurrentUserIdMalformedUuid(t *testing.T) {
	app := fiber.New()
	ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(ctx)

	ctx.Locals("user_id", "not-a-uuid")

	_, err := currentUserId(ctx)

	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusUnauthorized, fiberErr.Code)
}
