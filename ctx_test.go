package booking_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	booking "github.com/zenstudio/go-booking"
)

func TestIdentityContext(t *testing.T) {
	identity := testIdentity{id: 8, email: "ctx@example.com"}

	ctx := booking.WithIdentityContext(context.Background(), identity)

	found, ok := booking.IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(8), found.ID())

	_, ok = booking.IdentityFromContext(context.Background())
	assert.False(t, ok)
}

func TestResolutionContext(t *testing.T) {
	res := booking.Resolution{
		Identity: testIdentity{id: 8},
		Reason:   booking.ReasonAuthenticated,
	}

	ctx := booking.WithResolutionContext(context.Background(), res)

	found, ok := booking.ResolutionFromContext(ctx)
	assert.True(t, ok)
	assert.True(t, found.Authenticated())

	_, ok = booking.ResolutionFromContext(context.Background())
	assert.False(t, ok)
}

func TestRouterResolution(t *testing.T) {
	t.Run("rebuilds an authenticated resolution", func(t *testing.T) {
		identity := testIdentity{id: 8, email: "ctx@example.com"}

		ctx := router.NewMockContext()
		ctx.LocalsMock["user:reason"] = string(booking.ReasonAuthenticated)
		ctx.LocalsMock["user"] = identity

		res, ok := booking.RouterResolution(ctx, "user")
		assert.True(t, ok)
		assert.True(t, res.Authenticated())
		assert.Equal(t, int64(8), res.Identity.ID())
	})

	t.Run("anonymous requests keep their reason", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user:reason"] = string(booking.ReasonInvalidToken)

		res, ok := booking.RouterResolution(ctx, "user")
		assert.True(t, ok)
		assert.False(t, res.Authenticated())
		assert.Equal(t, booking.ReasonInvalidToken, res.Reason)
	})

	t.Run("absent gate means no resolution", func(t *testing.T) {
		ctx := router.NewMockContext()

		_, ok := booking.RouterResolution(ctx, "user")
		assert.False(t, ok)
	})
}
