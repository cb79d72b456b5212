package booking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	booking "github.com/zenstudio/go-booking"
)

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()
	cfg := &booking.SimpleConfig{SigningKey: "test-signing-key"}

	t.Run("mints a token for verified credentials", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		identity := testIdentity{id: 4, email: "yoga@studio.com"}
		provider.On("VerifyIdentity", ctx, "yoga@studio.com", "test!1234").Return(identity, nil)

		auther := booking.NewAuthenticator(provider, cfg)
		token, err := auther.Login(ctx, "yoga@studio.com", "test!1234")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := auther.TokenService().Validate(token)
		assert.NoError(t, err)
		assert.Equal(t, "yoga@studio.com", claims.Subject())
	})

	t.Run("propagates credential failures", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "yoga@studio.com", "wrong").
			Return(nil, booking.ErrMismatchedHashAndPassword)

		auther := booking.NewAuthenticator(provider, cfg)
		_, err := auther.Login(ctx, "yoga@studio.com", "wrong")

		assert.ErrorIs(t, err, booking.ErrMismatchedHashAndPassword)
	})

	t.Run("nil identity is rejected", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "yoga@studio.com", "test!1234").Return(nil, nil)

		auther := booking.NewAuthenticator(provider, cfg)
		_, err := auther.Login(ctx, "yoga@studio.com", "test!1234")

		assert.ErrorIs(t, err, booking.ErrIdentityNotFound)
	})
}

func TestAuther_IdentityFromToken(t *testing.T) {
	ctx := context.Background()
	cfg := &booking.SimpleConfig{SigningKey: "test-signing-key"}

	mintToken := func(t *testing.T, auther *booking.Auther, identity booking.Identity) string {
		t.Helper()
		token, err := auther.TokenService().Generate(identity)
		assert.NoError(t, err)
		return token
	}

	t.Run("resolves the token subject to a live identity", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		identity := testIdentity{id: 4, email: "yoga@studio.com", admin: true}
		provider.On("FindIdentityByIdentifier", ctx, "yoga@studio.com").Return(identity, nil)

		auther := booking.NewAuthenticator(provider, cfg)
		token := mintToken(t, auther, identity)

		resolved, err := auther.IdentityFromToken(ctx, token)
		assert.NoError(t, err)
		assert.Equal(t, int64(4), resolved.ID())
		assert.True(t, resolved.IsAdmin())
	})

	t.Run("a verified token for a deleted account fails", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		identity := testIdentity{id: 4, email: "gone@studio.com"}
		provider.On("FindIdentityByIdentifier", ctx, "gone@studio.com").
			Return(nil, booking.ErrIdentityNotFound)

		auther := booking.NewAuthenticator(provider, cfg)
		token := mintToken(t, auther, identity)

		_, err := auther.IdentityFromToken(ctx, token)
		assert.ErrorIs(t, err, booking.ErrIdentityNotFound)
	})

	t.Run("an invalid token never reaches the store", func(t *testing.T) {
		provider := &MockIdentityProvider{}

		auther := booking.NewAuthenticator(provider, cfg)
		_, err := auther.IdentityFromToken(ctx, "bogus.token.value")

		assert.Error(t, err)
		provider.AssertNotCalled(t, "FindIdentityByIdentifier", ctx, "bogus.token.value")
	})
}
