package booking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	booking "github.com/zenstudio/go-booking"
)

func TestRegisterUserHandler(t *testing.T) {
	db := testDB(t)
	repo := booking.NewRepositoryManager(db)
	ctx := context.Background()

	handler := booking.NewRegisterUserHandler(repo)

	t.Run("registers a new account", func(t *testing.T) {
		user, err := handler.Execute(ctx, booking.RegisterUserMessage{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@studio.com",
			Phone:     "+14155552671",
			Password:  "test!1234",
		})

		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "ada@studio.com", user.Email)
		assert.False(t, user.Admin)

		// the cleartext never hits the store
		assert.NotEqual(t, "test!1234", user.PasswordHash)
		assert.NoError(t, booking.ComparePasswordAndHash("test!1234", user.PasswordHash))
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		_, err := handler.Execute(ctx, booking.RegisterUserMessage{
			FirstName: "Imposter",
			LastName:  "Lovelace",
			Email:     "ada@studio.com",
			Password:  "other!1234",
		})

		assert.Error(t, err)
		assert.True(t, booking.HasTextCode(err, "EMAIL_TAKEN"))
	})

	t.Run("provisions an admin account without a password", func(t *testing.T) {
		user, err := handler.Execute(ctx, booking.RegisterUserMessage{
			FirstName: "Studio",
			LastName:  "Owner",
			Email:     "owner-admin@studio.com",
			Admin:     true,
		})

		require.NoError(t, err)
		assert.True(t, user.Admin)
		assert.NotEmpty(t, user.PasswordHash)

		// the placeholder hash matches no password, not even the empty one
		assert.Error(t, booking.ComparePasswordAndHash("", user.PasswordHash))
	})

	t.Run("rejects an empty password", func(t *testing.T) {
		_, err := handler.Execute(ctx, booking.RegisterUserMessage{
			FirstName: "No",
			LastName:  "Password",
			Email:     "empty@studio.com",
		})

		assert.Error(t, err)

		ok, checkErr := repo.Users().ExistsByEmail(ctx, "empty@studio.com")
		assert.NoError(t, checkErr)
		assert.False(t, ok)
	})
}
