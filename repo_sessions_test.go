package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	booking "github.com/zenstudio/go-booking"
	"github.com/uptrace/bun"
)

func testDB(t *testing.T) *bun.DB {
	t.Helper()

	// one shared in-memory database per test, named after the test so
	// parallel packages cannot collide
	db, err := booking.OpenDatabase("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	require.NoError(t, booking.CreateSchema(context.Background(), db))

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func seedSession(t *testing.T, repo booking.RepositoryManager) (*booking.Session, *booking.User) {
	t.Helper()
	ctx := context.Background()

	teacher, err := repo.Teachers().Create(ctx, &booking.Teacher{
		FirstName: "Margot",
		LastName:  "Delahaye",
	})
	require.NoError(t, err)

	user, err := repo.Users().Create(ctx, &booking.User{
		Email:        "student@studio.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "x",
	})
	require.NoError(t, err)

	session, err := repo.Sessions().Create(ctx, &booking.Session{
		Name:      "Morning Flow",
		Date:      time.Now().Add(24 * time.Hour),
		TeacherID: teacher.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, session.ID)

	return session, user
}

func TestSessionsRepository_Participants(t *testing.T) {
	db := testDB(t)
	repo := booking.NewRepositoryManager(db)
	ctx := context.Background()

	session, user := seedSession(t, repo)

	t.Run("add and read back a participant", func(t *testing.T) {
		require.NoError(t, repo.Sessions().AddParticipant(ctx, session.ID, user.ID))

		ok, err := repo.Sessions().HasParticipant(ctx, session.ID, user.ID)
		assert.NoError(t, err)
		assert.True(t, ok)

		loaded, err := repo.Sessions().GetByID(ctx, session.ID)
		assert.NoError(t, err)
		assert.True(t, loaded.HasParticipant(user.ID))
		assert.Equal(t, []int64{user.ID}, loaded.ParticipantIDs())
	})

	t.Run("duplicate membership is refused by the store", func(t *testing.T) {
		err := repo.Sessions().AddParticipant(ctx, session.ID, user.ID)
		assert.True(t, booking.IsAlreadyParticipating(err))

		loaded, err := repo.Sessions().GetByID(ctx, session.ID)
		assert.NoError(t, err)
		assert.Len(t, loaded.Users, 1)
	})

	t.Run("remove a participant", func(t *testing.T) {
		require.NoError(t, repo.Sessions().RemoveParticipant(ctx, session.ID, user.ID))

		ok, err := repo.Sessions().HasParticipant(ctx, session.ID, user.ID)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("removing an absent membership reports not participating", func(t *testing.T) {
		err := repo.Sessions().RemoveParticipant(ctx, session.ID, user.ID)
		assert.True(t, booking.IsNotParticipating(err))
	})
}

func TestSessionsRepository_GetByID(t *testing.T) {
	db := testDB(t)
	repo := booking.NewRepositoryManager(db)
	ctx := context.Background()

	session, _ := seedSession(t, repo)

	t.Run("loads the teacher relation", func(t *testing.T) {
		loaded, err := repo.Sessions().GetByID(ctx, session.ID)
		assert.NoError(t, err)
		require.NotNil(t, loaded.Teacher)
		assert.Equal(t, "Delahaye", loaded.Teacher.LastName)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.Sessions().GetByID(ctx, 424242)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestSessionsRepository_Update(t *testing.T) {
	db := testDB(t)
	repo := booking.NewRepositoryManager(db)
	ctx := context.Background()

	session, user := seedSession(t, repo)

	t.Run("replaces fields and deduplicates the roster", func(t *testing.T) {
		session.Name = "Evening Flow"
		// the same user twice must collapse into one membership
		session.Users = []*booking.User{user, user}

		updated, err := repo.Sessions().Update(ctx, session)
		assert.NoError(t, err)
		assert.Equal(t, "Evening Flow", updated.Name)

		loaded, err := repo.Sessions().GetByID(ctx, session.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Evening Flow", loaded.Name)
		assert.Len(t, loaded.Users, 1)
	})

	t.Run("updating an unknown session is not found", func(t *testing.T) {
		ghost := &booking.Session{
			ID:        424242,
			Name:      "Ghost",
			Date:      time.Now(),
			TeacherID: 1,
		}
		_, err := repo.Sessions().Update(ctx, ghost)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestSessionsRepository_Delete(t *testing.T) {
	db := testDB(t)
	repo := booking.NewRepositoryManager(db)
	ctx := context.Background()

	session, user := seedSession(t, repo)
	require.NoError(t, repo.Sessions().AddParticipant(ctx, session.ID, user.ID))

	t.Run("deletes the session and its roster", func(t *testing.T) {
		require.NoError(t, repo.Sessions().DeleteByID(ctx, session.ID))

		_, err := repo.Sessions().GetByID(ctx, session.ID)
		assert.True(t, errors.IsNotFound(err))

		ok, err := repo.Sessions().HasParticipant(ctx, session.ID, user.ID)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("deleting twice is not found", func(t *testing.T) {
		err := repo.Sessions().DeleteByID(ctx, session.ID)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestUsersRepository(t *testing.T) {
	db := testDB(t)
	repo := booking.NewRepositoryManager(db)
	ctx := context.Background()

	t.Run("create normalizes the email", func(t *testing.T) {
		created, err := repo.Users().Create(ctx, &booking.User{
			Email:        "  MiXeD@Case.Com ",
			FirstName:    "Mixed",
			LastName:     "Case",
			PasswordHash: "x",
		})
		require.NoError(t, err)
		assert.Equal(t, "mixed@case.com", created.Email)

		found, err := repo.Users().GetByEmail(ctx, "MIXED@CASE.COM")
		assert.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("exists by email", func(t *testing.T) {
		ok, err := repo.Users().ExistsByEmail(ctx, "mixed@case.com")
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Users().ExistsByEmail(ctx, "nobody@case.com")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown lookups are not found", func(t *testing.T) {
		_, err := repo.Users().GetByID(ctx, 424242)
		assert.True(t, errors.IsNotFound(err))

		_, err = repo.Users().GetByEmail(ctx, "nobody@case.com")
		assert.True(t, errors.IsNotFound(err))

		err = repo.Users().DeleteByID(ctx, 424242)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestTeachersRepository(t *testing.T) {
	db := testDB(t)
	repo := booking.NewRepositoryManager(db)
	ctx := context.Background()

	_, err := repo.Teachers().Create(ctx, &booking.Teacher{FirstName: "Helene", LastName: "Thiercelin"})
	require.NoError(t, err)
	_, err = repo.Teachers().Create(ctx, &booking.Teacher{FirstName: "Margot", LastName: "Delahaye"})
	require.NoError(t, err)

	t.Run("list orders by name", func(t *testing.T) {
		records, err := repo.Teachers().List(ctx)
		assert.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Delahaye", records[0].LastName)
		assert.Equal(t, "Thiercelin", records[1].LastName)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := repo.Teachers().GetByID(ctx, 424242)
		assert.True(t, errors.IsNotFound(err))
	})
}
