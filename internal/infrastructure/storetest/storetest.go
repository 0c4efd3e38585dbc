// Package storetest holds the behaviour every RecordStore backend must share.
package storetest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/domain/repositories"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) repositories.RecordStore

// Run exercises the RecordStore contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("UpsertUser", func(t *testing.T) { testUpsertUser(t, newStore(t)) })
	t.Run("ListUsers", func(t *testing.T) { testListUsers(t, newStore(t)) })
	t.Run("ApiKeyRoundTrip", func(t *testing.T) { testApiKeyRoundTrip(t, newStore(t)) })
	t.Run("DeleteApiKeyScoped", func(t *testing.T) { testDeleteApiKeyScoped(t, newStore(t)) })
	t.Run("TouchApiKeyLastUsed", func(t *testing.T) { testTouchApiKeyLastUsed(t, newStore(t)) })
	t.Run("ModerationLifecycle", func(t *testing.T) { testModerationLifecycle(t, newStore(t)) })
	t.Run("ModerationHistory", func(t *testing.T) { testModerationHistory(t, newStore(t)) })
	t.Run("UnitOfWorkRollback", func(t *testing.T) { testUnitOfWorkRollback(t, newStore(t)) })
}

// MustUser upserts a plain user and fails the test on error.
func MustUser(t *testing.T, store repositories.RecordStore, externalID, name string) *entities.User {
	t.Helper()
	u, err := store.UpsertUser(context.Background(), &entities.UpsertUserInput{
		ExternalID: externalID,
		Name:       name,
		Avatar:     "avatar-" + externalID,
	})
	require.NoError(t, err)
	return u
}

func testUpsertUser(t *testing.T, store repositories.RecordStore) {
	ctx := context.Background()

	created, err := store.UpsertUser(ctx, &entities.UpsertUserInput{
		ExternalID: "1001",
		Name:       "pilot",
		Avatar:     "a1",
		Email:      null.StringFrom("pilot@example.com"),
		IsAdmin:    true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsAdmin)
	assert.Equal(t, "pilot@example.com", created.Email.String)

	updated, err := store.UpsertUser(ctx, &entities.UpsertUserInput{
		ExternalID: "1001",
		Name:       "captain",
		Avatar:     "a2",
		IsAdmin:    false,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "captain", updated.Name)
	assert.Equal(t, "a2", updated.Avatar)
	assert.False(t, updated.Email.Valid)
	assert.True(t, updated.IsAdmin, "admin flag is never lowered by login")

	byExternal, err := store.GetUserByExternalID(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byExternal.ID)

	byID, err := store.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "captain", byID.Name)

	_, err = store.GetUserByExternalID(ctx, "missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = store.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	plain := MustUser(t, store, "2002", "crew")
	assert.False(t, plain.IsAdmin)
	raised, err := store.UpsertUser(ctx, &entities.UpsertUserInput{ExternalID: "2002", Name: "crew", IsAdmin: true})
	require.NoError(t, err)
	assert.True(t, raised.IsAdmin, "admin flag is raised on login")
}

func testListUsers(t *testing.T, store repositories.RecordStore) {
	ctx := context.Background()
	first := MustUser(t, store, "111", "Alpha")
	second := MustUser(t, store, "222", "bravo_pilot")
	third := MustUser(t, store, "333", "Charlie")

	all, err := store.ListUsers(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{third.ID, second.ID, first.ID}, userIDs(all))

	byName, err := store.ListUsers(ctx, "ALPHA")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID}, userIDs(byName))

	byExternal, err := store.ListUsers(ctx, "33")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{third.ID}, userIDs(byExternal))

	literal, err := store.ListUsers(ctx, "o_p")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID}, userIDs(literal))

	none, err := store.ListUsers(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testApiKeyRoundTrip(t *testing.T, store repositories.RecordStore) {
	ctx := context.Background()
	owner := MustUser(t, store, "3003", "owner")

	k, err := store.CreateApiKey(ctx, owner.ID, "n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(k.Secret, "AeroAPI-"))
	assert.False(t, k.LastUsedAt.Valid)

	got, err := store.GetApiKeyBySecret(ctx, k.Secret)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.UserID)
	assert.Equal(t, "n", got.Name)
	assert.Equal(t, k.ID, got.ID)

	second, err := store.CreateApiKey(ctx, owner.ID, "second")
	require.NoError(t, err)
	assert.NotEqual(t, k.Secret, second.Secret)

	keys, err := store.ListApiKeys(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, second.ID, keys[0].ID, "newest first")
	assert.Equal(t, k.ID, keys[1].ID)

	_, err = store.GetApiKeyBySecret(ctx, "AeroAPI-unknown")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func testDeleteApiKeyScoped(t *testing.T, store repositories.RecordStore) {
	ctx := context.Background()
	a := MustUser(t, store, "4004", "a")
	b := MustUser(t, store, "5005", "b")

	x, err := store.CreateApiKey(ctx, a.ID, "x")
	require.NoError(t, err)

	n, err := store.DeleteApiKey(ctx, x.ID, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	still, err := store.GetApiKeyBySecret(ctx, x.Secret)
	require.NoError(t, err)
	assert.Equal(t, a.ID, still.UserID)

	n, err = store.DeleteApiKey(ctx, x.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetApiKeyBySecret(ctx, x.Secret)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	n, err = store.DeleteApiKey(ctx, x.ID, a.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "deleting twice is a no-op")
}

func testTouchApiKeyLastUsed(t *testing.T, store repositories.RecordStore) {
	ctx := context.Background()
	owner := MustUser(t, store, "6006", "owner")
	k, err := store.CreateApiKey(ctx, owner.ID, "k")
	require.NoError(t, err)

	at := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.TouchApiKeyLastUsed(ctx, k.Secret, at))

	got, err := store.GetApiKeyBySecret(ctx, k.Secret)
	require.NoError(t, err)
	require.True(t, got.LastUsedAt.Valid)
	assert.True(t, at.Equal(got.LastUsedAt.Time))

	assert.NoError(t, store.TouchApiKeyLastUsed(ctx, "AeroAPI-vanished", at))
}

func testModerationLifecycle(t *testing.T, store repositories.RecordStore) {
	ctx := context.Background()
	subject := MustUser(t, store, "7007", "subject")
	moderator := MustUser(t, store, "8008", "mod")
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	rl, err := store.CreateModerationAction(ctx, &entities.CreateModerationInput{
		UserID:          subject.ID,
		Kind:            entities.ModerationRatelimit,
		Reason:          "spam",
		DurationSeconds: null.Int64From(60),
		ModeratorID:     moderator.ID,
		CreatedAt:       now,
	})
	require.NoError(t, err)
	assert.True(t, rl.IsActive)
	require.True(t, rl.ExpiresAt.Valid)
	assert.True(t, now.Add(60*time.Second).Equal(rl.ExpiresAt.Time))

	lock, err := store.CreateModerationAction(ctx, &entities.CreateModerationInput{
		UserID:          subject.ID,
		Kind:            entities.ModerationLock,
		Reason:          "abuse",
		DurationSeconds: null.Int64From(60),
		ModeratorID:     moderator.ID,
		CreatedAt:       now.Add(time.Second),
	})
	require.NoError(t, err)
	assert.False(t, lock.ExpiresAt.Valid, "only ratelimits expire")
	assert.Equal(t, int64(60), lock.DurationSeconds.Int64)

	active, err := store.ListActiveModerationActions(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, lock.ID, active[0].ID)

	n, err := store.DeactivateModerationActions(ctx, subject.ID, entities.ModerationRatelimit)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.DeactivateModerationActions(ctx, subject.ID, entities.ModerationRatelimit)
	require.NoError(t, err)
	assert.Zero(t, n)

	active, err = store.ListActiveModerationActions(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, entities.ModerationLock, active[0].Kind)

	require.NoError(t, store.LockSubject(ctx, subject.ID))
	assert.ErrorIs(t, store.LockSubject(ctx, uuid.New()), domainerrors.ErrNotFound)
}

func testModerationHistory(t *testing.T, store repositories.RecordStore) {
	ctx := context.Background()
	subject := MustUser(t, store, "9009", "subject")
	moderator := MustUser(t, store, "1010", "Head Mod")
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	_, err := store.CreateModerationAction(ctx, &entities.CreateModerationInput{
		UserID: subject.ID, Kind: entities.ModerationDisable, Reason: "first",
		ModeratorID: moderator.ID, CreatedAt: now,
	})
	require.NoError(t, err)
	_, err = store.CreateModerationAction(ctx, &entities.CreateModerationInput{
		UserID: subject.ID, Kind: entities.ModerationLock, Reason: "second",
		ModeratorID: uuid.New(), CreatedAt: now.Add(time.Minute),
	})
	require.NoError(t, err)

	history, err := store.ListModerationHistory(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Reason)
	assert.Equal(t, entities.UnknownModerator, history[0].ModeratorName)
	assert.Equal(t, "first", history[1].Reason)
	assert.Equal(t, "Head Mod", history[1].ModeratorName)

	empty, err := store.ListModerationHistory(ctx, moderator.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testUnitOfWorkRollback(t *testing.T, store repositories.RecordStore) {
	ctx := context.Background()
	subject := MustUser(t, store, "1111", "subject")
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	_, err := store.CreateModerationAction(ctx, &entities.CreateModerationInput{
		UserID: subject.ID, Kind: entities.ModerationLock, Reason: "original",
		ModeratorID: subject.ID, CreatedAt: now,
	})
	require.NoError(t, err)

	boom := errors.New("insert failed")
	err = store.Do(ctx, func(txCtx context.Context) error {
		if err := store.LockSubject(txCtx, subject.ID); err != nil {
			return err
		}
		if _, err := store.DeactivateModerationActions(txCtx, subject.ID, entities.ModerationLock); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	active, err := store.ListActiveModerationActions(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, active, 1, "deactivation must be rolled back")
	assert.Equal(t, "original", active[0].Reason)

	err = store.Do(ctx, func(txCtx context.Context) error {
		if _, err := store.DeactivateModerationActions(txCtx, subject.ID, entities.ModerationLock); err != nil {
			return err
		}
		_, err := store.CreateModerationAction(txCtx, &entities.CreateModerationInput{
			UserID: subject.ID, Kind: entities.ModerationLock, Reason: "replacement",
			ModeratorID: subject.ID, CreatedAt: now.Add(time.Minute),
		})
		return err
	})
	require.NoError(t, err)

	active, err = store.ListActiveModerationActions(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "replacement", active[0].Reason)
}

func userIDs(users []*entities.User) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
