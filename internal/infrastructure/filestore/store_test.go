package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"aeroapi.backend/internal/domain/entities"
	"aeroapi.backend/internal/domain/repositories"
	"aeroapi.backend/internal/infrastructure/storetest"
)

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repositories.RecordStore {
		s, err := Open(filepath.Join(t.TempDir(), "store.json"), "")
		require.NoError(t, err)
		return s
	})
}

func TestStore_ReopenKeepsCommittedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	ctx := context.Background()

	s, err := Open(path, "Test-")
	require.NoError(t, err)

	u := storetest.MustUser(t, s, "42", "pilot")
	k, err := s.CreateApiKey(ctx, u.ID, "main")
	require.NoError(t, err)
	assert.Regexp(t, `^Test-[0-9a-f]{64}$`, k.Secret)

	_, err = s.CreateModerationAction(ctx, &entities.CreateModerationInput{
		UserID:          u.ID,
		Kind:            entities.ModerationRatelimit,
		Reason:          "burst",
		DurationSeconds: null.Int64From(30),
		ModeratorID:     u.ID,
		CreatedAt:       time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path, "Test-")
	require.NoError(t, err)

	got, err := reopened.GetApiKeyBySecret(ctx, k.Secret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)

	active, err := reopened.ListActiveModerationActions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].ExpiresAt.Valid)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

func TestStore_RolledBackWorkIsNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	s, err := Open(path, "")
	require.NoError(t, err)
	u := storetest.MustUser(t, s, "7", "crew")

	err = s.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.CreateApiKey(txCtx, u.ID, "doomed"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	keys, err := s.ListApiKeys(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)

	reopened, err := Open(path, "")
	require.NoError(t, err)
	keys, err = reopened.ListApiKeys(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStore_OpenMissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "absent.json"), "")
	require.NoError(t, err)

	users, err := s.ListUsers(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestStore_OpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode store file")
}

func TestStore_PersistFailureRestoresState(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "store.json"), "")
	require.NoError(t, err)
	ctx := context.Background()

	// a directory squatting on the temp path makes the write fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, "store.json.tmp"), 0o755))

	_, err = s.UpsertUser(ctx, &entities.UpsertUserInput{ExternalID: "1", Name: "n"})
	require.Error(t, err)

	users, err := s.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUniqueSecret_Collision(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store.json"), "")
	require.NoError(t, err)

	orig := generateSecret
	t.Cleanup(func() { generateSecret = orig })
	generateSecret = func(prefix string) (string, error) { return prefix + "fixed", nil }

	u := storetest.MustUser(t, s, "9", "n")
	_, err = s.CreateApiKey(context.Background(), u.ID, "first")
	require.NoError(t, err)

	_, err = s.CreateApiKey(context.Background(), u.ID, "second")
	assert.ErrorIs(t, err, errSecretCollision)
}
