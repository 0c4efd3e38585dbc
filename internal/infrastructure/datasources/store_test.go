package datasources

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"aeroapi.backend/internal/config"
	"aeroapi.backend/internal/domain/entities"
	"aeroapi.backend/internal/infrastructure/filestore"
	gormrepos "aeroapi.backend/internal/infrastructure/repositories"
)

func TestOpen_File(t *testing.T) {
	store, err := Open(config.StoreConfig{
		Driver:       config.StoreDriverFile,
		FilePath:     filepath.Join(t.TempDir(), "aero.json"),
		ApiKeyPrefix: "AeroAPI-",
	}, config.DatabaseConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	assert.IsType(t, &filestore.Store{}, store.RecordStore)
}

func TestOpen_SQLiteMigratesAndServes(t *testing.T) {
	store, err := Open(config.StoreConfig{
		Driver:       config.StoreDriverSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "nested", "aero.db"),
		ApiKeyPrefix: "AeroAPI-",
	}, config.DatabaseConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	assert.IsType(t, &gormrepos.RecordStore{}, store.RecordStore)

	user, err := store.UpsertUser(context.Background(), &entities.UpsertUserInput{ExternalID: "1", Name: "pilot"})
	require.NoError(t, err)
	key, err := store.CreateApiKey(context.Background(), user.ID, "k")
	require.NoError(t, err)
	assert.Regexp(t, `^AeroAPI-[0-9a-f]{64}$`, key.Secret)
}

func TestOpen_PostgresUnreachable(t *testing.T) {
	_, err := Open(config.StoreConfig{Driver: config.StoreDriverPostgres, ApiKeyPrefix: "AeroAPI-"}, config.DatabaseConfig{
		Host: "127.0.0.1", Port: 1, User: "x", Password: "x", DBName: "x", SSLMode: "disable",
	})
	require.Error(t, err)
}

func TestOpen_OpenFailure(t *testing.T) {
	orig := openGorm
	t.Cleanup(func() { openGorm = orig })
	openGorm = func(gorm.Dialector) (*gorm.DB, error) { return nil, errors.New("open failed") }

	_, err := Open(config.StoreConfig{
		Driver:     config.StoreDriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "aero.db"),
	}, config.DatabaseConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.StoreConfig{Driver: "mongo"}, config.DatabaseConfig{})
	assert.EqualError(t, err, `unknown store driver "mongo"`)
}
