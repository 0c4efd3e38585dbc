package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createScratchTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE scratch (id TEXT PRIMARY KEY, name TEXT UNIQUE NOT NULL);`)
}

func TestUnitOfWork_DoCommitAndRollback(t *testing.T) {
	db := newTestDB(t)
	createScratchTable(t, db)
	u := &UnitOfWorkImpl{db: db}

	// commit path
	err := u.Do(context.Background(), func(ctx context.Context) error {
		return GetDB(ctx, db).Exec("INSERT INTO scratch(id,name) VALUES (?,?)", uuid.New().String(), "lock").Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Table("scratch").Count(&count).Error)
	require.Equal(t, int64(1), count)

	// rollback path
	err = u.Do(context.Background(), func(ctx context.Context) error {
		if err := GetDB(ctx, db).Exec("INSERT INTO scratch(id,name) VALUES (?,?)", uuid.New().String(), "disable").Error; err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	require.Error(t, err)

	require.NoError(t, db.Table("scratch").Count(&count).Error)
	require.Equal(t, int64(1), count, "second insert must be rolled back")
}

func TestUnitOfWork_NestedDoJoinsOuter(t *testing.T) {
	db := newTestDB(t)
	createScratchTable(t, db)
	u := &UnitOfWorkImpl{db: db}

	err := u.Do(context.Background(), func(ctx context.Context) error {
		outer := GetDB(ctx, db)
		return u.Do(ctx, func(inner context.Context) error {
			require.Same(t, outer, GetDB(inner, db))
			if err := GetDB(inner, db).Exec("INSERT INTO scratch(id,name) VALUES (?,?)", uuid.New().String(), "nested").Error; err != nil {
				return err
			}
			return errors.New("inner failure")
		})
	})
	require.EqualError(t, err, "inner failure")

	var count int64
	require.NoError(t, db.Table("scratch").Count(&count).Error)
	require.Zero(t, count)
}

func TestUnitOfWork_PanicRollsBack(t *testing.T) {
	db := newTestDB(t)
	createScratchTable(t, db)
	u := &UnitOfWorkImpl{db: db}

	require.Panics(t, func() {
		_ = u.Do(context.Background(), func(ctx context.Context) error {
			if err := GetDB(ctx, db).Exec("INSERT INTO scratch(id,name) VALUES (?,?)", uuid.New().String(), "boom").Error; err != nil {
				return err
			}
			panic("boom")
		})
	})

	var count int64
	require.NoError(t, db.Table("scratch").Count(&count).Error)
	require.Zero(t, count)
}

func TestUnitOfWork_GetDB(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	plainDB := u.GetDB(context.Background())
	require.NotNil(t, plainDB)

	tx := db.Begin()
	txCtx := context.WithValue(context.Background(), txKey, tx)
	require.Equal(t, tx, u.GetDB(txCtx))
	tx.Rollback()
}

func TestUnitOfWork_DoBeginFailure(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = u.Do(context.Background(), func(ctx context.Context) error {
		_ = ctx
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to begin transaction")
}

func TestUnitOfWork_DoCommitFailure_WithHook(t *testing.T) {
	db := newTestDB(t)
	createScratchTable(t, db)
	u := &UnitOfWorkImpl{db: db}

	origCommit := commitTx
	t.Cleanup(func() { commitTx = origCommit })
	commitTx = func(tx *gorm.DB) error {
		_ = tx
		return errors.New("forced commit fail")
	}

	err := u.Do(context.Background(), func(ctx context.Context) error {
		return GetDB(ctx, db).Exec("INSERT INTO scratch(id,name) VALUES (?,?)", uuid.New().String(), "lock").Error
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to commit transaction")
}
