package repositories

import (
	"testing"

	domainRepos "aeroapi.backend/internal/domain/repositories"
	"aeroapi.backend/internal/infrastructure/storetest"
)

func TestRecordStore_SQLite(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domainRepos.RecordStore {
		return NewRecordStore(newMigratedDB(t), "")
	})
}
