package repositories

import (
	"gorm.io/gorm"

	domainRepos "aeroapi.backend/internal/domain/repositories"
	"aeroapi.backend/internal/infrastructure/models"
)

var _ domainRepos.RecordStore = (*RecordStore)(nil)

// RecordStore bundles the GORM repositories behind the domain RecordStore contract
type RecordStore struct {
	*UserRepository
	*ApiKeyRepository
	*ModerationRepository
	*UnitOfWorkImpl
}

// NewRecordStore creates a record store on db. keyPrefix is prepended to issued secrets.
func NewRecordStore(db *gorm.DB, keyPrefix string) *RecordStore {
	return &RecordStore{
		UserRepository:       NewUserRepository(db),
		ApiKeyRepository:     NewApiKeyRepository(db, keyPrefix),
		ModerationRepository: NewModerationRepository(db),
		UnitOfWorkImpl:       &UnitOfWorkImpl{db: db},
	}
}

// Migrate creates or updates the record store tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
