package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/infrastructure/models"
	"aeroapi.backend/pkg/utils"
)

// ApiKeyRepository implements api key storage
type ApiKeyRepository struct {
	db     *gorm.DB
	prefix string
}

// NewApiKeyRepository creates a repository issuing secrets with the given prefix
func NewApiKeyRepository(db *gorm.DB, prefix string) *ApiKeyRepository {
	if prefix == "" {
		prefix = utils.DefaultApiKeyPrefix
	}
	return &ApiKeyRepository{db: db, prefix: prefix}
}

// CreateApiKey persists a new key with a freshly generated secret
func (r *ApiKeyRepository) CreateApiKey(ctx context.Context, userID uuid.UUID, name string) (*entities.ApiKey, error) {
	secret, err := utils.GenerateApiKey(r.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}

	m := &models.ApiKey{
		ID:        utils.GenerateUUIDv7(),
		UserID:    userID,
		Secret:    secret,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return nil, err
	}
	return toApiKeyEntity(m), nil
}

// GetApiKeyBySecret finds a key by its secret value
func (r *ApiKeyRepository) GetApiKeyBySecret(ctx context.Context, secret string) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := GetDB(ctx, r.db).Where("api_key = ?", secret).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toApiKeyEntity(&m), nil
}

// ListApiKeys lists a user's keys newest first
func (r *ApiKeyRepository) ListApiKeys(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	var keyModels []models.ApiKey
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&keyModels).Error; err != nil {
		return nil, err
	}

	keys := make([]*entities.ApiKey, 0, len(keyModels))
	for i := range keyModels {
		keys = append(keys, toApiKeyEntity(&keyModels[i]))
	}
	return keys, nil
}

// DeleteApiKey deletes a key scoped to its owner
func (r *ApiKeyRepository) DeleteApiKey(ctx context.Context, id uuid.UUID, userID uuid.UUID) (int64, error) {
	result := GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&models.ApiKey{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// TouchApiKeyLastUsed records a successful use; a vanished key is ignored
func (r *ApiKeyRepository) TouchApiKeyLastUsed(ctx context.Context, secret string, at time.Time) error {
	return GetDB(ctx, r.db).
		Model(&models.ApiKey{}).
		Where("api_key = ?", secret).
		Update("last_used_at", at.UTC()).Error
}

func toApiKeyEntity(m *models.ApiKey) *entities.ApiKey {
	return &entities.ApiKey{
		ID:         m.ID,
		UserID:     m.UserID,
		Secret:     m.Secret,
		Name:       m.Name,
		CreatedAt:  m.CreatedAt,
		LastUsedAt: null.TimeFromPtr(m.LastUsedAt),
	}
}
