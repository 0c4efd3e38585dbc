package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"aeroapi.backend/internal/domain/entities"
)

type ApiKeyRepository interface {
	CreateApiKey(ctx context.Context, userID uuid.UUID, name string) (*entities.ApiKey, error)
	GetApiKeyBySecret(ctx context.Context, secret string) (*entities.ApiKey, error)
	ListApiKeys(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error)
	// DeleteApiKey removes the key only when it belongs to userID and
	// reports the number of rows removed.
	DeleteApiKey(ctx context.Context, id uuid.UUID, userID uuid.UUID) (int64, error)
	TouchApiKeyLastUsed(ctx context.Context, secret string, at time.Time) error
}
