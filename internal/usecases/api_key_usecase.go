package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/domain/repositories"
)

// ApiKeyUsecase issues, revokes and resolves capability tokens
type ApiKeyUsecase struct {
	apiKeyRepo repositories.ApiKeyRepository
	userRepo   repositories.UserRepository
}

func NewApiKeyUsecase(
	apiKeyRepo repositories.ApiKeyRepository,
	userRepo repositories.UserRepository,
) *ApiKeyUsecase {
	return &ApiKeyUsecase{
		apiKeyRepo: apiKeyRepo,
		userRepo:   userRepo,
	}
}

// Issue creates a key for the user. A blank name becomes "Default".
func (u *ApiKeyUsecase) Issue(ctx context.Context, userID uuid.UUID, name string) (*entities.ApiKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = entities.DefaultApiKeyName
	}
	if len(name) > 100 {
		return nil, domainerrors.BadRequest("name must be at most 100 characters")
	}

	if _, err := u.userRepo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}

	return u.apiKeyRepo.CreateApiKey(ctx, userID, name)
}

// Revoke deletes the key if it belongs to userID; anything else is a silent no-op
func (u *ApiKeyUsecase) Revoke(ctx context.Context, userID, keyID uuid.UUID) error {
	_, err := u.apiKeyRepo.DeleteApiKey(ctx, keyID, userID)
	return err
}

// List returns the user's keys newest first
func (u *ApiKeyUsecase) List(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	return u.apiKeyRepo.ListApiKeys(ctx, userID)
}

// Resolve maps a secret to its key and owner. Unknown secrets and keys whose
// owner has vanished both report domainerrors.ErrNotFound.
func (u *ApiKeyUsecase) Resolve(ctx context.Context, secret string) (*entities.ApiKey, *entities.User, error) {
	if secret == "" {
		return nil, nil, domainerrors.ErrNotFound
	}

	key, err := u.apiKeyRepo.GetApiKeyBySecret(ctx, secret)
	if err != nil {
		return nil, nil, err
	}

	owner, err := u.userRepo.GetUserByID(ctx, key.UserID)
	if err != nil {
		return nil, nil, err
	}
	return key, owner, nil
}
