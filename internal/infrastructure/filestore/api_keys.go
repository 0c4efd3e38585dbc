package filestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/pkg/utils"
)

const maxSecretAttempts = 3

var (
	errSecretCollision = errors.New("could not generate a unique api key")

	generateSecret = utils.GenerateApiKey
)

func (s *Store) CreateApiKey(ctx context.Context, userID uuid.UUID, name string) (*entities.ApiKey, error) {
	var result entities.ApiKey
	err := s.write(ctx, func() error {
		secret, err := s.uniqueSecret()
		if err != nil {
			return err
		}

		k := &entities.ApiKey{
			ID:        utils.GenerateUUIDv7(),
			UserID:    userID,
			Secret:    secret,
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		s.data.ApiKeys = append(s.data.ApiKeys, k)
		result = *k
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Store) uniqueSecret() (string, error) {
	for i := 0; i < maxSecretAttempts; i++ {
		secret, err := generateSecret(s.prefix)
		if err != nil {
			return "", fmt.Errorf("failed to generate api key: %w", err)
		}
		if s.keyBySecret(secret) == nil {
			return secret, nil
		}
	}
	return "", errSecretCollision
}

func (s *Store) GetApiKeyBySecret(ctx context.Context, secret string) (*entities.ApiKey, error) {
	var found *entities.ApiKey
	s.read(ctx, func() {
		if k := s.keyBySecret(secret); k != nil {
			cp := *k
			found = &cp
		}
	})
	if found == nil {
		return nil, domainerrors.ErrNotFound
	}
	return found, nil
}

func (s *Store) ListApiKeys(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	keys := make([]*entities.ApiKey, 0)
	s.read(ctx, func() {
		for _, k := range s.data.ApiKeys {
			if k.UserID == userID {
				cp := *k
				keys = append(keys, &cp)
			}
		}
	})

	sort.SliceStable(keys, func(i, j int) bool {
		return newerFirst(keys[i].CreatedAt, keys[j].CreatedAt, keys[i].ID, keys[j].ID)
	})
	return keys, nil
}

func (s *Store) DeleteApiKey(ctx context.Context, id uuid.UUID, userID uuid.UUID) (int64, error) {
	var removed int64
	err := s.write(ctx, func() error {
		kept := s.data.ApiKeys[:0]
		for _, k := range s.data.ApiKeys {
			if k.ID == id && k.UserID == userID {
				removed++
				continue
			}
			kept = append(kept, k)
		}
		s.data.ApiKeys = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Store) TouchApiKeyLastUsed(ctx context.Context, secret string, at time.Time) error {
	return s.write(ctx, func() error {
		if k := s.keyBySecret(secret); k != nil {
			k.LastUsedAt = null.TimeFrom(at.UTC())
		}
		return nil
	})
}

func (s *Store) keyBySecret(secret string) *entities.ApiKey {
	for _, k := range s.data.ApiKeys {
		if k.Secret == secret {
			return k
		}
	}
	return nil
}
