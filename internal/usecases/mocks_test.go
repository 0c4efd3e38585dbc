package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"aeroapi.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	args := m.Called(ctx, f)
	if err := args.Error(0); err != nil {
		return err
	}
	return f(ctx)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByExternalID(ctx context.Context, externalID string) (*entities.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpsertUser(ctx context.Context, input *entities.UpsertUserInput) (*entities.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, search string) ([]*entities.User, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

// Mock ApiKeyRepository
type MockApiKeyRepository struct {
	mock.Mock
}

func (m *MockApiKeyRepository) CreateApiKey(ctx context.Context, userID uuid.UUID, name string) (*entities.ApiKey, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) GetApiKeyBySecret(ctx context.Context, secret string) (*entities.ApiKey, error) {
	args := m.Called(ctx, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) ListApiKeys(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) DeleteApiKey(ctx context.Context, id uuid.UUID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApiKeyRepository) TouchApiKeyLastUsed(ctx context.Context, secret string, at time.Time) error {
	args := m.Called(ctx, secret, at)
	return args.Error(0)
}

// Mock ModerationRepository
type MockModerationRepository struct {
	mock.Mock
}

func (m *MockModerationRepository) CreateModerationAction(ctx context.Context, input *entities.CreateModerationInput) (*entities.ModerationAction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ModerationAction), args.Error(1)
}

func (m *MockModerationRepository) DeactivateModerationActions(ctx context.Context, userID uuid.UUID, kind entities.ModerationKind) (int64, error) {
	args := m.Called(ctx, userID, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockModerationRepository) ListActiveModerationActions(ctx context.Context, userID uuid.UUID) ([]*entities.ModerationAction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ModerationAction), args.Error(1)
}

func (m *MockModerationRepository) ListModerationHistory(ctx context.Context, userID uuid.UUID) ([]*entities.ModerationAction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ModerationAction), args.Error(1)
}

func (m *MockModerationRepository) LockSubject(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// Mock StatusResolver
type MockStatusResolver struct {
	mock.Mock
}

func (m *MockStatusResolver) Status(ctx context.Context, userID uuid.UUID) (*entities.ModerationStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ModerationStatus), args.Error(1)
}

// Mock KeyResolver
type MockKeyResolver struct {
	mock.Mock
}

func (m *MockKeyResolver) Resolve(ctx context.Context, secret string) (*entities.ApiKey, *entities.User, error) {
	args := m.Called(ctx, secret)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entities.ApiKey), args.Get(1).(*entities.User), args.Error(2)
}
