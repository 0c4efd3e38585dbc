package repositories

import (
	"context"

	"github.com/google/uuid"

	"aeroapi.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*entities.User, error)
	// UpsertUser creates the user on first sight, otherwise refreshes the profile.
	// The admin flag is raised but never lowered.
	UpsertUser(ctx context.Context, input *entities.UpsertUserInput) (*entities.User, error)
	// ListUsers returns users newest first, optionally filtered by a
	// case-insensitive substring of name or external id.
	ListUsers(ctx context.Context, search string) ([]*entities.User, error)
}
