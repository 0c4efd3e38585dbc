package repositories

import (
	"context"

	"github.com/google/uuid"

	"aeroapi.backend/internal/domain/entities"
)

// ModerationRepository defines moderation action storage
type ModerationRepository interface {
	CreateModerationAction(ctx context.Context, input *entities.CreateModerationInput) (*entities.ModerationAction, error)
	DeactivateModerationActions(ctx context.Context, userID uuid.UUID, kind entities.ModerationKind) (int64, error)
	// ListActiveModerationActions returns rows whose stored flag is active,
	// newest first. Expiry is not applied.
	ListActiveModerationActions(ctx context.Context, userID uuid.UUID) ([]*entities.ModerationAction, error)
	ListModerationHistory(ctx context.Context, userID uuid.UUID) ([]*entities.ModerationAction, error)
	// LockSubject serializes moderation writes for one user inside a unit of work.
	LockSubject(ctx context.Context, userID uuid.UUID) error
}
