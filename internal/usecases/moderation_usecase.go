package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/domain/repositories"
	"aeroapi.backend/pkg/logger"
	"aeroapi.backend/pkg/metrics"
)

// ModerationUsecase resolves and changes the moderation state of users
type ModerationUsecase struct {
	moderationRepo repositories.ModerationRepository
	uow            repositories.UnitOfWork
	metrics        *metrics.Registry
	now            func() time.Time
}

// NewModerationUsecase creates a new moderation usecase. metrics may be nil.
func NewModerationUsecase(
	moderationRepo repositories.ModerationRepository,
	uow repositories.UnitOfWork,
	metricsRegistry *metrics.Registry,
) *ModerationUsecase {
	return &ModerationUsecase{
		moderationRepo: moderationRepo,
		uow:            uow,
		metrics:        metricsRegistry,
		now:            time.Now,
	}
}

// SetClock replaces the time source used to evaluate expiry
func (u *ModerationUsecase) SetClock(now func() time.Time) {
	u.now = now
}

// Status collapses the user's effectively active actions into one status
func (u *ModerationUsecase) Status(ctx context.Context, userID uuid.UUID) (*entities.ModerationStatus, error) {
	actions, err := u.moderationRepo.ListActiveModerationActions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ResolveStatus(actions, u.now()), nil
}

// ResolveStatus applies lock > disable > ratelimit to the actions effective at now.
// Within a kind the first effective action in the slice supplies the reason.
func ResolveStatus(actions []*entities.ModerationAction, now time.Time) *entities.ModerationStatus {
	status := &entities.ModerationStatus{}
	for _, kind := range entities.ModerationPrecedence {
		for _, a := range actions {
			if a.Kind != kind || !a.IsEffectivelyActive(now) {
				continue
			}
			switch kind {
			case entities.ModerationLock:
				status.IsLocked = true
			case entities.ModerationDisable:
				status.IsDisabled = true
			case entities.ModerationRatelimit:
				status.IsRatelimited = true
			}
			status.Reason = null.StringFrom(a.Reason)
			status.Kind = kind.StatusKind()
			return status
		}
	}
	return status
}

// Apply replaces the subject's active actions of the same kind with a new one.
// Deactivation and insert commit together or not at all.
func (u *ModerationUsecase) Apply(ctx context.Context, moderatorID uuid.UUID, input *entities.ApplyModerationInput) (*entities.ModerationAction, error) {
	if input.UserID == uuid.Nil {
		return nil, domainerrors.BadRequest("userId is required")
	}
	if !input.Kind.Valid() {
		return nil, domainerrors.BadRequest("actionType must be one of lock, disable, ratelimit")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, domainerrors.BadRequest("reason is required")
	}
	if input.DurationSeconds.Valid && input.DurationSeconds.Int64 <= 0 {
		return nil, domainerrors.BadRequest("durationSeconds must be positive")
	}

	var created *entities.ModerationAction
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.moderationRepo.LockSubject(txCtx, input.UserID); err != nil {
			return err
		}
		if _, err := u.moderationRepo.DeactivateModerationActions(txCtx, input.UserID, input.Kind); err != nil {
			return err
		}

		action, err := u.moderationRepo.CreateModerationAction(txCtx, &entities.CreateModerationInput{
			UserID:          input.UserID,
			Kind:            input.Kind,
			Reason:          reason,
			DurationSeconds: input.DurationSeconds,
			ModeratorID:     moderatorID,
			CreatedAt:       u.now(),
		})
		if err != nil {
			return err
		}
		created = action
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		logger.Error(ctx, "Failed to apply moderation action",
			zap.String("user_id", input.UserID.String()),
			zap.String("action_type", string(input.Kind)),
			zap.Error(err),
		)
		return nil, err
	}

	u.metrics.RecordModeration(moderationApplied, string(input.Kind))
	logger.Info(ctx, "Moderation action applied",
		zap.String("user_id", input.UserID.String()),
		zap.String("action_type", string(input.Kind)),
		zap.String("moderator_id", moderatorID.String()),
	)
	return created, nil
}

// Remove deactivates the subject's active actions of kind. Removing nothing is not an error.
func (u *ModerationUsecase) Remove(ctx context.Context, input *entities.RemoveModerationInput) (int64, error) {
	if input.UserID == uuid.Nil {
		return 0, domainerrors.BadRequest("userId is required")
	}
	if !input.Kind.Valid() {
		return 0, domainerrors.BadRequest("actionType must be one of lock, disable, ratelimit")
	}

	n, err := u.moderationRepo.DeactivateModerationActions(ctx, input.UserID, input.Kind)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		u.metrics.RecordModeration(moderationRemoved, string(input.Kind))
	}
	return n, nil
}

// History lists every action ever applied to the user, newest first
func (u *ModerationUsecase) History(ctx context.Context, userID uuid.UUID) ([]*entities.ModerationAction, error) {
	return u.moderationRepo.ListModerationHistory(ctx, userID)
}
