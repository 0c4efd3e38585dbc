package filestore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/pkg/utils"
)

func (s *Store) CreateModerationAction(ctx context.Context, input *entities.CreateModerationInput) (*entities.ModerationAction, error) {
	var result entities.ModerationAction
	err := s.write(ctx, func() error {
		a := &entities.ModerationAction{
			ID:              utils.GenerateUUIDv7(),
			UserID:          input.UserID,
			Kind:            input.Kind,
			Reason:          input.Reason,
			DurationSeconds: input.DurationSeconds,
			ModeratorID:     input.ModeratorID,
			CreatedAt:       input.CreatedAt.UTC(),
			ExpiresAt:       input.ExpiresAt(),
			IsActive:        true,
		}
		if a.ExpiresAt.Valid {
			a.ExpiresAt.Time = a.ExpiresAt.Time.UTC()
		}
		s.data.ModerationActions = append(s.data.ModerationActions, a)
		result = *a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Store) DeactivateModerationActions(ctx context.Context, userID uuid.UUID, kind entities.ModerationKind) (int64, error) {
	var affected int64
	err := s.write(ctx, func() error {
		for _, a := range s.data.ModerationActions {
			if a.UserID == userID && a.Kind == kind && a.IsActive {
				a.IsActive = false
				affected++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (s *Store) ListActiveModerationActions(ctx context.Context, userID uuid.UUID) ([]*entities.ModerationAction, error) {
	return s.listActions(ctx, userID, true), nil
}

func (s *Store) ListModerationHistory(ctx context.Context, userID uuid.UUID) ([]*entities.ModerationAction, error) {
	history := s.listActions(ctx, userID, false)
	s.read(ctx, func() {
		for _, a := range history {
			a.ModeratorName = entities.UnknownModerator
			if m := s.userByID(a.ModeratorID); m != nil {
				a.ModeratorName = m.Name
			}
		}
	})
	return history, nil
}

// LockSubject checks the subject exists. Writes are already serialized by
// the unit of work holding the store lock.
func (s *Store) LockSubject(ctx context.Context, userID uuid.UUID) error {
	var exists bool
	s.read(ctx, func() {
		exists = s.userByID(userID) != nil
	})
	if !exists {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (s *Store) listActions(ctx context.Context, userID uuid.UUID, activeOnly bool) []*entities.ModerationAction {
	actions := make([]*entities.ModerationAction, 0)
	s.read(ctx, func() {
		for _, a := range s.data.ModerationActions {
			if a.UserID != userID || (activeOnly && !a.IsActive) {
				continue
			}
			cp := *a
			actions = append(actions, &cp)
		}
	})

	sort.SliceStable(actions, func(i, j int) bool {
		return newerFirst(actions[i].CreatedAt, actions[j].CreatedAt, actions[i].ID, actions[j].ID)
	})
	return actions
}
