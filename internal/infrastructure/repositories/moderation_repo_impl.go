package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/infrastructure/models"
	"aeroapi.backend/pkg/utils"
)

// ModerationRepository implements moderation action storage
type ModerationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

func (r *ModerationRepository) CreateModerationAction(ctx context.Context, input *entities.CreateModerationInput) (*entities.ModerationAction, error) {
	m := &models.ModerationAction{
		ID:              utils.GenerateUUIDv7(),
		UserID:          input.UserID,
		ActionType:      string(input.Kind),
		Reason:          input.Reason,
		DurationSeconds: input.DurationSeconds.Ptr(),
		ModeratorID:     input.ModeratorID,
		CreatedAt:       input.CreatedAt.UTC(),
		ExpiresAt:       input.ExpiresAt().Ptr(),
		IsActive:        true,
	}
	if m.ExpiresAt != nil {
		utc := m.ExpiresAt.UTC()
		m.ExpiresAt = &utc
	}

	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return nil, err
	}
	return toModerationEntity(m), nil
}

// DeactivateModerationActions soft deletes every active action of kind for the user
func (r *ModerationRepository) DeactivateModerationActions(ctx context.Context, userID uuid.UUID, kind entities.ModerationKind) (int64, error) {
	result := GetDB(ctx, r.db).
		Model(&models.ModerationAction{}).
		Where("user_id = ? AND action_type = ? AND is_active = ?", userID, string(kind), true).
		Update("is_active", false)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *ModerationRepository) ListActiveModerationActions(ctx context.Context, userID uuid.UUID) ([]*entities.ModerationAction, error) {
	var rows []models.ModerationAction
	if err := GetDB(ctx, r.db).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	actions := make([]*entities.ModerationAction, 0, len(rows))
	for i := range rows {
		actions = append(actions, toModerationEntity(&rows[i]))
	}
	return actions, nil
}

// ListModerationHistory returns every action for the user joined with the moderator's name
func (r *ModerationRepository) ListModerationHistory(ctx context.Context, userID uuid.UUID) ([]*entities.ModerationAction, error) {
	var rows []models.ModerationHistoryRow
	if err := GetDB(ctx, r.db).
		Table("moderation_actions").
		Select("moderation_actions.*, users.name AS moderator_name").
		Joins("LEFT JOIN users ON users.id = moderation_actions.moderator_id").
		Where("moderation_actions.user_id = ?", userID).
		Order("moderation_actions.created_at DESC").
		Order("moderation_actions.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	history := make([]*entities.ModerationAction, 0, len(rows))
	for i := range rows {
		action := toModerationEntity(&rows[i].ModerationAction)
		action.ModeratorName = entities.UnknownModerator
		if rows[i].ModeratorName != nil {
			action.ModeratorName = *rows[i].ModeratorName
		}
		history = append(history, action)
	}
	return history, nil
}

// LockSubject takes a row lock on the user so concurrent replaces for the
// same subject serialize. SQLite ignores the locking clause and relies on
// its single writer.
func (r *ModerationRepository) LockSubject(ctx context.Context, userID uuid.UUID) error {
	var m models.User
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrNotFound
		}
		return err
	}
	return nil
}

func toModerationEntity(m *models.ModerationAction) *entities.ModerationAction {
	return &entities.ModerationAction{
		ID:              m.ID,
		UserID:          m.UserID,
		Kind:            entities.ModerationKind(m.ActionType),
		Reason:          m.Reason,
		DurationSeconds: null.Int64FromPtr(m.DurationSeconds),
		ModeratorID:     m.ModeratorID,
		CreatedAt:       m.CreatedAt,
		ExpiresAt:       null.TimeFromPtr(m.ExpiresAt),
		IsActive:        m.IsActive,
	}
}
