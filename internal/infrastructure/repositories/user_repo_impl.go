package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/infrastructure/models"
	"aeroapi.backend/pkg/utils"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUserByID gets a user by internal ID
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// GetUserByExternalID gets a user by identity provider ID
func (r *UserRepository) GetUserByExternalID(ctx context.Context, externalID string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("external_id = ?", externalID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// UpsertUser inserts the user or refreshes its profile in a single statement
func (r *UserRepository) UpsertUser(ctx context.Context, input *entities.UpsertUserInput) (*entities.User, error) {
	now := time.Now().UTC()
	m := &models.User{
		ID:         utils.GenerateUUIDv7(),
		ExternalID: input.ExternalID,
		Name:       input.Name,
		Avatar:     input.Avatar,
		Email:      input.Email.Ptr(),
		IsAdmin:    input.IsAdmin,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":       input.Name,
			"avatar":     input.Avatar,
			"email":      input.Email.Ptr(),
			"updated_at": now,
			"is_admin":   gorm.Expr("users.is_admin OR ?", input.IsAdmin),
		}),
	}).Create(m).Error
	if err != nil {
		return nil, err
	}

	return r.GetUserByExternalID(ctx, input.ExternalID)
}

// ListUsers lists users newest first with optional search filter
func (r *UserRepository) ListUsers(ctx context.Context, search string) ([]*entities.User, error) {
	var userModels []models.User
	query := GetDB(ctx, r.db).Order("created_at DESC").Order("id DESC")

	if search != "" {
		term := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(external_id) LIKE ? ESCAPE '\'`, term, term)
	}

	if err := query.Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]*entities.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, toUserEntity(&userModels[i]))
	}
	return users, nil
}

func toUserEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		Name:       m.Name,
		Avatar:     m.Avatar,
		Email:      null.StringFromPtr(m.Email),
		IsAdmin:    m.IsAdmin,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
