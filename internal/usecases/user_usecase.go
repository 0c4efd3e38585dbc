package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/domain/repositories"
	"aeroapi.backend/pkg/jwt"
	"aeroapi.backend/pkg/logger"
	"aeroapi.backend/pkg/utils"
)

// UserUsecase absorbs identity provider logins and serves account listings
type UserUsecase struct {
	userRepo   repositories.UserRepository
	moderation StatusResolver
	jwtService *jwt.JWTService
	admins     map[string]struct{}
}

// NewUserUsecase creates a user usecase. adminExternalIDs is copied.
func NewUserUsecase(
	userRepo repositories.UserRepository,
	moderation StatusResolver,
	jwtService *jwt.JWTService,
	adminExternalIDs []string,
) *UserUsecase {
	admins := make(map[string]struct{}, len(adminExternalIDs))
	for _, id := range adminExternalIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &UserUsecase{
		userRepo:   userRepo,
		moderation: moderation,
		jwtService: jwtService,
		admins:     admins,
	}
}

// IsAdminExternalID reports whether the identity is on the admin allow-list
func (u *UserUsecase) IsAdminExternalID(externalID string) bool {
	_, ok := u.admins[externalID]
	return ok
}

// Login upserts the profile and returns a session token for it.
// Allow-listed identities are elevated; nobody is ever demoted here.
func (u *UserUsecase) Login(ctx context.Context, input *entities.UpsertUserInput) (*entities.SessionResponse, error) {
	input.ExternalID = strings.TrimSpace(input.ExternalID)
	input.Name = strings.TrimSpace(input.Name)
	if input.ExternalID == "" || input.Name == "" {
		return nil, domainerrors.BadRequest("externalId and name are required")
	}
	input.IsAdmin = u.IsAdminExternalID(input.ExternalID)

	user, err := u.userRepo.UpsertUser(ctx, input)
	if err != nil {
		return nil, err
	}

	token, err := u.jwtService.GenerateAccessToken(user.ID, user.ExternalID, string(user.Role()))
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	logger.Info(ctx, "User session issued",
		zap.String("user_id", user.ID.String()),
		zap.Bool("is_admin", user.IsAdmin),
	)
	return &entities.SessionResponse{AccessToken: token, User: user}, nil
}

// GetUser returns the user or a not found error
func (u *UserUsecase) GetUser(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, err := u.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns a page of users matching search, each with its current status
func (u *UserUsecase) ListUsers(ctx context.Context, search string, pagination utils.PaginationParams) ([]*entities.UserWithStatus, *utils.PaginationMeta, error) {
	users, err := u.userRepo.ListUsers(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, nil, err
	}

	page := utils.Paginate(users, pagination)
	items := make([]*entities.UserWithStatus, 0, len(page))
	for _, user := range page {
		status, err := u.moderation.Status(ctx, user.ID)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, &entities.UserWithStatus{User: user, ModerationStatus: status})
	}

	meta := utils.CalculateMeta(int64(len(users)), pagination.Page, pagination.Limit)
	return items, &meta, nil
}
