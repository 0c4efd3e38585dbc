package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/domain/repositories"
	"aeroapi.backend/pkg/logger"
	"aeroapi.backend/pkg/metrics"
)

// KeyResolver maps a secret to its key and owner
type KeyResolver interface {
	Resolve(ctx context.Context, secret string) (*entities.ApiKey, *entities.User, error)
}

// StatusResolver reports a user's current moderation status
type StatusResolver interface {
	Status(ctx context.Context, userID uuid.UUID) (*entities.ModerationStatus, error)
}

// AuthorizationUsecase decides whether a request bearing an API key may proceed
type AuthorizationUsecase struct {
	keys       KeyResolver
	moderation StatusResolver
	apiKeyRepo repositories.ApiKeyRepository
	metrics    *metrics.Registry
	now        func() time.Time

	touches sync.WaitGroup
}

func NewAuthorizationUsecase(
	keys KeyResolver,
	moderation StatusResolver,
	apiKeyRepo repositories.ApiKeyRepository,
	metricsRegistry *metrics.Registry,
) *AuthorizationUsecase {
	return &AuthorizationUsecase{
		keys:       keys,
		moderation: moderation,
		apiKeyRepo: apiKeyRepo,
		metrics:    metricsRegistry,
		now:        time.Now,
	}
}

// SetClock replaces the time source used for last-used stamps
func (u *AuthorizationUsecase) SetClock(now func() time.Time) {
	u.now = now
}

// Authorize evaluates the key against current stored state. Storage failures
// are returned as errors; every other outcome is a Decision.
func (u *AuthorizationUsecase) Authorize(ctx context.Context, secret string) (*entities.Decision, error) {
	decision, err := u.decide(ctx, secret)
	if err != nil {
		u.metrics.RecordDecision("error")
		return nil, err
	}

	if decision.Allowed {
		u.metrics.RecordDecision(decisionAllowed)
		u.touchLastUsed(ctx, decision.Key.Secret)
	} else {
		u.metrics.RecordDecision(string(decision.Reason))
	}
	return decision, nil
}

func (u *AuthorizationUsecase) decide(ctx context.Context, secret string) (*entities.Decision, error) {
	if secret == "" {
		return entities.Deny(entities.DenyMissing), nil
	}

	key, owner, err := u.keys.Resolve(ctx, secret)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return entities.Deny(entities.DenyNotFound), nil
		}
		return nil, err
	}

	status, err := u.moderation.Status(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case status.IsLocked:
		return entities.Deny(entities.DenyLocked), nil
	case status.IsDisabled:
		return entities.Deny(entities.DenyDisabled), nil
	case status.IsRatelimited:
		return entities.Deny(entities.DenyRatelimited), nil
	}
	return entities.Allow(owner, key), nil
}

// touchLastUsed stamps the key in the background. Failures are logged only.
func (u *AuthorizationUsecase) touchLastUsed(ctx context.Context, secret string) {
	at := u.now()
	bg := context.WithoutCancel(ctx)

	u.touches.Add(1)
	go func() {
		defer u.touches.Done()

		touchCtx, cancel := context.WithTimeout(bg, TouchTimeout)
		defer cancel()

		if err := u.apiKeyRepo.TouchApiKeyLastUsed(touchCtx, secret, at); err != nil {
			logger.Warn(touchCtx, "Failed to record api key usage", zap.Error(err))
		}
	}()
}

// Wait blocks until every pending last-used update has finished
func (u *AuthorizationUsecase) Wait() {
	u.touches.Wait()
}
