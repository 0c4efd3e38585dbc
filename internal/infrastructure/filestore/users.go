package filestore

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"aeroapi.backend/internal/domain/entities"
	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/pkg/utils"
)

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var found *entities.User
	s.read(ctx, func() {
		if u := s.userByID(id); u != nil {
			cp := *u
			found = &cp
		}
	})
	if found == nil {
		return nil, domainerrors.ErrNotFound
	}
	return found, nil
}

func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (*entities.User, error) {
	var found *entities.User
	s.read(ctx, func() {
		if u := s.userByExternalID(externalID); u != nil {
			cp := *u
			found = &cp
		}
	})
	if found == nil {
		return nil, domainerrors.ErrNotFound
	}
	return found, nil
}

func (s *Store) UpsertUser(ctx context.Context, input *entities.UpsertUserInput) (*entities.User, error) {
	var result entities.User
	err := s.write(ctx, func() error {
		now := time.Now().UTC()
		if u := s.userByExternalID(input.ExternalID); u != nil {
			u.Name = input.Name
			u.Avatar = input.Avatar
			u.Email = input.Email
			u.IsAdmin = u.IsAdmin || input.IsAdmin
			u.UpdatedAt = now
			result = *u
			return nil
		}

		u := &entities.User{
			ID:         utils.GenerateUUIDv7(),
			ExternalID: input.ExternalID,
			Name:       input.Name,
			Avatar:     input.Avatar,
			Email:      input.Email,
			IsAdmin:    input.IsAdmin,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		s.data.Users = append(s.data.Users, u)
		result = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Store) ListUsers(ctx context.Context, search string) ([]*entities.User, error) {
	needle := strings.ToLower(search)
	users := make([]*entities.User, 0)
	s.read(ctx, func() {
		for _, u := range s.data.Users {
			if needle != "" &&
				!strings.Contains(strings.ToLower(u.Name), needle) &&
				!strings.Contains(strings.ToLower(u.ExternalID), needle) {
				continue
			}
			cp := *u
			users = append(users, &cp)
		}
	})

	sort.SliceStable(users, func(i, j int) bool {
		return newerFirst(users[i].CreatedAt, users[j].CreatedAt, users[i].ID, users[j].ID)
	})
	return users, nil
}

func (s *Store) userByID(id uuid.UUID) *entities.User {
	for _, u := range s.data.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Store) userByExternalID(externalID string) *entities.User {
	for _, u := range s.data.Users {
		if u.ExternalID == externalID {
			return u
		}
	}
	return nil
}

// newerFirst orders by creation time descending, breaking ties on the
// time-ordered id.
func newerFirst(a, b time.Time, aID, bID uuid.UUID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return bytes.Compare(aID[:], bID[:]) > 0
}
