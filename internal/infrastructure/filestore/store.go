// Package filestore is a record store backed by a single JSON file.
//
// State lives in memory behind a mutex and every committed mutation rewrites
// the file atomically (temp file + rename). A unit of work holds the write
// lock for its whole duration and restores the previous state on failure.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"aeroapi.backend/internal/domain/entities"
	"aeroapi.backend/internal/domain/repositories"
	"aeroapi.backend/pkg/utils"
)

var _ repositories.RecordStore = (*Store)(nil)

type txKey struct{}

type snapshot struct {
	Users             []*entities.User             `json:"users"`
	ApiKeys           []*entities.ApiKey           `json:"apiKeys"`
	ModerationActions []*entities.ModerationAction `json:"moderationActions"`
}

func (s *snapshot) clone() snapshot {
	c := snapshot{
		Users:             make([]*entities.User, len(s.Users)),
		ApiKeys:           make([]*entities.ApiKey, len(s.ApiKeys)),
		ModerationActions: make([]*entities.ModerationAction, len(s.ModerationActions)),
	}
	for i, u := range s.Users {
		cp := *u
		c.Users[i] = &cp
	}
	for i, k := range s.ApiKeys {
		cp := *k
		c.ApiKeys[i] = &cp
	}
	for i, a := range s.ModerationActions {
		cp := *a
		c.ModerationActions[i] = &cp
	}
	return c
}

// Store implements repositories.RecordStore on a JSON file
type Store struct {
	path   string
	prefix string

	mu   sync.RWMutex
	data snapshot
}

// Open loads the store at path, creating its directory when needed.
// A missing file starts an empty store; an unreadable one is an error.
func Open(path, keyPrefix string) (*Store, error) {
	if keyPrefix == "" {
		keyPrefix = utils.DefaultApiKeyPrefix
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{path: path, prefix: keyPrefix}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if err := json.Unmarshal(content, &s.data); err != nil {
		return nil, fmt.Errorf("failed to decode store file %s: %w", path, err)
	}
	return s, nil
}

// Close is a no-op; every commit is already on disk.
func (s *Store) Close() error {
	return nil
}

// Do runs fn with the write lock held. Changes made by fn are persisted
// together when it returns nil and discarded otherwise.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = backup
		return err
	}
	if err := s.persist(); err != nil {
		s.data = backup
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

func (s *Store) read(ctx context.Context, fn func()) {
	if s.inTx(ctx) {
		fn()
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

func (s *Store) write(ctx context.Context, fn func() error) error {
	if s.inTx(ctx) {
		return fn()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.data.clone()
	if err := fn(); err != nil {
		s.data = backup
		return err
	}
	if err := s.persist(); err != nil {
		s.data = backup
		return err
	}
	return nil
}

// persist must be called with the write lock held.
func (s *Store) persist() error {
	bytes, err := json.MarshalIndent(&s.data, "", "  ")
	if err != nil {
		return err
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0o600); err != nil {
		return err
	}
	return os.Rename(tempPath, s.path)
}
