package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonathan/vacancy-templater/internal/observability"
	"github.com/jonathan/vacancy-templater/internal/schemas"
	"github.com/rs/zerolog"
)

// FileStore keeps every template in one human-readable JSON file. The file
// is read once at open and rewritten through a temp file and rename on
// every Put, so a crash never leaves it truncated.
type FileStore struct {
	path    string
	logger  zerolog.Logger
	metrics *observability.Metrics
	now     func() time.Time

	// mu guards data and serializes the whole read-modify-write of Put.
	mu   sync.RWMutex
	data map[string]UserTemplate
}

// OpenFile loads the store at path. A missing file is an empty store. A
// corrupt file is logged, moved aside to <path>.corrupt and replaced by an
// empty store; it never fails the open.
func OpenFile(path string, logger zerolog.Logger, metrics *observability.Metrics) (*FileStore, error) {
	if path == "" {
		return nil, &StorageError{Op: "open", Message: "store path is empty"}
	}

	s := &FileStore{
		path:    path,
		logger:  logger.With().Str("component", "file_store").Str("path", path).Logger(),
		metrics: metrics,
		now:     time.Now,
		data:    make(map[string]UserTemplate),
	}

	if err := s.load(); err != nil {
		s.metrics.StoreError("load")
		s.logger.Error().Err(err).Msg("template store unreadable, starting empty")
		s.quarantine()
	}

	s.logger.Info().Int("templates", len(s.data)).Msg("template store loaded")
	return s, nil
}

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &StorageError{Op: "load", Path: s.path, Message: "failed to read store file", Cause: err}
	}

	if err := schemas.ValidateTemplateStore(raw); err != nil {
		return &StorageError{Op: "load", Path: s.path, Message: "store file does not match schema", Cause: err}
	}

	var data map[string]UserTemplate
	if err := json.Unmarshal(raw, &data); err != nil {
		return &StorageError{Op: "load", Path: s.path, Message: "failed to parse store file", Cause: err}
	}

	for owner, tpl := range data {
		tpl.OwnerID = owner
		data[owner] = tpl
	}
	s.data = data
	return nil
}

// quarantine moves a corrupt file out of the way so the next Put does not
// overwrite what a human may still want to repair.
func (s *FileStore) quarantine() {
	if _, err := os.Stat(s.path); err != nil {
		return
	}
	target := s.path + ".corrupt"
	if err := os.Rename(s.path, target); err != nil {
		s.logger.Warn().Err(err).Msg("failed to move corrupt store file aside")
		return
	}
	s.logger.Warn().Str("moved_to", target).Msg("corrupt store file moved aside")
}

// Get returns a copy of the owner's template, or nil when absent.
func (s *FileStore) Get(_ context.Context, ownerID string) (*UserTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.data[ownerID]
	if !ok {
		return nil, nil
	}
	return &tpl, nil
}

// Put replaces the owner's template and persists the whole store. The
// in-memory view only changes after the file has been replaced.
func (s *FileStore) Put(_ context.Context, ownerID, body, description string) error {
	if err := validatePut(ownerID, body); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]UserTemplate, len(s.data)+1)
	for owner, tpl := range s.data {
		next[owner] = tpl
	}
	next[ownerID] = UserTemplate{
		OwnerID:     ownerID,
		Body:        body,
		Description: description,
		UpdatedAt:   s.now().UTC(),
	}

	payload, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return &StorageError{Op: "put", Path: s.path, Message: "failed to encode store", Cause: err}
	}

	if err := writeFileAtomic(s.path, append(payload, '\n')); err != nil {
		s.metrics.StoreError("put")
		return &StorageError{Op: "put", Path: s.path, Message: "failed to write store file", Cause: err}
	}

	s.data = next
	return nil
}

// Len returns the number of stored templates.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close is a no-op; every Put is already durable.
func (s *FileStore) Close() error {
	return nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
