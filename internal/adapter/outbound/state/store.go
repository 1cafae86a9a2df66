package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/reusemart/reusemart-mobile/internal/domain/session"
)

// FileStore keeps session credentials in a single JSON file.
// It provides atomic writes (write-tmp-then-rename), a backup of the previous
// file, and file locking (flock for cross-process, mutex for in-process).
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// Compile-time interface checks.
var (
	_ session.Store      = (*FileStore)(nil)
	_ session.BatchStore = (*FileStore)(nil)
)

// NewFileStore creates a FileStore for the given file path. The file is not
// touched until the first write.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Get returns the value stored under key.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := file.Values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	return s.Apply(ctx, map[string]string{key: value}, nil)
}

// Remove deletes key.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	return s.Apply(ctx, nil, []string{key})
}

// Apply deletes every key in remove, then stores every entry in set, as one
// atomic rewrite of the file.
//
// The write sequence is:
//  1. Acquire in-process mutex
//  2. Acquire flock on path+".lock"
//  3. Read the current file (a corrupt file is replaced)
//  4. Copy current file to path+".bak"
//  5. Write to path+".tmp" with 0600 permissions, fsync
//  6. Rename path+".tmp" -> path
func (s *FileStore) Apply(ctx context.Context, set map[string]string, remove []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create credentials directory: %w", err)
		}
	}

	lockFd, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lockFd.Close() }()

	if err := lockFile(lockFd.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer unlockFile(lockFd.Fd()) //nolint:errcheck

	current, readErr := os.ReadFile(s.path)
	file := newCredentialFile()
	switch {
	case readErr == nil:
		var parsed CredentialFile
		if err := json.Unmarshal(current, &parsed); err != nil {
			s.logger.Warn("credentials file is corrupt, starting a new one", "path", s.path, "error", err)
		} else {
			file = &parsed
			if file.Values == nil {
				file.Values = map[string]string{}
			}
		}
		if err := os.WriteFile(s.path+".bak", current, 0600); err != nil {
			s.logger.Warn("failed to create backup", "error", err)
		}
	case !errors.Is(readErr, os.ErrNotExist):
		return fmt.Errorf("read credentials file: %w", readErr)
	}

	for _, key := range remove {
		delete(file.Values, key)
	}
	for key, value := range set {
		file.Values[key] = value
	}
	file.Version = SchemaVersion
	file.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	// Rename keeps the tmp file's mode, but an older file may predate it.
	if runtime.GOOS != "windows" {
		if err := os.Chmod(s.path, 0600); err != nil {
			s.logger.Warn("failed to set permissions on credentials file", "error", err)
		}
	}

	s.logger.Debug("credentials saved", "path", s.path, "keys", len(file.Values))
	return nil
}

// read loads the file. A missing file is an empty credential set.
func (s *FileStore) read() (*CredentialFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newCredentialFile(), nil
		}
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(s.path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 {
				s.logger.Warn("credentials file has too-open permissions, should be 0600",
					"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	var file CredentialFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	if file.Values == nil {
		file.Values = map[string]string{}
	}
	return &file, nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it
// over the target path. On any error the temp file is cleaned up.
func (s *FileStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to credentials: %w", err)
	}
	return nil
}

// Exists returns true if the credentials file exists on disk.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the configured file path.
func (s *FileStore) Path() string {
	return s.path
}

// Wipe deletes the credentials file together with its backup and lock file.
// Used by the reset command.
func (s *FileStore) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, p := range []string{s.path, s.path + ".bak", s.path + ".tmp", s.path + ".lock"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
