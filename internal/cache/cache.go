// Package cache persists check script bodies under content-addressed paths
// and maintains one mutable "current" pointer per check name.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fregataa/aami-check-runner/internal/client"
)

// PersistError reports a cache write failure for a single check. It is
// scoped to that check: the run continues and the check is counted failed.
type PersistError struct {
	Check string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting script for check %q: %v", e.Check, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// pointerName is the per-check pointer record. It holds the filename of the
// active body, replacing the symlink the shell-era runner used, and is
// swapped atomically via rename so a concurrent reader never sees it missing.
const pointerName = "current"

// Store is a content-addressed script cache rooted at one directory, with a
// subdirectory per check name.
type Store struct {
	dir string
	log zerolog.Logger
}

// NewStore creates a store rooted at dir. The directory is created lazily on
// first write.
func NewStore(dir string, log zerolog.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// EnsureCurrent makes the definition's script body the current version for
// its check name and returns the path to the executable body. Body writes
// are idempotent: a body for a given (name, hash) is written at most once.
// The pointer is only rewritten when it does not already name this body.
func (s *Store) EnsureCurrent(def client.CheckDefinition) (string, error) {
	checkDir := filepath.Join(s.dir, def.Name)
	if err := os.MkdirAll(checkDir, 0o755); err != nil {
		return "", &PersistError{Check: def.Name, Err: err}
	}

	bodyName := fmt.Sprintf("%s_%s.sh", def.Name, def.ContentHash)
	bodyPath := filepath.Join(checkDir, bodyName)

	if _, err := os.Stat(bodyPath); errors.Is(err, fs.ErrNotExist) {
		s.log.Info().Str("check", def.Name).Str("hash", shortHash(def.ContentHash)).Msg("saving new check script")
		if err := os.WriteFile(bodyPath, def.ScriptBody, 0o755); err != nil {
			return "", &PersistError{Check: def.Name, Err: err}
		}
	} else if err != nil {
		return "", &PersistError{Check: def.Name, Err: err}
	} else {
		s.log.Debug().Str("check", def.Name).Str("hash", shortHash(def.ContentHash)).Msg("check script already cached")
	}

	if err := s.setPointer(checkDir, def.Name, bodyName); err != nil {
		return "", err
	}
	return bodyPath, nil
}

// Current resolves the pointer for a check name to its active body path.
func (s *Store) Current(name string) (string, error) {
	checkDir := filepath.Join(s.dir, name)
	data, err := os.ReadFile(filepath.Join(checkDir, pointerName))
	if err != nil {
		return "", fmt.Errorf("resolving current script for check %q: %w", name, err)
	}
	bodyName := strings.TrimSpace(string(data))
	bodyPath := filepath.Join(checkDir, bodyName)
	if _, err := os.Stat(bodyPath); err != nil {
		return "", fmt.Errorf("resolving current script for check %q: %w", name, err)
	}
	return bodyPath, nil
}

func (s *Store) setPointer(checkDir, check, bodyName string) error {
	ptrPath := filepath.Join(checkDir, pointerName)
	if data, err := os.ReadFile(ptrPath); err == nil && strings.TrimSpace(string(data)) == bodyName {
		return nil
	}

	tmp, err := os.CreateTemp(checkDir, pointerName+".tmp")
	if err != nil {
		return &PersistError{Check: check, Err: err}
	}
	if _, err := tmp.WriteString(bodyName + "\n"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return &PersistError{Check: check, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return &PersistError{Check: check, Err: err}
	}
	if err := os.Rename(tmp.Name(), ptrPath); err != nil {
		_ = os.Remove(tmp.Name())
		return &PersistError{Check: check, Err: err}
	}
	s.log.Debug().Str("check", check).Str("current", bodyName).Msg("updated current pointer")
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
