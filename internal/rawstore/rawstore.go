// Package rawstore persists the verbatim JSON pages fetched from the
// Fable API so every export run can be audited or replayed offline. Each
// run writes into its own UUID-named directory under the raw-data root.
package rawstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Store struct {
	RootDir string
	runID   string
}

// NewStore creates a store that will write the current run's pages under
// <rootDir>/<run uuid>/.
func NewStore(rootDir string) *Store {
	return &Store{
		RootDir: rootDir,
		runID:   uuid.New().String(),
	}
}

// RunDir returns the directory this run's payloads are saved into.
func (s *Store) RunDir() string {
	return filepath.Join(s.RootDir, s.runID)
}

// Save writes one payload verbatim as <name>.json inside the run directory.
func (s *Store) Save(name string, payload []byte) error {
	if err := os.MkdirAll(s.RunDir(), 0755); err != nil {
		return fmt.Errorf("failed to create raw data directory: %w", err)
	}

	path := filepath.Join(s.RunDir(), fmt.Sprintf("%s.json", name))
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("failed to write raw payload: %w", err)
	}
	return nil
}
