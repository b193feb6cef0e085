package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/clarkmarket/marketctl/internal/api"
)

// ErrCorruptState is returned when the persisted session file cannot be
// parsed.
var ErrCorruptState = errors.New("corrupt session state")

// State is the persisted session snapshot. It is the single source of
// truth across process restarts and must stay consistent with the
// Manager's in-memory view after every mutation.
type State struct {
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	User         *api.User `json:"user,omitempty"`
	IsLoggedIn   bool      `json:"is_logged_in"`
}

// Store persists session state as a JSON file on the local filesystem.
type Store struct {
	mu      sync.Mutex
	baseDir string
}

// NewStore creates a new session store.
// If baseDir is empty, uses ~/.marketctl/session/
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".marketctl", "session")
	}

	// Tokens live here, keep the directory private
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("session store initialized")

	return &Store{baseDir: baseDir}, nil
}

func (s *Store) statePath() string {
	return filepath.Join(s.baseDir, "state.json")
}

// Load reads the persisted state. A missing file yields an empty state;
// an unparseable file yields ErrCorruptState.
func (s *Store) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	return &state, nil
}

// Save writes the state atomically via a temp file and rename, so a
// crash mid-write never leaves a half-updated session on disk.
func (s *Store) Save(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	statePath := s.statePath()
	tempPath := statePath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}

	if err := os.Rename(tempPath, statePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session state: %w", err)
	}

	return nil
}

// Clear removes the persisted state. Missing state is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.statePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session state: %w", err)
	}

	return nil
}
