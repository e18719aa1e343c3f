// Package session holds the client-side login state: the bearer token and
// profile persisted to disk, plus the in-memory chat transcript for the
// current run. The transcript is never written to disk.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"campus-assistant/internal/model"
)

type persistedState struct {
	Token   string         `json:"token"`
	Profile *model.Profile `json:"profile,omitempty"`
}

// Session is safe for concurrent use. It implements client.TokenSource.
type Session struct {
	mu         sync.Mutex
	path       string
	token      string
	profile    *model.Profile
	transcript []model.Message
}

// DefaultPath places the session file under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "campus-assistant", "session.json"), nil
}

// Load restores any persisted token from path. A missing or unreadable file
// yields a logged-out session, not an error.
func Load(path string) *Session {
	s := &Session{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return s
	}
	s.token = state.Token
	s.profile = state.Profile
	return s
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

func (s *Session) Profile() *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetLogin stores the token and profile and persists them.
func (s *Session) SetLogin(token string, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.profile = profile
	return s.saveLocked()
}

// Logout clears the token, profile and transcript and removes the file.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.profile = nil
	s.transcript = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *Session) Append(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, msg)
}

// ClearTranscript drops the in-memory conversation but keeps the login.
func (s *Session) ClearTranscript() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}

func (s *Session) saveLocked() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	data, err := json.MarshalIndent(persistedState{Token: s.token, Profile: s.profile}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
