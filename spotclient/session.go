package spotclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"spotfinder/models"
	"sync"
)

// Session is the signed-in state of a client: the bearer token and the
// user it belongs to. The zero value is a signed-out session.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.Profile
}

type sessionFile struct {
	Token string          `json:"token"`
	User  *models.Profile `json:"user"`
}

func (s *Session) Set(token string, user models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user, if any.
func (s *Session) User() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.Profile{}, false
	}
	return *s.user, true
}

func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Save writes the session to path, readable by the owner only.
func (s *Session) Save(path string) error {
	s.mu.RLock()
	data, err := json.Marshal(sessionFile{Token: s.token, User: s.user})
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// LoadSession reads a saved session. A missing file yields a signed-out
// session.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &Session{token: f.Token, user: f.User}, nil
}
