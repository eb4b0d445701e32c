package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Session holds the token a client acts with. Load returns "" when nobody is logged in.
type Session interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileSession keeps the token in a JSON file readable only by its owner, so a
// login survives restarts.
type FileSession struct {
	path string
	mu   sync.Mutex
}

type sessionFile struct {
	Token string `json:"token"`
}

func NewFileSession(path string) *FileSession {
	return &FileSession{path: path}
}

// DefaultSessionPath is ~/.config/finance/session.json or its platform equivalent.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("client.DefaultSessionPath: %w", err)
	}

	return filepath.Join(dir, "finance", "session.json"), nil
}

func (s *FileSession) Load() (string, error) {
	const op = "client.FileSession.Load"

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	var f sessionFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return f.Token, nil
}

func (s *FileSession) Save(token string) error {
	const op = "client.FileSession.Save"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	raw, err := json.Marshal(sessionFile{Token: token})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *FileSession) Clear() error {
	const op = "client.FileSession.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
