package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/straye-as/projecthub/internal/domain"
)

// document is the on-disk layout
type document struct {
	AccessToken string         `json:"accessToken,omitempty"`
	User        *domain.Member `json:"user,omitempty"`
}

// FileStore implements Store as a JSON file on the local filesystem
type FileStore struct {
	path string
	mu   sync.Mutex
	doc  document
}

// NewFileStore opens the session file at path, creating its directory if needed.
// A missing file is an empty session.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.doc); err != nil {
			return nil, fmt.Errorf("failed to parse session file %s: %w", path, err)
		}
	}

	return s, nil
}

// Path returns the location of the session file
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.AccessToken
}

func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.AccessToken == token {
		return nil
	}
	s.doc.AccessToken = token
	return s.flush()
}

func (s *FileStore) User() (*domain.Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.User == nil {
		return nil, false
	}
	u := *s.doc.User
	return &u, true
}

func (s *FileStore) SetUser(user *domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.doc.User = nil
	} else {
		u := *user
		s.doc.User = &u
	}
	return s.flush()
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = document{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// flush writes the document via a temp file and rename; callers hold mu
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName) // Cleanup on error
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to restrict session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
