// Package session keeps the bearer token and last-known user profile
// between calls. It replaces ambient browser storage with an explicit object
// handed to the HTTP client.
package session

import (
	"fmt"
	"sync"

	"github.com/straye-as/projecthub/internal/config"
	"github.com/straye-as/projecthub/internal/domain"
)

// Fixed keys of the persisted session document
const (
	TokenKey = "accessToken"
	UserKey  = "user"
)

// Store defines the interface for session persistence
type Store interface {
	Token() string
	SetToken(token string) error
	User() (*domain.Member, bool)
	SetUser(user *domain.Member) error
	// Clear removes both the token and the user profile
	Clear() error
}

// NewStore creates a store based on configuration
func NewStore(cfg *config.SessionConfig) (Store, error) {
	switch cfg.Mode {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported session mode: %s", cfg.Mode)
	}
}

// MemoryStore implements Store in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  *domain.Member
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) User() (*domain.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, true
}

func (s *MemoryStore) SetUser(user *domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return nil
	}
	u := *user
	s.user = &u
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}
