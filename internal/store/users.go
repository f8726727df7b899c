package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"ar-viewer-backend/internal/auth"
	"ar-viewer-backend/internal/models"
)

// UserStore holds the users created at process start. There is no user
// self-service; the admin account is seeded from configuration.
type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]models.User)}
}

// Create hashes the password and stores the user.
func (s *UserStore) Create(username, password string, isAdmin bool) (models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New(),
		Username: username,
		Password: hash,
		IsAdmin:  isAdmin,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byUsernameLocked(username); exists {
		return models.User{}, fmt.Errorf("username %q already exists", username)
	}
	s.users[user.ID] = user
	return user, nil
}

// Get returns a user by id.
func (s *UserStore) Get(id uuid.UUID) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	return user, ok
}

// GetByUsername returns a user by username.
func (s *UserStore) GetByUsername(username string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byUsernameLocked(username)
}

func (s *UserStore) byUsernameLocked(username string) (models.User, bool) {
	for _, user := range s.users {
		if user.Username == username {
			return user, true
		}
	}
	return models.User{}, false
}
