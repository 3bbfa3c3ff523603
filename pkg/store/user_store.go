package store

import (
	"sync"

	"giftem/internal/util"
	"giftem/pkg/domain"
)

// UserStore holds the seeded user directory and the active viewer.
type UserStore struct {
	notifier

	mu        sync.RWMutex
	users     []domain.User
	currentID string
}

// NewUserStore builds the directory. currentID selects the active viewer;
// when empty or unknown the first user is used.
func NewUserStore(users []domain.User, currentID string) *UserStore {
	s := &UserStore{}
	s.users, s.currentID = prepareUsers(users, currentID)
	return s
}

func prepareUsers(users []domain.User, currentID string) ([]domain.User, string) {
	out := make([]domain.User, len(users))
	copy(out, users)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = util.NewID()
		}
	}
	if indexOfUser(out, currentID) < 0 {
		currentID = ""
		if len(out) > 0 {
			currentID = out[0].ID
		}
	}
	return out, currentID
}

func indexOfUser(users []domain.User, id string) int {
	if id == "" {
		return -1
	}
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// All returns the users in seed order.
func (s *UserStore) All() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out
}

// GetByID looks up a user.
func (s *UserStore) GetByID(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOfUser(s.users, id); i >= 0 {
		return s.users[i], true
	}
	return domain.User{}, false
}

// Current returns the active viewer.
func (s *UserStore) Current() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOfUser(s.users, s.currentID); i >= 0 {
		return s.users[i], true
	}
	return domain.User{}, false
}

// SetCurrent switches the active viewer. Unknown ids are ignored.
func (s *UserStore) SetCurrent(id string) bool {
	s.mu.Lock()
	if indexOfUser(s.users, id) < 0 {
		s.mu.Unlock()
		return false
	}
	changed := s.currentID != id
	s.currentID = id
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return true
}

// ReplaceSeed swaps the directory, keeping the current viewer if it still exists.
func (s *UserStore) ReplaceSeed(users []domain.User, currentID string) {
	s.mu.Lock()
	if currentID == "" {
		currentID = s.currentID
	}
	s.users, s.currentID = prepareUsers(users, currentID)
	s.mu.Unlock()
	s.notify()
}
