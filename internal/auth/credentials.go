// Package auth manages the local user directory and the signed-in session.
// Usernames and passwords are compared exactly, without normalization.
package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dukerupert/grocer/internal/model"
	"github.com/dukerupert/grocer/internal/store"
)

// CredentialStore owns the users-directory, current-session-user and
// remember-session-flag keys.
type CredentialStore struct {
	mu      sync.Mutex
	backend store.Backend
	hasher  Hasher
	logger  *slog.Logger

	current  *model.User
	loading  atomic.Bool
	initOnce sync.Once
}

// NewCredentialStore builds a store over backend. A nil hasher stores
// passwords as-is.
func NewCredentialStore(backend store.Backend, hasher Hasher, logger *slog.Logger) *CredentialStore {
	if hasher == nil {
		hasher = PlainHasher{}
	}
	s := &CredentialStore{
		backend: backend,
		hasher:  hasher,
		logger:  logger,
	}
	s.loading.Store(true)
	return s
}

// Initialize restores the persisted session when the user asked to be
// remembered. Only the first call has any effect.
func (s *CredentialStore) Initialize() {
	s.initOnce.Do(func() {
		defer s.loading.Store(false)

		s.mu.Lock()
		defer s.mu.Unlock()

		flag, _, err := s.backend.Get(store.KeyRememberSession)
		if err != nil {
			s.logger.Error("read remember flag", "error", err)
			return
		}
		if flag != "true" {
			return
		}

		raw, ok, err := s.backend.Get(store.KeyCurrentSessionUser)
		if err != nil {
			s.logger.Error("read session", "error", err)
			return
		}
		if !ok {
			return
		}

		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Username == "" {
			s.logger.Warn("discarding unreadable session", "error", err)
			return
		}
		s.current = &u
		s.logger.Debug("session restored", "username", u.Username)
	})
}

// CurrentUser returns the signed-in user.
func (s *CredentialStore) CurrentUser() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.User{}, false
	}
	return *s.current, true
}

func (s *CredentialStore) IsLoading() bool {
	return s.loading.Load()
}

// Register adds username to the directory and signs it in. It reports false
// when the username is already taken. The error is non-nil only when the
// directory could not be read or written.
func (s *CredentialStore) Register(username, password string) (bool, error) {
	s.loading.Store(true)
	defer s.loading.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.readDirectory()
	if err != nil {
		return false, err
	}
	if _, exists := dir[username]; exists {
		s.logger.Debug("register: username taken", "username", username)
		return false, nil
	}

	verifier, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	dir[username] = verifier
	if err := s.writeDirectory(dir); err != nil {
		return false, err
	}

	s.startSession(username)
	s.logger.Info("user registered", "username", username)
	return true, nil
}

// Login signs username in when password matches the directory entry.
func (s *CredentialStore) Login(username, password string) (bool, error) {
	s.loading.Store(true)
	defer s.loading.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.readDirectory()
	if err != nil {
		return false, err
	}
	verifier, exists := dir[username]
	if !exists || !s.hasher.Verify(verifier, password) {
		s.logger.Debug("login rejected", "username", username)
		return false, nil
	}

	s.startSession(username)
	return true, nil
}

// Logout ends the session and forgets it on disk. Directory entries stay.
func (s *CredentialStore) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.backend.Remove(store.KeyCurrentSessionUser); err != nil {
		s.logger.Error("remove session", "error", err)
		return err
	}
	if err := s.backend.Remove(store.KeyRememberSession); err != nil {
		s.logger.Error("remove remember flag", "error", err)
		return err
	}
	return nil
}

// SetRemember controls whether the session survives a restart.
func (s *CredentialStore) SetRemember(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if on {
		err = s.backend.Set(store.KeyRememberSession, "true")
	} else {
		err = s.backend.Remove(store.KeyRememberSession)
	}
	if err != nil {
		return fmt.Errorf("set remember flag: %w", err)
	}
	return nil
}

// HasUser reports whether username is in the directory.
func (s *CredentialStore) HasUser(username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dir, err := s.readDirectory()
	if err != nil {
		return false, err
	}
	_, ok := dir[username]
	return ok, nil
}

// startSession sets the in-memory session first; a failed write only costs
// the session its persistence. Callers hold s.mu.
func (s *CredentialStore) startSession(username string) {
	u := model.User{Username: username}
	s.current = &u

	data, err := json.Marshal(u)
	if err == nil {
		err = s.backend.Set(store.KeyCurrentSessionUser, string(data))
	}
	if err != nil {
		s.logger.Error("save session", "username", username, "error", err)
	}
}

func (s *CredentialStore) readDirectory() (map[string]string, error) {
	raw, ok, err := s.backend.Get(store.KeyUsersDirectory)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	dir := make(map[string]string)
	if !ok {
		return dir, nil
	}
	if err := json.Unmarshal([]byte(raw), &dir); err != nil {
		return nil, fmt.Errorf("decode directory: %w", err)
	}
	return dir, nil
}

func (s *CredentialStore) writeDirectory(dir map[string]string) error {
	data, err := json.Marshal(dir)
	if err != nil {
		return fmt.Errorf("encode directory: %w", err)
	}
	if err := s.backend.Set(store.KeyUsersDirectory, string(data)); err != nil {
		return fmt.Errorf("write directory: %w", err)
	}
	return nil
}
