// Package auth owns the signed-in session: the bearer token and the user it
// belongs to. Both are persisted together or not at all.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/philocompass/compass/internal/api"
	"github.com/philocompass/compass/internal/store"
)

// Storage keys.
const (
	TokenKey = "philocompass_token"
	UserKey  = "philocompass_user"
)

var (
	ErrEmptyToken = errors.New("token is required")
	ErrEmptyUser  = errors.New("user is required")
)

// Session is an authenticated identity.
type Session struct {
	Token string
	User  api.User
}

// Manager holds the current session in memory and mirrors it to a KV.
// It is safe for concurrent use; tea commands read headers off the UI
// goroutine.
type Manager struct {
	kv     store.KV
	logger *zap.Logger

	mu      sync.RWMutex
	session *Session
}

// NewManager returns an unauthenticated manager. Call Restore to load a
// persisted session.
func NewManager(kv store.KV, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{kv: kv, logger: logger}
}

// Restore loads the persisted session once. A half-written or corrupt entry
// is purged and the manager stays signed out; only storage failures are
// returned. The token is not checked with the server.
func (m *Manager) Restore(ctx context.Context) error {
	token, tokErr := m.kv.Get(ctx, TokenKey)
	rawUser, userErr := m.kv.Get(ctx, UserKey)

	for _, err := range []error{tokErr, userErr} {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("restore session: %w", err)
		}
	}

	if tokErr != nil && userErr != nil {
		return nil
	}
	if tokErr != nil || userErr != nil || token == "" {
		m.logger.Warn("incomplete stored session, clearing")
		return m.purge(ctx)
	}

	var user api.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.Username == "" {
		m.logger.Warn("stored user is unreadable, clearing session", zap.Error(err))
		return m.purge(ctx)
	}

	m.mu.Lock()
	m.session = &Session{Token: token, User: user}
	m.mu.Unlock()

	m.logger.Info("session restored", zap.String("username", user.Username))
	return nil
}

// Login stores a new session, replacing any existing one.
func (m *Manager) Login(ctx context.Context, token string, user api.User) error {
	if token == "" {
		return ErrEmptyToken
	}
	if user.Username == "" {
		return ErrEmptyUser
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.kv.SetAll(ctx, map[string]string{
		TokenKey: token,
		UserKey:  string(raw),
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.session = &Session{Token: token, User: user}
	m.mu.Unlock()

	m.logger.Info("signed in", zap.String("username", user.Username), zap.Int("user_id", user.ID))
	return nil
}

// Logout forgets the session. Memory is cleared before storage, so a storage
// failure still leaves the process signed out.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()

	if err := m.kv.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.logger.Info("signed out")
	return nil
}

// AuthHeaders returns a bearer Authorization header, or an empty set when
// signed out.
func (m *Manager) AuthHeaders() http.Header {
	h := http.Header{}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session != nil {
		h.Set("Authorization", "Bearer "+m.session.Token)
	}
	return h
}

// Session returns a copy of the current session.
func (m *Manager) Session() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil
}

func (m *Manager) purge(ctx context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	if err := m.kv.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("purge session: %w", err)
	}
	return nil
}
