package viewstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"elibrary/internal/microservices/http-api/dto"
)

// ErrNoToken is returned by a TokenStore holding nothing.
var ErrNoToken = errors.New("no stored token")

// TokenStore persists the session token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// CredentialStore is a TokenStore that can also record whose token it is and
// when it expires. Session uses it when available.
type CredentialStore interface {
	TokenStore
	SaveCredentials(token, username string, expiresAt time.Time) error
}

// Session is the signed-in user, if any. Callers drive its lifecycle
// explicitly: Load at start-up, Login/Register, Logout.
type Session struct {
	api   API
	store TokenStore

	mu   sync.RWMutex
	user *dto.UserResponse
}

func NewSession(api API, store TokenStore) *Session {
	return &Session{api: api, store: store}
}

// Load restores a stored token and resolves the user behind it. A token the
// server rejects is cleared; other failures keep it for the next attempt.
func (s *Session) Load(ctx context.Context) error {
	token, err := s.store.Load()
	if errors.Is(err, ErrNoToken) || (err == nil && token == "") {
		s.setUser(nil)
		return nil
	}
	if err != nil {
		return err
	}

	s.api.SetToken(token)
	user, err := s.api.Me(ctx)
	if err != nil {
		s.api.SetToken("")
		s.setUser(nil)
		if isUnauthorized(err) {
			return s.store.Clear()
		}
		return err
	}

	s.setUser(user)
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	return s.adopt(resp)
}

func (s *Session) Register(ctx context.Context, username, email, password string) error {
	resp, err := s.api.Register(ctx, dto.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return err
	}
	return s.adopt(resp)
}

// Logout forgets the token locally. Tokens are stateless so the server is not told.
func (s *Session) Logout() error {
	s.api.SetToken("")
	s.setUser(nil)
	if err := s.store.Clear(); err != nil && !errors.Is(err, ErrNoToken) {
		return err
	}
	return nil
}

func (s *Session) adopt(resp *dto.AuthResponse) error {
	var err error
	if cs, ok := s.store.(CredentialStore); ok {
		var expiresAt time.Time
		if resp.ExpiresIn > 0 {
			expiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		}
		err = cs.SaveCredentials(resp.Token, resp.User.Username, expiresAt)
	} else {
		err = s.store.Save(resp.Token)
	}
	if err != nil {
		return err
	}
	s.api.SetToken(resp.Token)
	user := resp.User
	s.setUser(&user)
	return nil
}

func (s *Session) setUser(u *dto.UserResponse) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *dto.UserResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool {
	return s.User() != nil
}

// UserID is empty when signed out.
func (s *Session) UserID() string {
	if u := s.User(); u != nil {
		return u.ID
	}
	return ""
}
