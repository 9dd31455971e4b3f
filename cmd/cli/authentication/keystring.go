package authentication

// keystring.go keeps the session token in the OS keyring on the client side.

import (
	"encoding/json"
	"errors"
	"time"

	"elibrary/internal/viewstate"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "elibrary-cli"
	tokenKey    = "auth_token"
)

// StoredCredentials is what is written under tokenKey.
type StoredCredentials struct {
	Token     string `json:"token"`
	Username  string `json:"username,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// Expired reports whether the token is past its expiry, if one was recorded.
func (c StoredCredentials) Expired(now time.Time) bool {
	return c.ExpiresAt > 0 && now.Unix() >= c.ExpiresAt
}

// KeyringStore is a viewstate.TokenStore backed by the OS keyring. Entries are
// keyed per API URL so several servers can be used side by side.
type KeyringStore struct {
	user string
	now  func() time.Time
}

var _ viewstate.CredentialStore = (*KeyringStore)(nil)

func NewKeyringStore(apiURL string) *KeyringStore {
	return &KeyringStore{user: tokenKey + ":" + apiURL, now: time.Now}
}

// Load returns viewstate.ErrNoToken when nothing usable is stored.
func (s *KeyringStore) Load() (string, error) {
	creds, err := s.Credentials()
	if err != nil {
		return "", err
	}
	if creds.Token == "" || creds.Expired(s.now()) {
		return "", viewstate.ErrNoToken
	}
	return creds.Token, nil
}

func (s *KeyringStore) Save(token string) error {
	return s.Store(&StoredCredentials{Token: token})
}

func (s *KeyringStore) SaveCredentials(token, username string, expiresAt time.Time) error {
	creds := &StoredCredentials{Token: token, Username: username}
	if !expiresAt.IsZero() {
		creds.ExpiresAt = expiresAt.Unix()
	}
	return s.Store(creds)
}

func (s *KeyringStore) Clear() error {
	err := keyring.Delete(serviceName, s.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Store writes the full credential record.
func (s *KeyringStore) Store(creds *StoredCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, s.user, string(data))
}

// Credentials reads the stored record.
func (s *KeyringStore) Credentials() (*StoredCredentials, error) {
	value, err := keyring.Get(serviceName, s.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, viewstate.ErrNoToken
	}
	if err != nil {
		return nil, err
	}

	var creds StoredCredentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		// Unreadable entries are treated as absent
		return nil, viewstate.ErrNoToken
	}
	return &creds, nil
}
