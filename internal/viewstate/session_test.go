package viewstate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_LoadWithoutToken(t *testing.T) {
	session := NewSession(newFakeAPI(), &memoryStore{})

	require.NoError(t, session.Load(context.Background()))
	assert.False(t, session.IsAuthenticated())
	assert.Nil(t, session.User())
	assert.Empty(t, session.UserID())
}

func TestSession_LoginThenReload(t *testing.T) {
	api := newFakeAPI()
	store := &memoryStore{}
	ctx := context.Background()

	session := NewSession(api, store)
	require.NoError(t, session.Login(ctx, "reader@example.com", "secret123"))
	assert.True(t, session.IsAuthenticated())
	assert.Equal(t, "reader@example.com", session.User().Email)
	assert.NotEmpty(t, store.token)
	assert.Equal(t, store.token, api.currentToken())

	// A fresh process picks the session back up from the store
	api.SetToken("")
	restored := NewSession(api, store)
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, session.UserID(), restored.UserID())
}

func TestSession_Register(t *testing.T) {
	api := newFakeAPI()
	store := &memoryStore{}
	session := NewSession(api, store)

	require.NoError(t, session.Register(context.Background(), "newbie", "new@example.com", "secret123"))
	assert.Equal(t, "newbie", session.User().Username)
	assert.NotEmpty(t, store.token)
}

func TestSession_LoadClearsRejectedToken(t *testing.T) {
	api := newFakeAPI()
	store := &memoryStore{token: "expired-token"}
	session := NewSession(api, store)

	require.NoError(t, session.Load(context.Background()))
	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, store.token)
	assert.Empty(t, api.currentToken())
}

func TestSession_LoadKeepsTokenOnTransportError(t *testing.T) {
	api := newFakeAPI()
	api.meErr = errors.New("dial tcp: connection refused")
	store := &memoryStore{token: "maybe-valid"}
	session := NewSession(api, store)

	err := session.Load(context.Background())
	assert.Error(t, err)
	assert.False(t, session.IsAuthenticated())
	assert.Equal(t, "maybe-valid", store.token)
}

func TestSession_LoginFailure(t *testing.T) {
	api := newFakeAPI()
	api.loginErr = &APIError{Status: 401, Code: "INVALID_CREDENTIALS", Message: "Invalid credentials"}
	store := &memoryStore{}
	session := NewSession(api, store)

	err := session.Login(context.Background(), "reader@example.com", "wrong")
	assert.Equal(t, "Invalid credentials", ErrorMessage(err))
	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, store.token)
}

func TestSession_Logout(t *testing.T) {
	api := newFakeAPI()
	store := &memoryStore{}
	session := NewSession(api, store)
	require.NoError(t, session.Login(context.Background(), "reader@example.com", "secret123"))

	require.NoError(t, session.Logout())
	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, store.token)
	assert.Empty(t, api.currentToken())
}

func TestErrorMessage(t *testing.T) {
	assert.Empty(t, ErrorMessage(nil))
	assert.Equal(t, GenericErrorMessage, ErrorMessage(errors.New("EOF")))
	assert.Equal(t, GenericErrorMessage, ErrorMessage(&APIError{Status: 500}))
	assert.Equal(t, "Book not found", ErrorMessage(notFound()))
	assert.Equal(t, "nothing to save", ErrorMessage(ErrNoChanges))
}
