package repository

import (
	"context"
	"testing"

	"elibrary/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	u := &models.User{Username: "reader", Email: "reader@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	byEmail, err := repo.FindByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := repo.FindByUsername(ctx, "reader")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", byID.Password)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	dup := &models.User{Username: "other", Email: "reader@example.com", Password: "hash"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)
}
