package role

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekazakov/violation-registry/internal/model"
	"github.com/ekazakov/violation-registry/internal/repository"
)

type accountMap map[string]model.Account

func (m accountMap) FindByUsername(_ context.Context, username string) (model.Account, error) {
	if acc, ok := m[username]; ok {
		return acc, nil
	}
	return model.Account{}, repository.ErrNotFound
}

func TestAuthorize(t *testing.T) {
	store := accountMap{
		"root":  {ID: 1, Username: "root", Role: "admin"},
		"alice": {ID: 2, Username: "alice", Role: "inspector"},
	}
	ctx := context.Background()

	require.NoError(t, Authorize(ctx, store, "root", Admin))
	require.NoError(t, Authorize(ctx, store, "root", Admin, Inspector))
	require.NoError(t, Authorize(ctx, store, "alice", Admin, Inspector))

	assert.ErrorIs(t, Authorize(ctx, store, "alice", Admin), ErrForbidden)
	assert.ErrorIs(t, Authorize(ctx, store, "ghost", Admin, Inspector), ErrUserNotFound)
}

type failingAccounts struct{ err error }

func (f failingAccounts) FindByUsername(context.Context, string) (model.Account, error) {
	return model.Account{}, f.err
}

func TestAuthorizeStoreFailure(t *testing.T) {
	dbErr := errors.New("connection refused")
	err := Authorize(context.Background(), failingAccounts{err: dbErr}, "root", Admin)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("admin"))
	assert.True(t, Valid("inspector"))
	assert.False(t, Valid("ADMIN"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("owner"))
}
