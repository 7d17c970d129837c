package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ekazakov/violation-registry/internal/model"
)

// AccountRepo provides access to the `user_account` table. Accounts are
// read-mostly: the service only ever looks them up by username to
// resolve a role.
type AccountRepo struct{ db *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

// FindByUsername fetches an account by its normalized username.
func (r *AccountRepo) FindByUsername(ctx context.Context, username string) (model.Account, error) {
	username = strings.TrimSpace(username)
	var a model.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, role FROM user_account WHERE username = ? LIMIT 1`,
		username).Scan(&a.ID, &a.Username, &a.Role)
	if err == sql.ErrNoRows {
		return model.Account{}, ErrNotFound
	}
	return a, err
}
