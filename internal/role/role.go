// Package role implements the role gate applied before every mutating
// operation. Roles form a closed two-value set; each handler names the
// set of roles permitted for its operation instead of comparing role
// strings ad hoc.
package role

import (
	"context"
	"errors"

	"github.com/ekazakov/violation-registry/internal/model"
	"github.com/ekazakov/violation-registry/internal/repository"
)

// Role is the closed set of account roles.
type Role string

const (
	Admin     Role = "admin"
	Inspector Role = "inspector"
)

// ErrForbidden is returned when the account exists but its role is not
// in the allowed set. Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("insufficient role")

// ErrUserNotFound is returned when no account matches the username.
// Handlers translate it into HTTP 404.
var ErrUserNotFound = errors.New("user not found")

// AccountStore is the account lookup needed by the gate. The MySQL
// account repository satisfies it.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (model.Account, error)
}

// Valid reports whether s names a known role.
func Valid(s string) bool {
	switch Role(s) {
	case Admin, Inspector:
		return true
	}
	return false
}

// Authorize looks up username and verifies its role is one of allowed.
// It returns ErrUserNotFound for an unknown username and ErrForbidden
// when the role is not permitted; other store failures pass through
// untouched.
func Authorize(ctx context.Context, store AccountStore, username string, allowed ...Role) error {
	acc, err := store.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	for _, r := range allowed {
		if Role(acc.Role) == r {
			return nil
		}
	}
	return ErrForbidden
}
