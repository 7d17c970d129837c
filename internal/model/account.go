package model

// Account represents a row in the `user_account` table. Accounts exist
// only to map a username to a role; the service performs no password
// authentication, so no credential fields are stored.
//
// Fields:
//  ID       – primary key identifier.
//  Username – unique login name.
//  Role     – role name ("admin" or "inspector").
type Account struct {
	ID       int64  `json:"id"`       // user_account.id
	Username string `json:"username"` // user_account.username
	Role     string `json:"role"`     // user_account.role
}
