package model

import "time"

// Inspector represents a traffic inspector as stored in the `inspector`
// table. Inspectors are unique by the full (last, first, middle) name
// triple.
//
// Fields:
//  ID         – primary key identifier.
//  LastName   – family name.
//  FirstName  – given name.
//  MiddleName – patronymic.
//  Department – department the inspector serves in.
//  Rank       – service rank.
//  Version    – optimistic concurrency counter, starts at 1.
//  LockedBy   – username of the current soft-lock holder (nil when unlocked).
//  LockedAt   – soft-lock acquisition time (nil when unlocked).
type Inspector struct {
	ID         int64      `json:"id"`          // inspector.id
	LastName   string     `json:"last_name"`   // inspector.last_name
	FirstName  string     `json:"first_name"`  // inspector.first_name
	MiddleName string     `json:"middle_name"` // inspector.middle_name
	Department string     `json:"department"`  // inspector.department
	Rank       string     `json:"rank"`        // inspector.rank
	Version    int64      `json:"version"`     // inspector.version
	LockedBy   *string    `json:"locked_by"`   // inspector.locked_by (nullable)
	LockedAt   *time.Time `json:"-"`           // inspector.locked_at (nullable)
	CreatedAt  time.Time  `json:"-"`           // inspector.created_at
	UpdatedAt  *time.Time `json:"-"`           // inspector.updated_at (nullable)
}
