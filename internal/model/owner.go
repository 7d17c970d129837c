package model

import "time"

// Owner represents a vehicle owner as stored in the `owner` table.
// Owners are unique by the full (last, first, middle) name triple and
// carry the version and soft-lock columns shared by all editable
// entities.
//
// Fields:
//  ID          – primary key identifier.
//  LastName    – family name.
//  FirstName   – given name.
//  MiddleName  – patronymic.
//  DateOfBirth – birth date in YYYY-MM-DD form.
//  Address     – postal address.
//  Version     – optimistic concurrency counter, starts at 1.
//  LockedBy    – username of the current soft-lock holder (nil when unlocked).
//  LockedAt    – soft-lock acquisition time (nil when unlocked).
type Owner struct {
	ID          int64      `json:"id"`            // owner.id
	LastName    string     `json:"last_name"`     // owner.last_name
	FirstName   string     `json:"first_name"`    // owner.first_name
	MiddleName  string     `json:"middle_name"`   // owner.middle_name
	DateOfBirth string     `json:"date_of_birth"` // owner.date_of_birth (DATE)
	Address     string     `json:"address"`       // owner.address
	Version     int64      `json:"version"`       // owner.version
	LockedBy    *string    `json:"locked_by"`     // owner.locked_by (nullable)
	LockedAt    *time.Time `json:"-"`             // owner.locked_at (nullable)
	CreatedAt   time.Time  `json:"-"`             // owner.created_at
	UpdatedAt   *time.Time `json:"-"`             // owner.updated_at (nullable)
}
