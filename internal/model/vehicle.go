package model

import "time"

// Vehicle represents a row in the `vehicle` table. Vehicles are unique
// by state number and reference a model, a color and an owner; all
// three references are required. Listings and single reads denormalize
// the references into the Model/Color/Owner display fields.
//
// Fields:
//  ID          – primary key identifier.
//  StateNumber – unique license plate.
//  ModelID     – FK into model.id.
//  ColorID     – FK into color.id.
//  OwnerID     – FK into owner.id.
//  Model       – display string "name (brand)", filled on reads.
//  Color       – color name, filled on reads.
//  Owner       – owner display name, filled on reads.
//  Version     – optimistic concurrency counter, starts at 1.
//  LockedBy    – username of the current soft-lock holder (nil when unlocked).
//  LockedAt    – soft-lock acquisition time (nil when unlocked).
type Vehicle struct {
	ID          int64      `json:"id"`           // vehicle.id
	StateNumber string     `json:"state_number"` // vehicle.state_number
	ModelID     int64      `json:"-"`            // vehicle.model_id
	ColorID     int64      `json:"-"`            // vehicle.color_id
	OwnerID     int64      `json:"-"`            // vehicle.owner_id
	Model       string     `json:"model"`        // joined model.name (brand.name)
	Color       string     `json:"color"`        // joined color.name
	Owner       string     `json:"owner"`        // joined owner last+first name
	Version     int64      `json:"version"`      // vehicle.version
	LockedBy    *string    `json:"locked_by"`    // vehicle.locked_by (nullable)
	LockedAt    *time.Time `json:"-"`            // vehicle.locked_at (nullable)
	CreatedAt   time.Time  `json:"-"`            // vehicle.created_at
	UpdatedAt   *time.Time `json:"-"`            // vehicle.updated_at (nullable)
}
