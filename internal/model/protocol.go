package model

import "time"

// Protocol represents a citation as stored in the `protocol` table. A
// protocol links a vehicle, its owner, the issuing inspector and the
// recorded violation; all four references are required. The protocol
// number is unique across all protocols.
//
// Fields:
//  ID          – primary key identifier.
//  Number      – unique citation number.
//  IssueDate   – issue date in YYYY-MM-DD form.
//  IssueTime   – issue time in HH:MM form.
//  VehicleID   – FK into vehicle.id.
//  OwnerID     – FK into owner.id.
//  InspectorID – FK into inspector.id.
//  ViolationID – FK into violation.id.
//  Vehicle     – vehicle state number, filled on reads.
//  Owner       – owner display name, filled on reads.
//  Inspector   – inspector display name, filled on reads.
//  Violation   – violation name, filled on reads.
//  Version     – optimistic concurrency counter, starts at 1.
//  LockedBy    – username of the current soft-lock holder (nil when unlocked).
//  LockedAt    – soft-lock acquisition time (nil when unlocked).
type Protocol struct {
	ID          int64      `json:"id"`         // protocol.id
	Number      string     `json:"number"`     // protocol.number
	IssueDate   string     `json:"issue_date"` // protocol.issue_date (DATE)
	IssueTime   string     `json:"issue_time"` // protocol.issue_time (TIME)
	VehicleID   int64      `json:"-"`          // protocol.vehicle_id
	OwnerID     int64      `json:"-"`          // protocol.owner_id
	InspectorID int64      `json:"-"`          // protocol.inspector_id
	ViolationID int64      `json:"-"`          // protocol.violation_id
	Vehicle     string     `json:"vehicle"`    // joined vehicle.state_number
	Owner       string     `json:"owner"`      // joined owner last+first name
	Inspector   string     `json:"inspector"`  // joined inspector last+first name
	Violation   string     `json:"violation"`  // joined violation.name
	Version     int64      `json:"version"`    // protocol.version
	LockedBy    *string    `json:"locked_by"`  // protocol.locked_by (nullable)
	LockedAt    *time.Time `json:"-"`          // protocol.locked_at (nullable)
	CreatedAt   time.Time  `json:"-"`          // protocol.created_at
	UpdatedAt   *time.Time `json:"-"`          // protocol.updated_at (nullable)
}
