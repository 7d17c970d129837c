// Package lock implements the advisory soft-lock state machine and the
// optimistic version check shared by every editable entity. A soft lock
// expresses "a human is currently editing this record" across several
// request/response round trips; it is cooperative and time-boxed, not a
// database lock. The functions here are pure decision logic: the
// repository layer enforces the same policy atomically with conditional
// UPDATE statements, and this package classifies outcomes and drives the
// in-memory stores used in tests.
package lock

import (
	"errors"
	"time"
)

// ErrLockConflict is returned when a record is soft-locked by another
// user. Handlers translate it into an HTTP 409 response.
var ErrLockConflict = errors.New("locked by another user")

// ErrNotLockOwner is returned when a user attempts to release a lock
// held by someone else. Handlers translate it into an HTTP 403 response.
var ErrNotLockOwner = errors.New("not the lock owner")

// ErrVersionConflict is returned when an update presents a version that
// no longer matches the stored one. Handlers translate it into an HTTP
// 409 response; clients are expected to re-fetch and resubmit.
var ErrVersionConflict = errors.New("record was changed by another user")

// State is the soft-lock portion of an entity row. An absent LockedBy
// means the record is unlocked; LockedAt is set and cleared together
// with it.
type State struct {
	LockedBy *string
	LockedAt *time.Time
}

// Held reports whether any user currently holds the lock, without
// considering expiry.
func (s State) Held() bool { return s.LockedBy != nil && *s.LockedBy != "" }

// Expired reports whether the lock was acquired longer than ttl ago.
// An unlocked state is never expired. A held lock with no timestamp is
// treated as expired so that malformed rows self-heal.
func (s State) Expired(now time.Time, ttl time.Duration) bool {
	if !s.Held() {
		return false
	}
	if s.LockedAt == nil {
		return true
	}
	return now.Sub(*s.LockedAt) > ttl
}

// Live reports whether the lock is held and has not yet expired.
func (s State) Live(now time.Time, ttl time.Duration) bool {
	return s.Held() && !s.Expired(now, ttl)
}

// HeldBy reports whether user currently holds the lock.
func (s State) HeldBy(user string) bool {
	return s.Held() && *s.LockedBy == user
}

// CanLock decides a lock(user) transition. Acquisition succeeds when the
// record is unlocked, already locked by the same user (idempotent
// re-lock) or the existing lock has expired; a live lock held by another
// user yields ErrLockConflict.
func CanLock(s State, user string, now time.Time, ttl time.Duration) error {
	if s.Live(now, ttl) && !s.HeldBy(user) {
		return ErrLockConflict
	}
	return nil
}

// CanUnlock decides an unlock(user) transition. Unlocking an unlocked
// record is a no-op, the holder may always release, and an expired lock
// may be cleared by anyone; a live lock held by another user yields
// ErrNotLockOwner.
func CanUnlock(s State, user string, now time.Time, ttl time.Duration) error {
	if s.Live(now, ttl) && !s.HeldBy(user) {
		return ErrNotLockOwner
	}
	return nil
}

// CanEdit decides whether user may update or delete the record. An
// update does not require a prior lock: it proceeds when the record is
// unlocked, locked by the requester or the lock has expired, and is
// rejected only while a live lock is held by someone else.
func CanEdit(s State, user string, now time.Time, ttl time.Duration) error {
	if s.Live(now, ttl) && !s.HeldBy(user) {
		return ErrLockConflict
	}
	return nil
}

// CheckVersion compares the version a client last observed against the
// stored one. Any mismatch means the record changed since the client
// read it and the update must be rejected.
func CheckVersion(current, presented int64) error {
	if current != presented {
		return ErrVersionConflict
	}
	return nil
}
