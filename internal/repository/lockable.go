package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ekazakov/violation-registry/internal/lock"
)

// Table names the lockable tables. Values are compile-time constants so
// the SQL built from them never carries request input.
type Table string

const (
	TableOwner         Table = "owner"
	TableInspector     Table = "inspector"
	TableVehicle       Table = "vehicle"
	TableViolation     Table = "violation"
	TableProtocol      Table = "protocol"
	TableModel         Table = "model"
	TableColor         Table = "color"
	TableArticle       Table = "article"
	TableViolationType Table = "violation_type"
)

// lockPred is the shared WHERE fragment that treats a row as writable:
// unlocked, locked by the caller, or carrying an expired lock. Args are
// (user, ttlSeconds). Keeping the predicate inside the UPDATE makes each
// lock transition and each versioned write a single atomic
// compare-and-set on the row.
const lockPred = `(locked_by IS NULL OR locked_by = ? OR locked_at IS NULL
	OR locked_at <= DATE_SUB(UTC_TIMESTAMP(), INTERVAL ? SECOND))`

// lockable bundles the soft-lock operations shared by every lockable
// table. Entity repositories embed it; reference tables without a
// dedicated repository are served through LockRepo.
type lockable struct {
	db    *sql.DB
	table Table
	ttl   time.Duration
}

func (l lockable) ttlSeconds() int64 {
	return int64(l.ttl / time.Second)
}

// state reads the current lock columns of a row. Returns ErrNotFound
// when the row does not exist.
func (l lockable) state(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, id int64) (lock.State, error) {
	var by sql.NullString
	var at sql.NullTime
	err := q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT locked_by, locked_at FROM %s WHERE id = ?`, l.table),
		id).Scan(&by, &at)
	if err == sql.ErrNoRows {
		return lock.State{}, ErrNotFound
	}
	if err != nil {
		return lock.State{}, err
	}
	return asLockState(by, at), nil
}

// AcquireLock performs the lock(user) transition as one conditional
// UPDATE. The predicate admits unlocked rows, re-locks by the holder and
// takeovers of expired locks; a live foreign lock leaves the row
// untouched and yields lock.ErrLockConflict.
func (l lockable) AcquireLock(ctx context.Context, id int64, user string) error {
	res, err := l.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET locked_by = ?, locked_at = UTC_TIMESTAMP() WHERE id = ? AND %s`,
			l.table, lockPred),
		user, id, user, l.ttlSeconds())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	// Zero rows: the row is missing, held by someone else, or the values
	// were already ours within the same second. Re-read to tell apart.
	st, err := l.state(ctx, l.db, id)
	if err != nil {
		return err
	}
	if st.HeldBy(user) {
		return nil
	}
	return lock.ErrLockConflict
}

// ReleaseLock performs the unlock(user) transition. Unlocking an
// unlocked row is a no-op; clearing an expired lock is allowed for
// anyone; a live lock held by another user yields lock.ErrNotLockOwner.
func (l lockable) ReleaseLock(ctx context.Context, id int64, user string) error {
	res, err := l.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET locked_by = NULL, locked_at = NULL WHERE id = ? AND %s`,
			l.table, lockPred),
		id, user, l.ttlSeconds())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	st, err := l.state(ctx, l.db, id)
	if err != nil {
		return err
	}
	if !st.Held() {
		return nil
	}
	return lock.ErrNotLockOwner
}

// clearExpired drops a stale lock before a read inspects the row, so
// abandoned client sessions self-heal on the next access.
func (l lockable) clearExpired(ctx context.Context, id int64) error {
	_, err := l.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET locked_by = NULL, locked_at = NULL
			WHERE id = ? AND locked_at IS NOT NULL
			AND locked_at <= DATE_SUB(UTC_TIMESTAMP(), INTERVAL ? SECOND)`, l.table),
		id, l.ttlSeconds())
	return err
}

// classifyWrite explains a versioned UPDATE that matched zero rows. The
// follow-up read is only for error labeling; the failed compare-and-set
// already guaranteed no mutation happened.
func (l lockable) classifyWrite(ctx context.Context, id int64, user string, presented int64) error {
	var version int64
	var by sql.NullString
	var at sql.NullTime
	err := l.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT version, locked_by, locked_at FROM %s WHERE id = ?`, l.table),
		id).Scan(&version, &by, &at)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	st := asLockState(by, at)
	if st.Live(time.Now().UTC(), l.ttl) && !st.HeldBy(user) {
		return lock.ErrLockConflict
	}
	if err := lock.CheckVersion(version, presented); err != nil {
		return err
	}
	// The row matched neither predicate at UPDATE time but looks fine
	// now: a concurrent writer raced us. Treat as a stale version.
	return lock.ErrVersionConflict
}

// LockRepo exposes the lock operations for reference tables that have
// no dedicated repository (model, color, article, violation_type). The
// generic lock endpoint dispatches to instances of this type.
type LockRepo struct{ lockable }

// NewLockRepo returns a LockRepo bound to one lockable table.
func NewLockRepo(db *sql.DB, table Table, ttl time.Duration) *LockRepo {
	return &LockRepo{lockable{db: db, table: table, ttl: ttl}}
}

// asLockState converts nullable lock columns into a lock.State.
func asLockState(by sql.NullString, at sql.NullTime) lock.State {
	var st lock.State
	if by.Valid && by.String != "" {
		s := by.String
		st.LockedBy = &s
	}
	if at.Valid {
		t := at.Time
		st.LockedAt = &t
	}
	return st
}
