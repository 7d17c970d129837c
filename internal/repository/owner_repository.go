package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ekazakov/violation-registry/internal/model"
)

const dateLayout = "2006-01-02"

// OwnerRepo provides data access to the `owner` table.
type OwnerRepo struct {
	lockable
}

// NewOwnerRepo returns an OwnerRepo bound to the provided database.
// ttl is the soft-lock expiry applied by every lock-aware statement.
func NewOwnerRepo(db *sql.DB, ttl time.Duration) *OwnerRepo {
	return &OwnerRepo{lockable{db: db, table: TableOwner, ttl: ttl}}
}

const ownerColumns = `id, last_name, first_name, middle_name, date_of_birth, address,
	version, locked_by, locked_at, created_at, updated_at`

func scanOwner(row interface{ Scan(...any) error }) (model.Owner, error) {
	var o model.Owner
	var dob time.Time
	var by sql.NullString
	var at, updated sql.NullTime
	err := row.Scan(&o.ID, &o.LastName, &o.FirstName, &o.MiddleName, &dob, &o.Address,
		&o.Version, &by, &at, &o.CreatedAt, &updated)
	if err != nil {
		return model.Owner{}, err
	}
	o.DateOfBirth = dob.Format(dateLayout)
	st := asLockState(by, at)
	o.LockedBy, o.LockedAt = st.LockedBy, st.LockedAt
	if updated.Valid {
		t := updated.Time
		o.UpdatedAt = &t
	}
	return o, nil
}

// List returns all owners ordered by last name.
func (r *OwnerRepo) List(ctx context.Context) ([]model.Owner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ownerColumns+` FROM owner ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	owners := []model.Owner{}
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

// Get fetches an owner by id. An expired soft lock is cleared before the
// row is read so that the caller observes the healed state.
func (r *OwnerRepo) Get(ctx context.Context, id int64) (model.Owner, error) {
	if err := r.clearExpired(ctx, id); err != nil {
		return model.Owner{}, err
	}
	o, err := scanOwner(r.db.QueryRowContext(ctx,
		`SELECT `+ownerColumns+` FROM owner WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Owner{}, ErrNotFound
	}
	return o, err
}

// FindByName resolves an owner by the structured (last, first) name
// reference used in vehicle and protocol writes.
func (r *OwnerRepo) FindByName(ctx context.Context, last, first string) (model.Owner, error) {
	o, err := scanOwner(r.db.QueryRowContext(ctx,
		`SELECT `+ownerColumns+` FROM owner WHERE last_name = ? AND first_name = ? LIMIT 1`,
		last, first))
	if err == sql.ErrNoRows {
		return model.Owner{}, ErrNotFound
	}
	return o, err
}

// Create inserts a new owner with version 1 and no lock. A duplicate
// (last, first, middle) triple yields ErrAlreadyExists.
func (r *OwnerRepo) Create(ctx context.Context, o *model.Owner) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO owner (last_name, first_name, middle_name, date_of_birth, address)
		 VALUES (?, ?, ?, ?, ?)`,
		o.LastName, o.FirstName, o.MiddleName, o.DateOfBirth, o.Address)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrAlreadyExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = id
	o.Version = 1
	return nil
}

// Update applies new field values if the presented version still
// matches and no live foreign lock is held. The version increment, the
// field write and the lock release commit as one statement; a zero-row
// result is classified into the sentinel taxonomy.
func (r *OwnerRepo) Update(ctx context.Context, o model.Owner, user string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE owner SET last_name = ?, first_name = ?, middle_name = ?, date_of_birth = ?,
			address = ?, version = version + 1, locked_by = NULL, locked_at = NULL,
			updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND version = ? AND `+lockPred,
		o.LastName, o.FirstName, o.MiddleName, o.DateOfBirth, o.Address,
		o.ID, o.Version, user, r.ttlSeconds())
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return o.Version + 1, nil
	}
	return 0, r.classifyWrite(ctx, o.ID, user, o.Version)
}
