package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ekazakov/violation-registry/internal/model"
)

// ViolationRepo provides data access to the `violation` table. Reads
// join the violation_type and article tables.
type ViolationRepo struct {
	lockable
}

func NewViolationRepo(db *sql.DB, ttl time.Duration) *ViolationRepo {
	return &ViolationRepo{lockable{db: db, table: TableViolation, ttl: ttl}}
}

const violationSelect = `SELECT v.id, v.name, v.violation_type_id, v.article_id,
		t.name, a.number, a.name,
		v.version, v.locked_by, v.locked_at, v.created_at, v.updated_at
	FROM violation v
	JOIN violation_type t ON t.id = v.violation_type_id
	JOIN article a ON a.id = v.article_id`

func scanViolation(row interface{ Scan(...any) error }) (model.Violation, error) {
	var v model.Violation
	var by sql.NullString
	var at, updated sql.NullTime
	err := row.Scan(&v.ID, &v.Name, &v.ViolationTypeID, &v.ArticleID,
		&v.Type, &v.ArticleNumber, &v.ArticleName,
		&v.Version, &by, &at, &v.CreatedAt, &updated)
	if err != nil {
		return model.Violation{}, err
	}
	st := asLockState(by, at)
	v.LockedBy, v.LockedAt = st.LockedBy, st.LockedAt
	if updated.Valid {
		t := updated.Time
		v.UpdatedAt = &t
	}
	return v, nil
}

// List returns all violations, optionally filtered by type name.
func (r *ViolationRepo) List(ctx context.Context, typeName string) ([]model.Violation, error) {
	q := violationSelect
	args := []any{}
	if typeName != "" {
		q += ` WHERE t.name = ?`
		args = append(args, typeName)
	}
	q += ` ORDER BY v.name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	violations := []model.Violation{}
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

// Get fetches a violation by id, clearing an expired lock first.
func (r *ViolationRepo) Get(ctx context.Context, id int64) (model.Violation, error) {
	if err := r.clearExpired(ctx, id); err != nil {
		return model.Violation{}, err
	}
	v, err := scanViolation(r.db.QueryRowContext(ctx, violationSelect+` WHERE v.id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Violation{}, ErrNotFound
	}
	return v, err
}

// FindByName resolves a violation by its unique name.
func (r *ViolationRepo) FindByName(ctx context.Context, name string) (model.Violation, error) {
	v, err := scanViolation(r.db.QueryRowContext(ctx,
		violationSelect+` WHERE v.name = ? LIMIT 1`, name))
	if err == sql.ErrNoRows {
		return model.Violation{}, ErrNotFound
	}
	return v, err
}

// Create inserts a new violation with version 1 and no lock. The caller
// must have resolved (or created) the type and article rows already.
func (r *ViolationRepo) Create(ctx context.Context, v *model.Violation) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO violation (name, violation_type_id, article_id) VALUES (?, ?, ?)`,
		v.Name, v.ViolationTypeID, v.ArticleID)
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
	v.ID = id
	v.Version = 1
	return nil
}

// Update applies new field values under the shared version-and-lock
// compare-and-set.
func (r *ViolationRepo) Update(ctx context.Context, v model.Violation, user string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE violation SET name = ?, violation_type_id = ?, article_id = ?,
			version = version + 1, locked_by = NULL, locked_at = NULL,
			updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND version = ? AND `+lockPred,
		v.Name, v.ViolationTypeID, v.ArticleID,
		v.ID, v.Version, user, r.ttlSeconds())
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return v.Version + 1, nil
	}
	return 0, r.classifyWrite(ctx, v.ID, user, v.Version)
}
