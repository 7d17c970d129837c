package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ekazakov/violation-registry/internal/model"
)

// InspectorRepo provides data access to the `inspector` table.
type InspectorRepo struct {
	lockable
}

func NewInspectorRepo(db *sql.DB, ttl time.Duration) *InspectorRepo {
	return &InspectorRepo{lockable{db: db, table: TableInspector, ttl: ttl}}
}

// `rank` is a reserved word in MySQL 8, hence the quoting.
const inspectorColumns = "id, last_name, first_name, middle_name, department, `rank`, " +
	"version, locked_by, locked_at, created_at, updated_at"

func scanInspector(row interface{ Scan(...any) error }) (model.Inspector, error) {
	var i model.Inspector
	var by sql.NullString
	var at, updated sql.NullTime
	err := row.Scan(&i.ID, &i.LastName, &i.FirstName, &i.MiddleName, &i.Department, &i.Rank,
		&i.Version, &by, &at, &i.CreatedAt, &updated)
	if err != nil {
		return model.Inspector{}, err
	}
	st := asLockState(by, at)
	i.LockedBy, i.LockedAt = st.LockedBy, st.LockedAt
	if updated.Valid {
		t := updated.Time
		i.UpdatedAt = &t
	}
	return i, nil
}

// List returns all inspectors ordered by last name.
func (r *InspectorRepo) List(ctx context.Context) ([]model.Inspector, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inspectorColumns+` FROM inspector ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	inspectors := []model.Inspector{}
	for rows.Next() {
		i, err := scanInspector(rows)
		if err != nil {
			return nil, err
		}
		inspectors = append(inspectors, i)
	}
	return inspectors, rows.Err()
}

// Get fetches an inspector by id, clearing an expired lock first.
func (r *InspectorRepo) Get(ctx context.Context, id int64) (model.Inspector, error) {
	if err := r.clearExpired(ctx, id); err != nil {
		return model.Inspector{}, err
	}
	i, err := scanInspector(r.db.QueryRowContext(ctx,
		`SELECT `+inspectorColumns+` FROM inspector WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Inspector{}, ErrNotFound
	}
	return i, err
}

// FindByName resolves an inspector by the structured (last, first) name
// reference used in protocol writes.
func (r *InspectorRepo) FindByName(ctx context.Context, last, first string) (model.Inspector, error) {
	i, err := scanInspector(r.db.QueryRowContext(ctx,
		`SELECT `+inspectorColumns+` FROM inspector WHERE last_name = ? AND first_name = ? LIMIT 1`,
		last, first))
	if err == sql.ErrNoRows {
		return model.Inspector{}, ErrNotFound
	}
	return i, err
}

// Create inserts a new inspector with version 1 and no lock.
func (r *InspectorRepo) Create(ctx context.Context, i *model.Inspector) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO inspector (last_name, first_name, middle_name, department, `rank`) "+
			"VALUES (?, ?, ?, ?, ?)",
		i.LastName, i.FirstName, i.MiddleName, i.Department, i.Rank)
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
	i.ID = id
	i.Version = 1
	return nil
}

// Update applies new field values under the shared version-and-lock
// compare-and-set.
func (r *InspectorRepo) Update(ctx context.Context, i model.Inspector, user string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE inspector SET last_name = ?, first_name = ?, middle_name = ?, department = ?, "+
			"`rank` = ?, version = version + 1, locked_by = NULL, locked_at = NULL, "+
			"updated_at = UTC_TIMESTAMP() "+
			"WHERE id = ? AND version = ? AND "+lockPred,
		i.LastName, i.FirstName, i.MiddleName, i.Department, i.Rank,
		i.ID, i.Version, user, r.ttlSeconds())
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return i.Version + 1, nil
	}
	return 0, r.classifyWrite(ctx, i.ID, user, i.Version)
}
