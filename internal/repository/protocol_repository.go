package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ekazakov/violation-registry/internal/model"
)

// ProtocolRepo provides data access to the `protocol` table. Reads join
// the vehicle, owner, inspector and violation tables to fill the
// display fields.
type ProtocolRepo struct {
	lockable
}

func NewProtocolRepo(db *sql.DB, ttl time.Duration) *ProtocolRepo {
	return &ProtocolRepo{lockable{db: db, table: TableProtocol, ttl: ttl}}
}

const protocolSelect = `SELECT p.id, p.number, p.issue_date, p.issue_time,
		p.vehicle_id, p.owner_id, p.inspector_id, p.violation_id,
		v.state_number,
		CONCAT(o.last_name, ' ', o.first_name),
		CONCAT(i.last_name, ' ', i.first_name),
		viol.name,
		p.version, p.locked_by, p.locked_at, p.created_at, p.updated_at
	FROM protocol p
	JOIN vehicle v ON v.id = p.vehicle_id
	JOIN owner o ON o.id = p.owner_id
	JOIN inspector i ON i.id = p.inspector_id
	JOIN violation viol ON viol.id = p.violation_id`

func scanProtocol(row interface{ Scan(...any) error }) (model.Protocol, error) {
	var p model.Protocol
	var issueDate time.Time
	var by sql.NullString
	var at, updated sql.NullTime
	err := row.Scan(&p.ID, &p.Number, &issueDate, &p.IssueTime,
		&p.VehicleID, &p.OwnerID, &p.InspectorID, &p.ViolationID,
		&p.Vehicle, &p.Owner, &p.Inspector, &p.Violation,
		&p.Version, &by, &at, &p.CreatedAt, &updated)
	if err != nil {
		return model.Protocol{}, err
	}
	p.IssueDate = issueDate.Format(dateLayout)
	st := asLockState(by, at)
	p.LockedBy, p.LockedAt = st.LockedBy, st.LockedAt
	if updated.Valid {
		t := updated.Time
		p.UpdatedAt = &t
	}
	return p, nil
}

// List returns all protocols with their denormalized references.
func (r *ProtocolRepo) List(ctx context.Context) ([]model.Protocol, error) {
	rows, err := r.db.QueryContext(ctx, protocolSelect+` ORDER BY p.number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	protocols := []model.Protocol{}
	for rows.Next() {
		p, err := scanProtocol(rows)
		if err != nil {
			return nil, err
		}
		protocols = append(protocols, p)
	}
	return protocols, rows.Err()
}

// Get fetches a protocol by id, clearing an expired lock first.
func (r *ProtocolRepo) Get(ctx context.Context, id int64) (model.Protocol, error) {
	if err := r.clearExpired(ctx, id); err != nil {
		return model.Protocol{}, err
	}
	p, err := scanProtocol(r.db.QueryRowContext(ctx, protocolSelect+` WHERE p.id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Protocol{}, ErrNotFound
	}
	return p, err
}

// Create inserts a new protocol with version 1 and no lock. The caller
// must have resolved all four references. A duplicate number yields
// ErrAlreadyExists.
func (r *ProtocolRepo) Create(ctx context.Context, p *model.Protocol) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO protocol (number, issue_date, issue_time, vehicle_id, owner_id, inspector_id, violation_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Number, p.IssueDate, p.IssueTime, p.VehicleID, p.OwnerID, p.InspectorID, p.ViolationID)
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
	p.ID = id
	p.Version = 1
	return nil
}

// Update rewrites the protocol's fields and references under the shared
// version-and-lock compare-and-set. The number is immutable.
func (r *ProtocolRepo) Update(ctx context.Context, p model.Protocol, user string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE protocol SET issue_date = ?, issue_time = ?, vehicle_id = ?, owner_id = ?,
			inspector_id = ?, violation_id = ?,
			version = version + 1, locked_by = NULL, locked_at = NULL,
			updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND version = ? AND `+lockPred,
		p.IssueDate, p.IssueTime, p.VehicleID, p.OwnerID, p.InspectorID, p.ViolationID,
		p.ID, p.Version, user, r.ttlSeconds())
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return p.Version + 1, nil
	}
	return 0, r.classifyWrite(ctx, p.ID, user, p.Version)
}
