package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ekazakov/violation-registry/internal/lock"
	"github.com/ekazakov/violation-registry/internal/model"
)

// VehicleRepo provides data access to the `vehicle` table. Reads join
// the model, brand, color and owner tables to fill the display fields
// clients render.
type VehicleRepo struct {
	lockable
}

func NewVehicleRepo(db *sql.DB, ttl time.Duration) *VehicleRepo {
	return &VehicleRepo{lockable{db: db, table: TableVehicle, ttl: ttl}}
}

const vehicleSelect = `SELECT v.id, v.state_number, v.model_id, v.color_id, v.owner_id,
		CONCAT(m.name, ' (', b.name, ')'), c.name,
		CONCAT(o.last_name, ' ', o.first_name),
		v.version, v.locked_by, v.locked_at, v.created_at, v.updated_at
	FROM vehicle v
	JOIN model m ON m.id = v.model_id
	JOIN brand b ON b.id = m.brand_id
	JOIN color c ON c.id = v.color_id
	JOIN owner o ON o.id = v.owner_id`

func scanVehicle(row interface{ Scan(...any) error }) (model.Vehicle, error) {
	var v model.Vehicle
	var by sql.NullString
	var at, updated sql.NullTime
	err := row.Scan(&v.ID, &v.StateNumber, &v.ModelID, &v.ColorID, &v.OwnerID,
		&v.Model, &v.Color, &v.Owner,
		&v.Version, &by, &at, &v.CreatedAt, &updated)
	if err != nil {
		return model.Vehicle{}, err
	}
	st := asLockState(by, at)
	v.LockedBy, v.LockedAt = st.LockedBy, st.LockedAt
	if updated.Valid {
		t := updated.Time
		v.UpdatedAt = &t
	}
	return v, nil
}

// List returns all vehicles with their denormalized references.
func (r *VehicleRepo) List(ctx context.Context) ([]model.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, vehicleSelect+` ORDER BY v.state_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	vehicles := []model.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Get fetches a vehicle by id, clearing an expired lock first.
func (r *VehicleRepo) Get(ctx context.Context, id int64) (model.Vehicle, error) {
	if err := r.clearExpired(ctx, id); err != nil {
		return model.Vehicle{}, err
	}
	v, err := scanVehicle(r.db.QueryRowContext(ctx, vehicleSelect+` WHERE v.id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Vehicle{}, ErrNotFound
	}
	return v, err
}

// FindByStateNumber resolves a vehicle by its license plate.
func (r *VehicleRepo) FindByStateNumber(ctx context.Context, plate string) (model.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRowContext(ctx,
		vehicleSelect+` WHERE v.state_number = ? LIMIT 1`, plate))
	if err == sql.ErrNoRows {
		return model.Vehicle{}, ErrNotFound
	}
	return v, err
}

// Create inserts a new vehicle with version 1 and no lock. The caller
// must have resolved ModelID, ColorID and OwnerID already. A duplicate
// plate yields ErrAlreadyExists.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicle (state_number, model_id, color_id, owner_id) VALUES (?, ?, ?, ?)`,
		v.StateNumber, v.ModelID, v.ColorID, v.OwnerID)
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

// Update rewires the vehicle's references under the shared
// version-and-lock compare-and-set. The plate itself is immutable.
func (r *VehicleRepo) Update(ctx context.Context, v model.Vehicle, user string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicle SET model_id = ?, color_id = ?, owner_id = ?,
			version = version + 1, locked_by = NULL, locked_at = NULL,
			updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND version = ? AND `+lockPred,
		v.ModelID, v.ColorID, v.OwnerID,
		v.ID, v.Version, user, r.ttlSeconds())
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return v.Version + 1, nil
	}
	return 0, r.classifyWrite(ctx, v.ID, user, v.Version)
}

// Delete removes a vehicle. The delete is guarded twice inside one
// transaction: it fails with ErrInUse while any protocol references the
// vehicle, and with lock.ErrLockConflict while another user holds a
// live soft lock.
func (r *VehicleRepo) Delete(ctx context.Context, id int64, user string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var refs int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM protocol WHERE vehicle_id = ?`, id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrInUse
	}

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM vehicle WHERE id = ? AND %s`, lockPred),
		id, user, r.ttlSeconds())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		st, err := r.state(ctx, tx, id)
		if err != nil {
			return err
		}
		if st.Live(time.Now().UTC(), r.ttl) && !st.HeldBy(user) {
			return lock.ErrLockConflict
		}
		return ErrNotFound
	}
	return tx.Commit()
}
