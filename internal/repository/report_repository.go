package repository

import (
	"context"
	"database/sql"
	"time"
)

// ReportRepo serves the read-only denormalized exports consumed by the
// report tooling. The queries join across entities and return plain
// rows; grouping the owner report into its nested shape happens in Go.
type ReportRepo struct{ db *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// InspectorReportRow is one line of the inspectors export.
type InspectorReportRow struct {
	ID         int64  `json:"id"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
	Rank       string `json:"rank"`
	CreatedAt  string `json:"created_at"`
}

// ViolationReportRow is one line of the violations export.
type ViolationReportRow struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Article   string `json:"article"`
	CreatedAt string `json:"created_at"`
}

// OwnerReport aggregates an owner with their vehicles and every
// violation recorded against each vehicle.
type OwnerReport struct {
	Owner       string               `json:"owner"`
	DateOfBirth string               `json:"date_of_birth"`
	Address     string               `json:"address"`
	Vehicles    []OwnerReportVehicle `json:"vehicles"`
}

// OwnerReportVehicle is one vehicle inside an OwnerReport.
type OwnerReportVehicle struct {
	StateNumber string                 `json:"state_number"`
	Model       string                 `json:"model"`
	Color       string                 `json:"color"`
	Violations  []OwnerReportViolation `json:"violations"`
}

// OwnerReportViolation is one recorded offence inside an
// OwnerReportVehicle.
type OwnerReportViolation struct {
	Violation string `json:"violation"`
	Article   string `json:"article"`
	Date      string `json:"date"`
	Inspector string `json:"inspector"`
}

// Inspectors lists all inspectors in export form.
func (r *ReportRepo) Inspectors(ctx context.Context) ([]InspectorReportRow, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, CONCAT(last_name, ' ', first_name, ' ', middle_name), department, `rank`, created_at "+
			"FROM inspector ORDER BY last_name, first_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	report := []InspectorReportRow{}
	for rows.Next() {
		var row InspectorReportRow
		var created time.Time
		if err := rows.Scan(&row.ID, &row.FullName, &row.Department, &row.Rank, &created); err != nil {
			return nil, err
		}
		row.CreatedAt = created.UTC().Format(time.RFC3339)
		report = append(report, row)
	}
	return report, rows.Err()
}

// Violations lists all violations in export form, with the article
// rendered as "number - name".
func (r *ReportRepo) Violations(ctx context.Context) ([]ViolationReportRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT v.id, v.name, t.name, CONCAT(a.number, ' - ', a.name), v.created_at
		 FROM violation v
		 JOIN violation_type t ON t.id = v.violation_type_id
		 JOIN article a ON a.id = v.article_id
		 ORDER BY v.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	report := []ViolationReportRow{}
	for rows.Next() {
		var row ViolationReportRow
		var created time.Time
		if err := rows.Scan(&row.ID, &row.Name, &row.Type, &row.Article, &created); err != nil {
			return nil, err
		}
		row.CreatedAt = created.UTC().Format(time.RFC3339)
		report = append(report, row)
	}
	return report, rows.Err()
}

// Owners builds the nested owners export: one flat LEFT JOIN query over
// owner → vehicle → protocol, grouped in order by owner and vehicle.
func (r *ReportRepo) Owners(ctx context.Context) ([]OwnerReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT o.id, CONCAT(o.last_name, ' ', o.first_name, ' ', o.middle_name),
			o.date_of_birth, o.address,
			v.id, v.state_number, CONCAT(m.name, ' (', b.name, ')'), c.name,
			p.id, p.issue_date, viol.name, CONCAT(a.number, ' - ', a.name),
			CONCAT(i.last_name, ' ', i.first_name)
		 FROM owner o
		 LEFT JOIN vehicle v ON v.owner_id = o.id
		 LEFT JOIN model m ON m.id = v.model_id
		 LEFT JOIN brand b ON b.id = m.brand_id
		 LEFT JOIN color c ON c.id = v.color_id
		 LEFT JOIN protocol p ON p.vehicle_id = v.id
		 LEFT JOIN violation viol ON viol.id = p.violation_id
		 LEFT JOIN article a ON a.id = viol.article_id
		 LEFT JOIN inspector i ON i.id = p.inspector_id
		 ORDER BY o.last_name, o.first_name, o.id, v.id, p.issue_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := []OwnerReport{}
	var curOwner, curVehicle int64 = -1, -1
	for rows.Next() {
		var ownerID int64
		var ownerName, address string
		var dob time.Time
		var vehicleID, protocolID sql.NullInt64
		var plate, vmodel, color sql.NullString
		var issueDate sql.NullTime
		var violName, article, inspector sql.NullString
		if err := rows.Scan(&ownerID, &ownerName, &dob, &address,
			&vehicleID, &plate, &vmodel, &color,
			&protocolID, &issueDate, &violName, &article, &inspector); err != nil {
			return nil, err
		}
		if ownerID != curOwner {
			report = append(report, OwnerReport{
				Owner:       ownerName,
				DateOfBirth: dob.Format(dateLayout),
				Address:     address,
				Vehicles:    []OwnerReportVehicle{},
			})
			curOwner = ownerID
			curVehicle = -1
		}
		if !vehicleID.Valid {
			continue
		}
		cur := &report[len(report)-1]
		if vehicleID.Int64 != curVehicle {
			cur.Vehicles = append(cur.Vehicles, OwnerReportVehicle{
				StateNumber: plate.String,
				Model:       vmodel.String,
				Color:       color.String,
				Violations:  []OwnerReportViolation{},
			})
			curVehicle = vehicleID.Int64
		}
		if !protocolID.Valid {
			continue
		}
		veh := &cur.Vehicles[len(cur.Vehicles)-1]
		veh.Violations = append(veh.Violations, OwnerReportViolation{
			Violation: violName.String,
			Article:   article.String,
			Date:      issueDate.Time.Format(dateLayout),
			Inspector: inspector.String,
		})
	}
	return report, rows.Err()
}
