package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ekazakov/violation-registry/internal/model"
)

// ReferenceRepo serves the reference tables backing natural-key
// resolution: brands, models, colors, violation types and articles.
// Types and articles support create-if-absent because the client offers
// free-text entry for them when recording a violation.
type ReferenceRepo struct{ db *sql.DB }

func NewReferenceRepo(db *sql.DB) *ReferenceRepo { return &ReferenceRepo{db: db} }

// ListModels returns all car models with their brand names.
func (r *ReferenceRepo) ListModels(ctx context.Context) ([]model.CarModel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.name, m.brand_id, b.name
		 FROM model m JOIN brand b ON b.id = m.brand_id
		 ORDER BY b.name, m.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	models := []model.CarModel{}
	for rows.Next() {
		var m model.CarModel
		if err := rows.Scan(&m.ID, &m.Name, &m.BrandID, &m.Brand); err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

// ListColors returns all colors ordered by name.
func (r *ReferenceRepo) ListColors(ctx context.Context) ([]model.Color, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM color ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	colors := []model.Color{}
	for rows.Next() {
		var c model.Color
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

// ListTypes returns all violation types ordered by name.
func (r *ReferenceRepo) ListTypes(ctx context.Context) ([]model.ViolationType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM violation_type ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := []model.ViolationType{}
	for rows.Next() {
		var t model.ViolationType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// ListArticles returns all traffic-code articles ordered by number.
func (r *ReferenceRepo) ListArticles(ctx context.Context) ([]model.Article, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, number, name FROM article ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	articles := []model.Article{}
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Number, &a.Name); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// FindModel resolves a model by the (name, brand) natural key.
func (r *ReferenceRepo) FindModel(ctx context.Context, name, brand string) (model.CarModel, error) {
	var m model.CarModel
	err := r.db.QueryRowContext(ctx,
		`SELECT m.id, m.name, m.brand_id, b.name
		 FROM model m JOIN brand b ON b.id = m.brand_id
		 WHERE m.name = ? AND b.name = ? LIMIT 1`,
		name, brand).Scan(&m.ID, &m.Name, &m.BrandID, &m.Brand)
	if err == sql.ErrNoRows {
		return model.CarModel{}, ErrNotFound
	}
	return m, err
}

// FindColor resolves a color by name.
func (r *ReferenceRepo) FindColor(ctx context.Context, name string) (model.Color, error) {
	var c model.Color
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM color WHERE name = ? LIMIT 1`, name).Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return model.Color{}, ErrNotFound
	}
	return c, err
}

// EnsureType resolves a violation type by name, creating the row when
// it does not exist yet. A duplicate-key race with a concurrent insert
// falls back to re-reading the winner.
func (r *ReferenceRepo) EnsureType(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM violation_type WHERE name = ? LIMIT 1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO violation_type (name) VALUES (?)`, name)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			err = r.db.QueryRowContext(ctx,
				`SELECT id FROM violation_type WHERE name = ? LIMIT 1`, name).Scan(&id)
			return id, err
		}
		return 0, err
	}
	return res.LastInsertId()
}

// EnsureArticle resolves an article by number, creating the row with
// the provided name when absent.
func (r *ReferenceRepo) EnsureArticle(ctx context.Context, number, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM article WHERE number = ? LIMIT 1`, number).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO article (number, name) VALUES (?, ?)`, number, name)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			err = r.db.QueryRowContext(ctx,
				`SELECT id FROM article WHERE number = ? LIMIT 1`, number).Scan(&id)
			return id, err
		}
		return 0, err
	}
	return res.LastInsertId()
}
