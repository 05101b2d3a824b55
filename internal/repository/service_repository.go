package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/skycomfort-server/internal/model"
)

const serviceColumns = "id, title, description, price, type, category, image_url, availability, metadata, created_at, updated_at"

var serviceFilterColumns = map[string]bool{"type": true, "category": true, "availability": true}

// ServiceRepo reads and writes the services (catalog) table.
type ServiceRepo struct{ q DBTX }

func NewServiceRepo(q DBTX) *ServiceRepo { return &ServiceRepo{q: q} }

func scanService(row rowScanner) (*model.Service, error) {
	var s model.Service
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Price, &s.Type, &s.Category,
		&s.ImageURL, &s.Availability, &s.Metadata, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepo) list(ctx context.Context, query string, args ...any) ([]model.Service, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *ServiceRepo) FindAll(ctx context.Context, f Filter) ([]model.Service, error) {
	where, args, err := whereClause(f, serviceFilterColumns)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, "SELECT "+serviceColumns+" FROM services"+where+" ORDER BY created_at DESC, id DESC"+limitClause(f), args...)
}

func (r *ServiceRepo) FindByID(ctx context.Context, id uint64) (*model.Service, error) {
	s, err := scanService(r.q.QueryRowContext(ctx, "SELECT "+serviceColumns+" FROM services WHERE id = ? LIMIT 1", id))
	return s, translate(err)
}

// Search matches term against title and description, case-insensitively
// under the default collation.
func (r *ServiceRepo) Search(ctx context.Context, term string) ([]model.Service, error) {
	like := "%" + escapeLike(term) + "%"
	return r.list(ctx,
		"SELECT "+serviceColumns+" FROM services WHERE title LIKE ? OR description LIKE ? ORDER BY created_at DESC, id DESC",
		like, like)
}

func (r *ServiceRepo) UpdatedSince(ctx context.Context, since time.Time) ([]model.Service, error) {
	return r.list(ctx,
		"SELECT "+serviceColumns+" FROM services WHERE updated_at > ? ORDER BY updated_at, id",
		since.UTC())
}

func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO services (title, description, price, type, category, image_url, availability, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Title, s.Description, s.Price, s.Type, s.Category, s.ImageURL, s.Availability, s.Metadata)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.FindByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*s = *stored
	return nil
}

func (r *ServiceRepo) Update(ctx context.Context, id uint64, p model.ServicePatch) (*model.Service, error) {
	var set setList
	if p.Title != nil {
		set.add("title", *p.Title)
	}
	if p.Description != nil {
		set.add("description", *p.Description)
	}
	if p.Price != nil {
		set.add("price", *p.Price)
	}
	if p.Type != nil {
		set.add("type", *p.Type)
	}
	if p.Category != nil {
		set.add("category", *p.Category)
	}
	if p.ImageURL != nil {
		set.add("image_url", *p.ImageURL)
	}
	if p.Availability != nil {
		set.add("availability", *p.Availability)
	}
	if p.Metadata != nil {
		set.add("metadata", *p.Metadata)
	}
	if !set.empty() {
		if _, err := r.q.ExecContext(ctx, "UPDATE services SET "+set.sql()+" WHERE id = ?", append(set.args, id)...); err != nil {
			return nil, translate(err)
		}
	}
	return r.FindByID(ctx, id)
}

// Delete fails with ErrConflict while any order item references the row.
func (r *ServiceRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM services WHERE id = ?", id)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
