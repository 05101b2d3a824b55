package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/skycomfort-server/internal/model"
)

const userColumns = "id, name, email, username, password_hash, flight_id, seat_number, is_staff, is_active, created_at, updated_at"

var userFilterColumns = map[string]bool{
	"email": true, "flight_id": true, "seat_number": true, "is_staff": true, "is_active": true,
}

// UserRepo reads and writes the users table.
type UserRepo struct{ q DBTX }

func NewUserRepo(q DBTX) *UserRepo { return &UserRepo{q: q} }

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.PasswordHash,
		&u.FlightID, &u.SeatNumber, &u.IsStaff, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindAll(ctx context.Context, f Filter) ([]model.User, error) {
	where, args, err := whereClause(f, userFilterColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.QueryContext(ctx, "SELECT "+userColumns+" FROM users"+where+" ORDER BY id"+limitClause(f), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
	return u, translate(err)
}

// FindByEmail matches the normalized (trimmed, lower-cased) address.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email))
	return u, translate(err)
}

func (r *UserRepo) FindByFlightAndSeat(ctx context.Context, flightID, seatNumber string) (*model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE flight_id = ? AND seat_number = ? ORDER BY id LIMIT 1",
		flightID, seatNumber))
	return u, translate(err)
}

// Create inserts u and refreshes it from the stored row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO users (name, email, username, password_hash, flight_id, seat_number, is_staff, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.Username, u.PasswordHash, u.FlightID, u.SeatNumber, u.IsStaff, u.IsActive)
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
	*u = *stored
	return nil
}

func (r *UserRepo) Update(ctx context.Context, id uint64, p model.UserPatch) (*model.User, error) {
	var set setList
	if p.Name != nil {
		set.add("name", *p.Name)
	}
	if p.Username != nil {
		set.add("username", *p.Username)
	}
	if p.PasswordHash != nil {
		set.add("password_hash", *p.PasswordHash)
	}
	if p.FlightID != nil {
		set.add("flight_id", *p.FlightID)
	}
	if p.SeatNumber != nil {
		set.add("seat_number", *p.SeatNumber)
	}
	if p.IsStaff != nil {
		set.add("is_staff", *p.IsStaff)
	}
	if p.IsActive != nil {
		set.add("is_active", *p.IsActive)
	}
	if !set.empty() {
		if _, err := r.q.ExecContext(ctx, "UPDATE users SET "+set.sql()+" WHERE id = ?", append(set.args, id)...); err != nil {
			return nil, translate(err)
		}
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
