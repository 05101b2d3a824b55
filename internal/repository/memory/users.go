package memory

import (
	"context"
	"strings"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

var userColumns = map[string]bool{
	"email": true, "flight_id": true, "seat_number": true, "is_staff": true, "is_active": true,
}

type userRepo struct{ s *Store }

func userColumn(u model.User) func(string) any {
	return func(col string) any {
		switch col {
		case "email":
			return u.Email
		case "flight_id":
			return deref(u.FlightID)
		case "seat_number":
			return deref(u.SeatNumber)
		case "is_staff":
			return u.IsStaff
		case "is_active":
			return u.IsActive
		}
		return nil
	}
}

func (r userRepo) FindAll(_ context.Context, f repository.Filter) ([]model.User, error) {
	defer r.s.lock()()
	if err := checkFilter(f, userColumns); err != nil {
		return nil, err
	}
	var out []model.User
	for _, u := range r.s.st.data.users {
		if matches(f, userColumn(u)) {
			out = append(out, u)
		}
	}
	sortByID(out, func(u model.User) uint64 { return u.ID })
	return paginate(out, f), nil
}

func (r userRepo) FindByID(_ context.Context, id uint64) (*model.User, error) {
	defer r.s.lock()()
	u, ok := r.s.st.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	defer r.s.lock()()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.st.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) FindByFlightAndSeat(_ context.Context, flightID, seatNumber string) (*model.User, error) {
	defer r.s.lock()()
	var found *model.User
	for _, u := range r.s.st.data.users {
		if deref(u.FlightID) == flightID && deref(u.SeatNumber) == seatNumber {
			if found == nil || u.ID < found.ID {
				u := u
				found = &u
			}
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r userRepo) Create(_ context.Context, u *model.User) error {
	defer r.s.lock()()
	d := r.s.st.data
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, other := range d.users {
		if other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	now := r.s.st.now()
	u.ID = d.next("users")
	u.CreatedAt, u.UpdatedAt = now, now
	u.Orders = nil
	d.users[u.ID] = *u
	return nil
}

func (r userRepo) Update(_ context.Context, id uint64, p model.UserPatch) (*model.User, error) {
	defer r.s.lock()()
	d := r.s.st.data
	u, ok := d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.FlightID != nil {
		v := *p.FlightID
		u.FlightID = &v
	}
	if p.SeatNumber != nil {
		v := *p.SeatNumber
		u.SeatNumber = &v
	}
	if p.IsStaff != nil {
		u.IsStaff = *p.IsStaff
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	u.UpdatedAt = r.s.st.now()
	d.users[id] = u
	return &u, nil
}

// Delete cascades to the user's orders and tokens like the SQL schema.
func (r userRepo) Delete(_ context.Context, id uint64) (bool, error) {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.users[id]; !ok {
		return false, nil
	}
	delete(d.users, id)
	for oid, o := range d.orders {
		if o.UserID == id {
			deleteOrder(d, oid)
		}
	}
	for h, t := range d.tokens {
		if t.userID == id {
			delete(d.tokens, h)
		}
	}
	return true, nil
}
