package model

import "time"

// User is a passenger or a crew member. Passengers are bound to a flight
// and seat; staff may carry neither.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FlightID     *string   `json:"flightId,omitempty"`
	SeatNumber   *string   `json:"seatNumber,omitempty"`
	IsStaff      bool      `json:"isStaff"`
	IsActive     bool      `json:"isActive"`
	Orders       []Order   `json:"orders,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatch lists the mutable user columns. Nil fields are left untouched.
type UserPatch struct {
	Name         *string `json:"name,omitempty"`
	Username     *string `json:"username,omitempty"`
	PasswordHash *string `json:"-"`
	FlightID     *string `json:"flightId,omitempty"`
	SeatNumber   *string `json:"seatNumber,omitempty"`
	IsStaff      *bool   `json:"isStaff,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// Summary is the subset of a user exposed by token validation.
func (u User) Summary() map[string]any {
	return map[string]any{
		"id":       u.ID,
		"name":     u.Name,
		"email":    u.Email,
		"username": u.Username,
		"isStaff":  u.IsStaff,
	}
}
