package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	FlightID   *string `json:"flightId,omitempty"`
	SeatNumber *string `json:"seatNumber,omitempty"`
	IsStaff    bool    `json:"isStaff,omitempty"`
}

// UserService manages accounts.
type UserService struct {
	Base[model.User, model.UserPatch]
	store      repository.Store
	bcryptCost int
}

func NewUserService(store repository.Store, bcryptCost int) *UserService {
	return &UserService{
		Base:       NewBase[model.User, model.UserPatch]("User", store.Users()),
		store:      store,
		bcryptCost: bcryptCost,
	}
}

// Register creates an active account. isStaff is only honoured when
// allowStaff is set.
func (s *UserService) Register(ctx context.Context, in RegisterInput, allowStaff bool) (*model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	if in.Name == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, invalid("Name, email, username, and password are required")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, invalid("A valid email address is required")
	}

	if _, err := s.store.Users().FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		FlightID:     blankToNil(in.FlightID),
		SeatNumber:   blankToNil(in.SeatNumber),
		IsStaff:      in.IsStaff && allowStaff,
		IsActive:     true,
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.store.Users().FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	return u, nil
}

func (s *UserService) FindByFlightAndSeat(ctx context.Context, flightID, seatNumber string) (*model.User, error) {
	u, err := s.store.Users().FindByFlightAndSeat(ctx, flightID, seatNumber)
	return u, notFound(err, "User", 0)
}

// FindWithOrders loads a user with their orders, newest first.
func (s *UserService) FindWithOrders(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.Orders().FindAll(ctx, repository.Eq("user_id", id))
	if err != nil {
		return nil, err
	}
	u.Orders = orders
	return u, nil
}

// SetActive enables or disables an account. Disabling also revokes the
// user's refresh tokens.
func (s *UserService) SetActive(ctx context.Context, id uint64, active bool) (*model.User, error) {
	var out *model.User
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		u, err := tx.Users().Update(ctx, id, model.UserPatch{IsActive: &active})
		if err != nil {
			return notFound(err, "User", id)
		}
		if !active {
			if err := tx.Tokens().RevokeAllForUser(ctx, id); err != nil {
				return err
			}
		}
		out = u
		return nil
	})
	return out, err
}

func blankToNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
