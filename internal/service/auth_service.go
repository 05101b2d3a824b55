package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// AuthConfig holds token lifetimes and signing material.
type AuthConfig struct {
	JWTSecret        string
	AccessTTLMin     int
	RefreshTTLDays   int
	AllowStaffSignup bool
}

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	User         *model.User `json:"user"`
}

// AuthService issues and verifies tokens. Access tokens are HS256 JWTs;
// refresh tokens are opaque, stored hashed and rotated on use.
type AuthService struct {
	cfg   AuthConfig
	users *UserService
	store repository.Store
}

func NewAuthService(cfg AuthConfig, users *UserService, store repository.Store) *AuthService {
	return &AuthService{cfg: cfg, users: users, store: store}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	u, err := s.users.Register(ctx, in, s.cfg.AllowStaffSignup)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, s.store, u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, invalid("Email and password are required")
	}
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, s.store, u)
}

// Refresh exchanges a refresh token for a new pair. The presented token
// is revoked in the same transaction; of two concurrent refreshes with one
// token only the first to revoke it succeeds.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*AuthResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, invalid("Refresh token is required")
	}
	hash := utils.HashRefreshRaw(raw)

	var res *AuthResult
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		userID, err := tx.Tokens().ValidateRefresh(ctx, hash)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		if err != nil {
			return err
		}
		revoked, err := tx.Tokens().RevokeByHash(ctx, hash)
		if err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		if !revoked {
			return ErrInvalidToken
		}
		u, err := activeUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		res, err = s.issue(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Authenticate resolves a raw access token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*model.User, error) {
	claims, err := utils.ParseAccessToken(s.cfg.JWTSecret, raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	id, _ := claims.UserID()
	return activeUser(ctx, s.store, id)
}

// Logout revokes one refresh token. Unknown, expired and already revoked
// tokens are all ErrInvalidToken.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	hash := utils.HashRefreshRaw(strings.TrimSpace(raw))
	if _, err := s.store.Tokens().ValidateRefresh(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	revoked, err := s.store.Tokens().RevokeByHash(ctx, hash)
	if err != nil {
		return err
	}
	if !revoked {
		return ErrInvalidToken
	}
	return nil
}

// LogoutAll revokes every refresh token of a user.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint64) error {
	return s.store.Tokens().RevokeAllForUser(ctx, userID)
}

func activeUser(ctx context.Context, store repository.Store, id uint64) (*model.User, error) {
	u, err := store.Users().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	return u, nil
}

func (s *AuthService) issue(ctx context.Context, store repository.Store, u *model.User) (*AuthResult, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.IsStaff, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := store.Tokens().StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}
	return &AuthResult{Token: access.Token, RefreshToken: refresh.Raw, ExpiresAt: access.Exp, User: u}, nil
}
