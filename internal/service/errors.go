// Package service holds the business rules of the ordering server. Every
// service works against repository.Store so it can run on MySQL or on the
// in-memory store.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/skycomfort-server/internal/repository"
)

var (
	ErrEmailTaken           = errors.New("a user with this email already exists")
	ErrDuplicateTransaction = errors.New("a payment with this transaction ID already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrAccountDisabled      = errors.New("account is disabled")
)

// ValidationError is a client input problem. Its message is safe to show.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError names the missing entity. It matches repository.ErrNotFound
// under errors.Is.
type NotFoundError struct {
	Entity string
	ID     uint64
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == repository.ErrNotFound }

// notFound rewrites a bare repository.ErrNotFound into a NotFoundError.
func notFound(err error, entity string, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return &NotFoundError{Entity: entity, ID: id}
		}
	}
	return err
}
