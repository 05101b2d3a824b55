package service

import (
	"context"

	"github.com/iliyamo/skycomfort-server/internal/repository"
)

// Base gives every entity service the same CRUD surface over its
// repository. Entity-specific services embed it and add their rules.
type Base[T any, P any] struct {
	entity string
	repo   repository.CRUD[T, P]
}

func NewBase[T any, P any](entity string, repo repository.CRUD[T, P]) Base[T, P] {
	return Base[T, P]{entity: entity, repo: repo}
}

func (b Base[T, P]) FindAll(ctx context.Context, f repository.Filter) ([]T, error) {
	return b.repo.FindAll(ctx, f)
}

func (b Base[T, P]) FindByID(ctx context.Context, id uint64) (*T, error) {
	v, err := b.repo.FindByID(ctx, id)
	return v, notFound(err, b.entity, id)
}

func (b Base[T, P]) Create(ctx context.Context, v *T) error {
	return b.repo.Create(ctx, v)
}

func (b Base[T, P]) Update(ctx context.Context, id uint64, patch P) (*T, error) {
	v, err := b.repo.Update(ctx, id, patch)
	return v, notFound(err, b.entity, id)
}

// Delete reports false when the row did not exist.
func (b Base[T, P]) Delete(ctx context.Context, id uint64) (bool, error) {
	return b.repo.Delete(ctx, id)
}
