package service

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

// CatalogService manages the orderable services.
type CatalogService struct {
	Base[model.Service, model.ServicePatch]
	repo repository.ServiceRepository
}

func NewCatalogService(store repository.Store) *CatalogService {
	repo := store.Services()
	return &CatalogService{Base: NewBase[model.Service, model.ServicePatch]("Service", repo), repo: repo}
}

func (s *CatalogService) FindByType(ctx context.Context, t model.ServiceType) ([]model.Service, error) {
	if !t.Valid() {
		return nil, invalid("Invalid service type: %s", t)
	}
	return s.repo.FindAll(ctx, repository.Eq("type", t))
}

func (s *CatalogService) FindByCategory(ctx context.Context, category string) ([]model.Service, error) {
	return s.repo.FindAll(ctx, repository.Eq("category", category))
}

func (s *CatalogService) FindByAvailability(ctx context.Context, available bool) ([]model.Service, error) {
	return s.repo.FindAll(ctx, repository.Eq("availability", available))
}

// Search matches term against title and description.
func (s *CatalogService) Search(ctx context.Context, term string) ([]model.Service, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.repo.FindAll(ctx, repository.Filter{})
	}
	return s.repo.Search(ctx, term)
}

// UpdatedSince returns services changed after since, or the whole
// catalog when since is nil.
func (s *CatalogService) UpdatedSince(ctx context.Context, since *time.Time) ([]model.Service, error) {
	if since == nil {
		return s.repo.FindAll(ctx, repository.Filter{})
	}
	return s.repo.UpdatedSince(ctx, *since)
}

func (s *CatalogService) SetAvailability(ctx context.Context, id uint64, available bool) (*model.Service, error) {
	return s.Update(ctx, id, model.ServicePatch{Availability: &available})
}

// CreateService validates and stores a new catalog item.
func (s *CatalogService) CreateService(ctx context.Context, sv *model.Service) error {
	sv.Title = strings.TrimSpace(sv.Title)
	if sv.Title == "" || sv.Type == "" {
		return invalid("Title, price, and type are required")
	}
	if !sv.Type.Valid() {
		return invalid("Invalid service type: %s", sv.Type)
	}
	if sv.Price.IsNegative() {
		return invalid("Price must not be negative")
	}
	return s.Create(ctx, sv)
}

// UpdateService validates a patch before applying it.
func (s *CatalogService) UpdateService(ctx context.Context, id uint64, p model.ServicePatch) (*model.Service, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, invalid("Title must not be empty")
	}
	if p.Type != nil && !p.Type.Valid() {
		return nil, invalid("Invalid service type: %s", *p.Type)
	}
	if p.Price != nil && p.Price.IsNegative() {
		return nil, invalid("Price must not be negative")
	}
	return s.Update(ctx, id, p)
}
