package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
)

var serviceColumns = map[string]bool{"type": true, "category": true, "availability": true}

type serviceRepo struct{ s *Store }

func serviceColumn(sv model.Service) func(string) any {
	return func(col string) any {
		switch col {
		case "type":
			return sv.Type
		case "category":
			return deref(sv.Category)
		case "availability":
			return sv.Availability
		}
		return nil
	}
}

func (r serviceRepo) FindAll(_ context.Context, f repository.Filter) ([]model.Service, error) {
	defer r.s.lock()()
	if err := checkFilter(f, serviceColumns); err != nil {
		return nil, err
	}
	var out []model.Service
	for _, sv := range r.s.st.data.services {
		if matches(f, serviceColumn(sv)) {
			out = append(out, sv)
		}
	}
	sortNewest(out)
	return paginate(out, f), nil
}

func (r serviceRepo) FindByID(_ context.Context, id uint64) (*model.Service, error) {
	defer r.s.lock()()
	sv, ok := r.s.st.data.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sv, nil
}

func (r serviceRepo) Search(_ context.Context, term string) ([]model.Service, error) {
	defer r.s.lock()()
	term = strings.ToLower(term)
	var out []model.Service
	for _, sv := range r.s.st.data.services {
		if strings.Contains(strings.ToLower(sv.Title), term) || strings.Contains(strings.ToLower(sv.Description), term) {
			out = append(out, sv)
		}
	}
	sortNewest(out)
	return out, nil
}

func (r serviceRepo) UpdatedSince(_ context.Context, since time.Time) ([]model.Service, error) {
	defer r.s.lock()()
	var out []model.Service
	for _, sv := range r.s.st.data.services {
		if sv.UpdatedAt.After(since) {
			out = append(out, sv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r serviceRepo) Create(_ context.Context, sv *model.Service) error {
	defer r.s.lock()()
	d := r.s.st.data
	now := r.s.st.now()
	sv.ID = d.next("services")
	sv.CreatedAt, sv.UpdatedAt = now, now
	sv.Metadata = sv.Metadata.Clone()
	d.services[sv.ID] = *sv
	return nil
}

func (r serviceRepo) Update(_ context.Context, id uint64, p model.ServicePatch) (*model.Service, error) {
	defer r.s.lock()()
	d := r.s.st.data
	sv, ok := d.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Title != nil {
		sv.Title = *p.Title
	}
	if p.Description != nil {
		sv.Description = *p.Description
	}
	if p.Price != nil {
		sv.Price = *p.Price
	}
	if p.Type != nil {
		sv.Type = *p.Type
	}
	if p.Category != nil {
		v := *p.Category
		sv.Category = &v
	}
	if p.ImageURL != nil {
		v := *p.ImageURL
		sv.ImageURL = &v
	}
	if p.Availability != nil {
		sv.Availability = *p.Availability
	}
	if p.Metadata != nil {
		sv.Metadata = p.Metadata.Clone()
	}
	sv.UpdatedAt = r.s.st.now()
	d.services[id] = sv
	return &sv, nil
}

// Delete refuses while any order item references the service.
func (r serviceRepo) Delete(_ context.Context, id uint64) (bool, error) {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.services[id]; !ok {
		return false, nil
	}
	for _, it := range d.items {
		if it.ServiceID == id {
			return false, repository.ErrConflict
		}
	}
	delete(d.services, id)
	return true, nil
}

func sortNewest(in []model.Service) {
	sort.Slice(in, func(i, j int) bool {
		return newestFirst(in[i].CreatedAt, in[i].ID, in[j].CreatedAt, in[j].ID)
	})
}
