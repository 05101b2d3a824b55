// Package seed loads the demo staff account and starter catalog.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

//go:embed catalog.yaml
var catalogYAML []byte

type staffEntry struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type serviceEntry struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Type        string `yaml:"type"`
	Category    string `yaml:"category"`
	ImageURL    string `yaml:"image_url"`
}

// Catalog is the decoded seed file.
type Catalog struct {
	Staff    []staffEntry   `yaml:"staff"`
	Services []serviceEntry `yaml:"services"`
}

// Report counts what a Seed run created.
type Report struct {
	Users    int
	Services int
}

// Load decodes the embedded catalog.
func Load() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	return &c, nil
}

// Seed inserts staff accounts that do not exist yet and, when the catalog
// is empty, every service. Running it twice is harmless.
func Seed(ctx context.Context, store repository.Store, bcryptCost int, log *zap.Logger) (Report, error) {
	var rep Report
	c, err := Load()
	if err != nil {
		return rep, err
	}

	err = store.WithTx(ctx, func(tx repository.Store) error {
		for _, s := range c.Staff {
			_, err := tx.Users().FindByEmail(ctx, s.Email)
			if err == nil {
				log.Info("staff user exists, skipping", zap.String("email", s.Email))
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			hash, err := utils.HashPassword(s.Password, bcryptCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			u := &model.User{Name: s.Name, Email: s.Email, Username: s.Username, PasswordHash: hash, IsStaff: true, IsActive: true}
			if err := tx.Users().Create(ctx, u); err != nil {
				return fmt.Errorf("create %s: %w", s.Email, err)
			}
			rep.Users++
		}

		existing, err := tx.Services().FindAll(ctx, repository.Filter{Limit: 1})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			log.Info("services already exist, skipping")
			return nil
		}
		for _, e := range c.Services {
			sv, err := e.toService()
			if err != nil {
				return err
			}
			if err := tx.Services().Create(ctx, sv); err != nil {
				return fmt.Errorf("create service %q: %w", e.Title, err)
			}
			rep.Services++
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	log.Info("seed complete", zap.Int("users", rep.Users), zap.Int("services", rep.Services))
	return rep, nil
}

func (e serviceEntry) toService() (*model.Service, error) {
	price, err := decimal.NewFromString(e.Price)
	if err != nil {
		return nil, fmt.Errorf("service %q: bad price %q: %w", e.Title, e.Price, err)
	}
	t := model.ServiceType(e.Type)
	if !t.Valid() {
		return nil, fmt.Errorf("service %q: unknown type %q", e.Title, e.Type)
	}
	sv := &model.Service{
		Title:        e.Title,
		Description:  e.Description,
		Price:        price,
		Type:         t,
		Availability: true,
	}
	if e.Category != "" {
		cat := e.Category
		sv.Category = &cat
	}
	if e.ImageURL != "" {
		img := e.ImageURL
		sv.ImageURL = &img
	}
	return sv, nil
}
