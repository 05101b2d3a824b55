package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices leave the API as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ServiceType is the catalog category of an item.
type ServiceType string

const (
	ServiceMeal          ServiceType = "meal"
	ServiceBeverage      ServiceType = "beverage"
	ServiceEntertainment ServiceType = "entertainment"
	ServiceComfort       ServiceType = "comfort"
)

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceMeal, ServiceBeverage, ServiceEntertainment, ServiceComfort:
		return true
	}
	return false
}

// Service is an orderable catalog item.
type Service struct {
	ID           uint64          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Type         ServiceType     `json:"type"`
	Category     *string         `json:"category,omitempty"`
	ImageURL     *string         `json:"imageUrl,omitempty"`
	Availability bool            `json:"availability"`
	Metadata     JSONMap         `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ServicePatch lists the mutable catalog columns.
type ServicePatch struct {
	Title        *string          `json:"title,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Type         *ServiceType     `json:"type,omitempty"`
	Category     *string          `json:"category,omitempty"`
	ImageURL     *string          `json:"imageUrl,omitempty"`
	Availability *bool            `json:"availability,omitempty"`
	Metadata     *JSONMap         `json:"metadata,omitempty"`
}
