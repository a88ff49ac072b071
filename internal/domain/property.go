package domain

import (
	"context"
	"time"
)

// Property represents a listing owned by one landlord. Ownership is immutable
// once the row exists.
type Property struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	PropertyKind  string    `json:"propertyKind"` // residential | commercial
	RentMonthly   int64     `json:"rentMonthly"`
	AreaSqm       float64   `json:"areaSqm"`
	Bedrooms      int       `json:"bedrooms"`
	Available     bool      `json:"available"`
	FavoriteCount int64     `json:"favoriteCount"`
	SharePrice    float64   `json:"sharePrice"`
	TotalShares   int64     `json:"totalShares"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PropertyFilters narrows property listings
type PropertyFilters struct {
	City        string
	MinRent     *int64
	MaxRent     *int64
	MinBedrooms *int
	Available   *bool
	Limit       int
	Offset      int
}

// PropertyUpdate carries the mutable fields of a property. Nil means "leave
// unchanged". OwnerID is deliberately absent.
type PropertyUpdate struct {
	Title       *string
	Description *string
	Address     *string
	City        *string
	RentMonthly *int64
	AreaSqm     *float64
	Bedrooms    *int
	Available   *bool
	SharePrice  *float64
}

// PropertyRepository defines data access for properties
type PropertyRepository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, filters PropertyFilters) ([]*Property, error)
	Update(ctx context.Context, id string, update PropertyUpdate) (*Property, error)
	Delete(ctx context.Context, id string) error
}
