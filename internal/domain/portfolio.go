package domain

import (
	"context"
	"time"
)

// Holding is a user's recorded share ownership in a commercial property.
type Holding struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	PropertyID    string    `json:"propertyId"`
	Shares        int64     `json:"shares"`
	PurchasePrice float64   `json:"purchasePrice"` // per share at purchase
	Dividends     float64   `json:"dividends"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PortfolioSummary is derived from holdings and current share prices. It is
// recomputed on read, never stored.
type PortfolioSummary struct {
	Invested     float64 `json:"invested"`
	CurrentValue float64 `json:"currentValue"`
	GainLoss     float64 `json:"gainLoss"`
	Dividends    float64 `json:"dividends"`
	Holdings     int     `json:"holdings"`
}

// HoldingRepository defines data access for holdings
type HoldingRepository interface {
	Create(ctx context.Context, h *Holding) error
	ListByUser(ctx context.Context, userID string) ([]*Holding, error)
}
