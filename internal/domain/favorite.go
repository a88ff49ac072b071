package domain

import (
	"context"
	"time"
)

// FavoriteKind identifies what kind of entity a favorite points at.
type FavoriteKind string

const (
	FavoriteProperty FavoriteKind = "property"
	FavoriteAgent    FavoriteKind = "agent"
	FavoriteBuilder  FavoriteKind = "builder"
	FavoriteProject  FavoriteKind = "project"
)

// ValidFavoriteKind reports whether k is a known favorite target kind.
func ValidFavoriteKind(k FavoriteKind) bool {
	switch k {
	case FavoriteProperty, FavoriteAgent, FavoriteBuilder, FavoriteProject:
		return true
	default:
		return false
	}
}

// Favorite is a user-curated bookmark.
type Favorite struct {
	UserID     string       `json:"userId"`
	TargetKind FavoriteKind `json:"targetKind"`
	TargetID   string       `json:"targetId"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// FavoriteRepository defines data access for favorites. Membership and the
// advisory counter move in the same transaction.
type FavoriteRepository interface {
	// Toggle adds the favorite if absent and removes it if present. It returns
	// whether the target is favored after the call.
	Toggle(ctx context.Context, userID string, kind FavoriteKind, targetID string) (bool, error)
	// Remove deletes the favorite if present; removing an absent favorite is
	// not an error.
	Remove(ctx context.Context, userID string, kind FavoriteKind, targetID string) error
	ListByUser(ctx context.Context, userID string) ([]*Favorite, error)
	Count(ctx context.Context, kind FavoriteKind, targetID string) (int64, error)
}
