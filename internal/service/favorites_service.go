package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/observability/metrics"
)

// FavoritesService handles user bookmarks. Property favorites must point at
// an existing listing; other kinds are opaque references.
type FavoritesService struct {
	favoriteRepo domain.FavoriteRepository
	propertyRepo domain.PropertyRepository
	logger       *slog.Logger
}

// NewFavoritesService creates a new favorites service
func NewFavoritesService(
	favoriteRepo domain.FavoriteRepository,
	propertyRepo domain.PropertyRepository,
	logger *slog.Logger,
) *FavoritesService {
	if logger == nil {
		logger = slog.Default()
	}

	return &FavoritesService{
		favoriteRepo: favoriteRepo,
		propertyRepo: propertyRepo,
		logger:       logger,
	}
}

// Toggle adds or removes a favorite and returns whether the target is
// favored after the call
func (s *FavoritesService) Toggle(ctx context.Context, userID string, kind domain.FavoriteKind, targetID string) (bool, error) {
	if !domain.ValidFavoriteKind(kind) {
		return false, fmt.Errorf("unknown favorite kind %q: %w", kind, domain.ErrInvalid)
	}
	if targetID == "" {
		return false, fmt.Errorf("target is required: %w", domain.ErrInvalid)
	}

	if kind == domain.FavoriteProperty {
		if _, err := s.propertyRepo.GetByID(ctx, targetID); err != nil {
			return false, err
		}
	}

	favored, err := s.favoriteRepo.Toggle(ctx, userID, kind, targetID)
	if err != nil {
		return false, err
	}

	metrics.ObserveFavoriteToggle(string(kind), favored)
	s.logger.Debug("favorite toggled",
		slog.String("user_id", userID),
		slog.String("kind", string(kind)),
		slog.Bool("favored", favored),
	)
	return favored, nil
}

// Remove deletes a favorite; removing an absent favorite succeeds
func (s *FavoritesService) Remove(ctx context.Context, userID string, kind domain.FavoriteKind, targetID string) error {
	if !domain.ValidFavoriteKind(kind) {
		return fmt.Errorf("unknown favorite kind %q: %w", kind, domain.ErrInvalid)
	}
	return s.favoriteRepo.Remove(ctx, userID, kind, targetID)
}

// List retrieves the user's favorites
func (s *FavoritesService) List(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	return s.favoriteRepo.ListByUser(ctx, userID)
}

// Count returns how many users favor a target
func (s *FavoritesService) Count(ctx context.Context, kind domain.FavoriteKind, targetID string) (int64, error) {
	if !domain.ValidFavoriteKind(kind) {
		return 0, fmt.Errorf("unknown favorite kind %q: %w", kind, domain.ErrInvalid)
	}
	return s.favoriteRepo.Count(ctx, kind, targetID)
}
