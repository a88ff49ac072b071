package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/featureflags"
	"github.com/estately/estately/pkg/cache"
)

const portfolioCacheTTL = 30 * time.Second

// PortfolioService computes investment summaries from holdings and current
// share prices. Summaries are derived on read and cached briefly; nothing is
// stored back.
type PortfolioService struct {
	holdingRepo  domain.HoldingRepository
	propertyRepo domain.PropertyRepository
	cache        *cache.Cache
	logger       *slog.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(
	holdingRepo domain.HoldingRepository,
	propertyRepo domain.PropertyRepository,
	c *cache.Cache,
	logger *slog.Logger,
) *PortfolioService {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = cache.New()
	}

	return &PortfolioService{
		holdingRepo:  holdingRepo,
		propertyRepo: propertyRepo,
		cache:        c,
		logger:       logger,
	}
}

// AddHolding records a share purchase
func (s *PortfolioService) AddHolding(ctx context.Context, userID string, h *domain.Holding) (*domain.Holding, error) {
	if !featureflags.Enabled(featureflags.Portfolio) {
		return nil, fmt.Errorf("portfolio module is disabled: %w", domain.ErrInvalid)
	}
	if h.PropertyID == "" {
		return nil, fmt.Errorf("property is required: %w", domain.ErrInvalid)
	}
	if h.Shares <= 0 {
		return nil, fmt.Errorf("shares must be positive: %w", domain.ErrInvalid)
	}
	if h.PurchasePrice < 0 {
		return nil, fmt.Errorf("purchase price cannot be negative: %w", domain.ErrInvalid)
	}

	property, err := s.propertyRepo.GetByID(ctx, h.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.PropertyKind != "commercial" {
		return nil, fmt.Errorf("only commercial properties carry shares: %w", domain.ErrInvalid)
	}

	h.UserID = userID
	if err := s.holdingRepo.Create(ctx, h); err != nil {
		return nil, err
	}

	s.cache.Delete(portfolioCacheKey(userID))
	return h, nil
}

// Summary computes the user's portfolio. Current values come from the
// properties' live share prices, fetched in parallel. A holding whose
// property has been deleted is valued at its purchase price.
func (s *PortfolioService) Summary(ctx context.Context, userID string) (*domain.PortfolioSummary, error) {
	if !featureflags.Enabled(featureflags.Portfolio) {
		return nil, fmt.Errorf("portfolio module is disabled: %w", domain.ErrInvalid)
	}

	key := portfolioCacheKey(userID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*domain.PortfolioSummary), nil
	}

	holdings, err := s.holdingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &domain.PortfolioSummary{Holdings: len(holdings)}
	if len(holdings) == 0 {
		s.cache.Set(key, summary, portfolioCacheTTL)
		return summary, nil
	}

	var (
		mu      sync.Mutex
		g, gctx = errgroup.WithContext(ctx)
	)
	g.SetLimit(8)

	for _, h := range holdings {
		holding := h
		g.Go(func() error {
			invested := float64(holding.Shares) * holding.PurchasePrice
			current := invested

			property, err := s.propertyRepo.GetByID(gctx, holding.PropertyID)
			switch {
			case err == nil:
				current = float64(holding.Shares) * property.SharePrice
			case errors.Is(err, domain.ErrNotFound):
				// Keep the purchase valuation.
			default:
				return err
			}

			mu.Lock()
			summary.Invested += invested
			summary.CurrentValue += current
			summary.Dividends += holding.Dividends
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.GainLoss = summary.CurrentValue - summary.Invested
	s.cache.Set(key, summary, portfolioCacheTTL)
	return summary, nil
}

// Holdings lists the user's raw holdings
func (s *PortfolioService) Holdings(ctx context.Context, userID string) ([]*domain.Holding, error) {
	return s.holdingRepo.ListByUser(ctx, userID)
}

func portfolioCacheKey(userID string) string {
	return "portfolio:" + userID
}
