package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/featureflags"
	"github.com/estately/estately/internal/search"
	"github.com/estately/estately/internal/security"
)

// PropertyService handles listing lifecycle and keeps the search index in
// step with the database. Index writes are best-effort and never fail the
// originating request.
type PropertyService struct {
	propertyRepo domain.PropertyRepository
	authz        *security.AuthorizationService
	searchClient *search.Client
	logger       *slog.Logger
}

// NewPropertyService creates a new property service
func NewPropertyService(
	propertyRepo domain.PropertyRepository,
	authz *security.AuthorizationService,
	searchClient *search.Client,
	logger *slog.Logger,
) *PropertyService {
	if logger == nil {
		logger = slog.Default()
	}

	return &PropertyService{
		propertyRepo: propertyRepo,
		authz:        authz,
		searchClient: searchClient,
		logger:       logger,
	}
}

// Create validates and stores a new listing
func (s *PropertyService) Create(ctx context.Context, actor *domain.User, p *domain.Property) (*domain.Property, error) {
	if err := s.authz.ValidatePermission(actor.Role, security.PermCreateProperty); err != nil {
		return nil, err
	}
	if p.Title == "" || p.Address == "" || p.City == "" {
		return nil, fmt.Errorf("title, address, and city are required: %w", domain.ErrInvalid)
	}
	if p.RentMonthly < 0 {
		return nil, fmt.Errorf("rent cannot be negative: %w", domain.ErrInvalid)
	}
	if p.PropertyKind == "" {
		p.PropertyKind = "residential"
	}

	p.OwnerID = actor.ID
	p.Available = true
	if err := s.propertyRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.indexAsync(p)
	s.logger.Info("property created",
		slog.String("property_id", p.ID),
		slog.String("owner_id", p.OwnerID),
	)
	return p, nil
}

// Get retrieves one listing
func (s *PropertyService) Get(ctx context.Context, id string) (*domain.Property, error) {
	return s.propertyRepo.GetByID(ctx, id)
}

// List retrieves listings matching the filters
func (s *PropertyService) List(ctx context.Context, filters domain.PropertyFilters) ([]*domain.Property, error) {
	return s.propertyRepo.List(ctx, filters)
}

// Update applies changes to a listing the actor owns
func (s *PropertyService) Update(ctx context.Context, actor *domain.User, id string, update domain.PropertyUpdate) (*domain.Property, error) {
	if err := s.authz.ValidatePermission(actor.Role, security.PermUpdateProperty); err != nil {
		return nil, err
	}

	existing, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateOwnership(actor.Role, actor.ID, existing.OwnerID); err != nil {
		return nil, err
	}

	updated, err := s.propertyRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.indexAsync(updated)
	return updated, nil
}

// Delete removes a listing the actor owns
func (s *PropertyService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := s.authz.ValidatePermission(actor.Role, security.PermDeleteProperty); err != nil {
		return err
	}

	existing, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateOwnership(actor.Role, actor.ID, existing.OwnerID); err != nil {
		return err
	}

	if err := s.propertyRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.searchClient != nil && featureflags.Enabled(featureflags.SearchIndexing) {
		go func() {
			if err := s.searchClient.DeleteProperty(id); err != nil {
				s.logger.Warn("search delete failed", slog.String("error", err.Error()))
			}
		}()
	}

	s.logger.Info("property deleted", slog.String("property_id", id))
	return nil
}

// Search runs a full-text query against the listing index
func (s *PropertyService) Search(ctx context.Context, params search.FilterParams) (*search.Result, error) {
	if s.searchClient == nil {
		return nil, fmt.Errorf("search is not configured: %w", domain.ErrInvalid)
	}
	return s.searchClient.Search(search.BuildRequest(params))
}

// Reindex rebuilds the whole listing index. Admin only.
func (s *PropertyService) Reindex(ctx context.Context, actor *domain.User) (int, error) {
	if err := s.authz.ValidatePermission(actor.Role, security.PermReindexSearch); err != nil {
		return 0, err
	}
	if s.searchClient == nil {
		return 0, fmt.Errorf("search is not configured: %w", domain.ErrInvalid)
	}
	return s.searchClient.ReindexAll(ctx, s.propertyRepo)
}

func (s *PropertyService) indexAsync(p *domain.Property) {
	if s.searchClient == nil || !featureflags.Enabled(featureflags.SearchIndexing) {
		return
	}
	snapshot := *p
	go func() {
		if err := s.searchClient.IndexProperty(&snapshot); err != nil {
			s.logger.Warn("search index failed",
				slog.String("property_id", snapshot.ID),
				slog.String("error", err.Error()),
			)
		}
	}()
}
