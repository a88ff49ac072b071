package service

import (
	"context"
	"errors"
	"testing"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/search"
)

func newPropertyService() (*PropertyService, *memPropertyRepo) {
	repo := newMemPropertyRepo()
	// nil search client: indexing is skipped, which is also the production
	// behavior when Meilisearch is not configured.
	return NewPropertyService(repo, testAuthz, nil, testLogger), repo
}

func TestCreatePropertySetsOwner(t *testing.T) {
	svc, _ := newPropertyService()
	landlord := &domain.User{ID: "l1", Role: domain.RoleLandlord}

	p, err := svc.Create(context.Background(), landlord, &domain.Property{
		Title:   "Sunny loft",
		Address: "2 Side St",
		City:    "Metropolis",
		OwnerID: "someone-else",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.OwnerID != "l1" {
		t.Errorf("owner = %q, want actor", p.OwnerID)
	}
	if !p.Available {
		t.Error("new listing should be available")
	}
}

func TestCreatePropertyRejectsTenant(t *testing.T) {
	svc, _ := newPropertyService()
	tenant := &domain.User{ID: "t1", Role: domain.RoleTenant}

	_, err := svc.Create(context.Background(), tenant, &domain.Property{
		Title: "Nope", Address: "3 St", City: "Metropolis",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
}

func TestCreatePropertyValidation(t *testing.T) {
	svc, _ := newPropertyService()
	landlord := &domain.User{ID: "l1", Role: domain.RoleLandlord}

	_, err := svc.Create(context.Background(), landlord, &domain.Property{Title: "Missing address"})
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}

	_, err = svc.Create(context.Background(), landlord, &domain.Property{
		Title: "Negative rent", Address: "4 St", City: "C", RentMonthly: -1,
	})
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}
}

func TestUpdatePropertyOwnershipCheck(t *testing.T) {
	svc, _ := newPropertyService()
	ctx := context.Background()
	owner := &domain.User{ID: "l1", Role: domain.RoleLandlord}
	other := &domain.User{ID: "l2", Role: domain.RoleLandlord}
	admin := &domain.User{ID: "a1", Role: domain.RoleAdmin}

	p, err := svc.Create(ctx, owner, &domain.Property{Title: "Flat", Address: "5 St", City: "C"})
	if err != nil {
		t.Fatal(err)
	}

	newTitle := "Renamed"
	if _, err := svc.Update(ctx, other, p.ID, domain.PropertyUpdate{Title: &newTitle}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner update error = %v, want ErrForbidden", err)
	}
	updated, err := svc.Update(ctx, owner, p.ID, domain.PropertyUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q", updated.Title)
	}
	adminTitle := "Admin override"
	if _, err := svc.Update(ctx, admin, p.ID, domain.PropertyUpdate{Title: &adminTitle}); err != nil {
		t.Errorf("admin update: %v", err)
	}
}

func TestDeletePropertyOwnershipCheck(t *testing.T) {
	svc, repo := newPropertyService()
	ctx := context.Background()
	owner := &domain.User{ID: "l1", Role: domain.RoleLandlord}
	other := &domain.User{ID: "l2", Role: domain.RoleLandlord}

	p, err := svc.Create(ctx, owner, &domain.Property{Title: "Flat", Address: "6 St", City: "C"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, other, p.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner delete error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, owner, p.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("property still present after delete")
	}
}

func TestSearchWithoutClient(t *testing.T) {
	svc, _ := newPropertyService()

	if _, err := svc.Search(context.Background(), search.FilterParams{Query: "loft"}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}
}

func TestReindexRequiresAdmin(t *testing.T) {
	svc, _ := newPropertyService()
	landlord := &domain.User{ID: "l1", Role: domain.RoleLandlord}

	if _, err := svc.Reindex(context.Background(), landlord); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
}
