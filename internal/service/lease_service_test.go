package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/estately/estately/internal/domain"
)

type leaseFixture struct {
	svc       *LeaseService
	landlord  *domain.User
	tenant    *domain.User
	property  *domain.Property
	leaseRepo *memLeaseRepo
}

func newLeaseFixture(t *testing.T) *leaseFixture {
	t.Helper()
	ctx := context.Background()

	users := newMemUserRepo()
	landlord := &domain.User{Email: "owner@example.com", FullName: "Owner", Role: domain.RoleLandlord}
	tenant := &domain.User{Email: "renter@example.com", FullName: "Renter", Role: domain.RoleTenant}
	if err := users.Create(ctx, landlord); err != nil {
		t.Fatal(err)
	}
	if err := users.Create(ctx, tenant); err != nil {
		t.Fatal(err)
	}

	properties := newMemPropertyRepo()
	property := &domain.Property{OwnerID: landlord.ID, Title: "Flat", Address: "1 Main St", City: "Metropolis"}
	if err := properties.Create(ctx, property); err != nil {
		t.Fatal(err)
	}

	leases := newMemLeaseRepo()
	svc := NewLeaseService(leases, properties, users, testAuthz, testLogger)

	return &leaseFixture{svc: svc, landlord: landlord, tenant: tenant, property: property, leaseRepo: leases}
}

func (f *leaseFixture) createLease(t *testing.T) *domain.Lease {
	t.Helper()
	lease, err := f.svc.Create(context.Background(), f.landlord, &domain.Lease{
		PropertyID:  f.property.ID,
		TenantID:    f.tenant.ID,
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(1, 0, 0),
		MonthlyRent: 1500,
	})
	if err != nil {
		t.Fatalf("create lease: %v", err)
	}
	return lease
}

func TestCreateLease(t *testing.T) {
	f := newLeaseFixture(t)

	lease := f.createLease(t)
	if lease.Status != domain.LeaseActive {
		t.Errorf("status = %q, want active", lease.Status)
	}
	if lease.LandlordID != f.landlord.ID {
		t.Error("landlord not derived from property owner")
	}
}

func TestCreateLeaseRejectsNonOwner(t *testing.T) {
	f := newLeaseFixture(t)

	other := &domain.User{ID: "other", Role: domain.RoleLandlord}
	_, err := f.svc.Create(context.Background(), other, &domain.Lease{
		PropertyID: f.property.ID,
		TenantID:   f.tenant.ID,
		StartDate:  time.Now(),
		EndDate:    time.Now().AddDate(1, 0, 0),
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
}

func TestCreateLeaseRejectsNonTenantUser(t *testing.T) {
	f := newLeaseFixture(t)

	_, err := f.svc.Create(context.Background(), f.landlord, &domain.Lease{
		PropertyID: f.property.ID,
		TenantID:   f.landlord.ID,
		StartDate:  time.Now(),
		EndDate:    time.Now().AddDate(1, 0, 0),
	})
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}
}

func TestCreateLeaseRejectsInvertedDates(t *testing.T) {
	f := newLeaseFixture(t)

	_, err := f.svc.Create(context.Background(), f.landlord, &domain.Lease{
		PropertyID: f.property.ID,
		TenantID:   f.tenant.ID,
		StartDate:  time.Now(),
		EndDate:    time.Now().AddDate(0, 0, -1),
	})
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("error = %v, want ErrInvalid", err)
	}
}

func TestTerminateLeaseOnce(t *testing.T) {
	f := newLeaseFixture(t)
	ctx := context.Background()
	lease := f.createLease(t)

	if err := f.svc.Terminate(ctx, f.landlord, lease.ID); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if err := f.svc.Terminate(ctx, f.landlord, lease.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second terminate error = %v, want ErrConflict", err)
	}
}

func TestTenantsListsActiveLeasesOnly(t *testing.T) {
	f := newLeaseFixture(t)
	ctx := context.Background()

	active := f.createLease(t)
	terminated := f.createLease(t)
	if err := f.svc.Terminate(ctx, f.landlord, terminated.ID); err != nil {
		t.Fatal(err)
	}

	tenants, err := f.svc.Tenants(ctx, f.landlord)
	if err != nil {
		t.Fatalf("tenants: %v", err)
	}
	if len(tenants) != 1 {
		t.Fatalf("tenants = %d, want 1", len(tenants))
	}
	if tenants[0].LeaseID != active.ID {
		t.Errorf("lease id = %q, want %q", tenants[0].LeaseID, active.ID)
	}
}

func TestExpireDue(t *testing.T) {
	f := newLeaseFixture(t)
	ctx := context.Background()

	lease := f.createLease(t)
	lease.EndDate = time.Now().AddDate(0, 0, -1)
	f.createLease(t)

	n, err := f.svc.ExpireDue(ctx, time.Now())
	if err != nil {
		t.Fatalf("expire due: %v", err)
	}
	if n != 1 {
		t.Errorf("expired = %d, want 1", n)
	}
	got, _ := f.leaseRepo.GetByID(ctx, lease.ID)
	if got.Status != domain.LeaseExpired {
		t.Errorf("status = %q, want expired", got.Status)
	}
}

func TestListForUserScopesByRole(t *testing.T) {
	f := newLeaseFixture(t)
	ctx := context.Background()
	f.createLease(t)

	asLandlord, err := f.svc.ListForUser(ctx, f.landlord)
	if err != nil || len(asLandlord) != 1 {
		t.Fatalf("landlord list = %v, %v", asLandlord, err)
	}
	asTenant, err := f.svc.ListForUser(ctx, f.tenant)
	if err != nil || len(asTenant) != 1 {
		t.Fatalf("tenant list = %v, %v", asTenant, err)
	}
	stranger := &domain.User{ID: "nobody", Role: domain.RoleTenant}
	asStranger, err := f.svc.ListForUser(ctx, stranger)
	if err != nil || len(asStranger) != 0 {
		t.Fatalf("stranger list = %v, %v", asStranger, err)
	}
}
