package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/notification"
	"github.com/estately/estately/internal/observability/metrics"
	"github.com/estately/estately/internal/security"
)

// BillService handles the utility bill lifecycle. Transitions are guarded in
// the repository; this layer adds authorization, notification, and metrics.
type BillService struct {
	billRepo  domain.BillRepository
	leaseRepo domain.LeaseRepository
	userRepo  domain.UserRepository
	authz     *security.AuthorizationService
	mailer    *notification.Mailer
	logger    *slog.Logger
}

// NewBillService creates a new bill service
func NewBillService(
	billRepo domain.BillRepository,
	leaseRepo domain.LeaseRepository,
	userRepo domain.UserRepository,
	authz *security.AuthorizationService,
	mailer *notification.Mailer,
	logger *slog.Logger,
) *BillService {
	if logger == nil {
		logger = slog.Default()
	}

	return &BillService{
		billRepo:  billRepo,
		leaseRepo: leaseRepo,
		userRepo:  userRepo,
		authz:     authz,
		mailer:    mailer,
		logger:    logger,
	}
}

var validBillTypes = map[string]bool{
	"electricity": true,
	"water":       true,
	"gas":         true,
	"internet":    true,
	"other":       true,
}

// Create issues a bill against a lease the actor holds as landlord. The
// tenant is notified by email; a failed send never rolls back the bill.
func (s *BillService) Create(ctx context.Context, actor *domain.User, bill *domain.UtilityBill) (*domain.UtilityBill, error) {
	if err := s.authz.ValidatePermission(actor.Role, security.PermCreateBill); err != nil {
		return nil, err
	}
	if bill.LeaseID == "" {
		return nil, fmt.Errorf("lease is required: %w", domain.ErrInvalid)
	}
	if bill.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", domain.ErrInvalid)
	}
	if !validBillTypes[bill.BillType] {
		return nil, fmt.Errorf("unknown bill type %q: %w", bill.BillType, domain.ErrInvalid)
	}
	if bill.DueDate.IsZero() {
		return nil, fmt.Errorf("due date is required: %w", domain.ErrInvalid)
	}

	lease, err := s.leaseRepo.GetByID(ctx, bill.LeaseID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateOwnership(actor.Role, actor.ID, lease.LandlordID); err != nil {
		return nil, err
	}
	if lease.Status != domain.LeaseActive {
		return nil, fmt.Errorf("lease %s is %s: %w", lease.ID, lease.Status, domain.ErrConflict)
	}

	bill.PropertyID = lease.PropertyID
	bill.LandlordID = lease.LandlordID
	bill.TenantID = lease.TenantID
	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, err
	}

	if tenant, err := s.userRepo.GetByID(ctx, bill.TenantID); err == nil {
		s.mailer.SendBillNotice(tenant.Email, bill.BillType, bill.Amount, bill.DueDate.Format("2006-01-02"))
	}

	s.logger.Info("bill created",
		slog.String("bill_id", bill.ID),
		slog.String("lease_id", bill.LeaseID),
		slog.Int64("amount", bill.Amount),
	)
	return bill, nil
}

// ListForUser lists bills visible to the actor
func (s *BillService) ListForUser(ctx context.Context, actor *domain.User) ([]*domain.UtilityBill, error) {
	switch actor.Role {
	case domain.RoleLandlord, domain.RoleAdmin:
		return s.billRepo.ListByLandlord(ctx, actor.ID)
	default:
		return s.billRepo.ListByTenant(ctx, actor.ID)
	}
}

// ListOverdue lists the landlord's overdue bills
func (s *BillService) ListOverdue(ctx context.Context, actor *domain.User) ([]*domain.UtilityBill, error) {
	if err := s.authz.ValidatePermission(actor.Role, security.PermViewOverdue); err != nil {
		return nil, err
	}
	return s.billRepo.ListOverdue(ctx, actor.ID, time.Now())
}

// MarkPaid transitions a bill to paid. Only the issuing landlord may pay it,
// and paying a paid bill is a conflict.
func (s *BillService) MarkPaid(ctx context.Context, actor *domain.User, billID string) (*domain.UtilityBill, error) {
	if err := s.authz.ValidatePermission(actor.Role, security.PermMarkBillPaid); err != nil {
		return nil, err
	}

	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateOwnership(actor.Role, actor.ID, bill.LandlordID); err != nil {
		return nil, err
	}

	from := string(bill.Status)
	updated, err := s.billRepo.MarkPaid(ctx, billID, time.Now())
	if err != nil {
		metrics.ObserveBillTransition(from, string(domain.BillPaid), "error")
		return nil, err
	}
	metrics.ObserveBillTransition(from, string(domain.BillPaid), "ok")

	s.logger.Info("bill marked paid",
		slog.String("bill_id", billID),
		slog.String("from", from),
	)
	return updated, nil
}

// SubmitProof records the tenant's payment proof. Only the billed tenant may
// submit, and a paid bill no longer accepts proof.
func (s *BillService) SubmitProof(ctx context.Context, actor *domain.User, billID, proofURL string) (*domain.UtilityBill, error) {
	if err := s.authz.ValidatePermission(actor.Role, security.PermSubmitBillProof); err != nil {
		return nil, err
	}
	if proofURL == "" {
		return nil, fmt.Errorf("proof attachment is required: %w", domain.ErrInvalid)
	}

	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateOwnership(actor.Role, actor.ID, bill.TenantID); err != nil {
		return nil, err
	}

	from := string(bill.Status)
	updated, err := s.billRepo.SubmitProof(ctx, billID, proofURL, time.Now())
	if err != nil {
		metrics.ObserveBillTransition(from, string(domain.BillSubmittedForReview), "error")
		return nil, err
	}
	metrics.ObserveBillTransition(from, string(domain.BillSubmittedForReview), "ok")

	s.logger.Info("payment proof submitted",
		slog.String("bill_id", billID),
		slog.String("tenant_id", actor.ID),
	)
	return updated, nil
}

// SweepOverdue flips due pending bills to overdue
func (s *BillService) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	return s.billRepo.SweepOverdue(ctx, now)
}
