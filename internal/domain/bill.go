package domain

import (
	"context"
	"time"
)

// BillStatus is the lifecycle state of a utility bill.
//
//	pending ──sweep──▶ overdue
//	pending|overdue ──tenant proof──▶ submitted_for_review
//	pending|overdue|submitted_for_review ──landlord──▶ paid (terminal)
type BillStatus string

const (
	BillPending            BillStatus = "pending"
	BillSubmittedForReview BillStatus = "submitted_for_review"
	BillOverdue            BillStatus = "overdue"
	BillPaid               BillStatus = "paid"
)

// PayableFrom reports whether a landlord may mark a bill paid from s.
func (s BillStatus) PayableFrom() bool {
	switch s {
	case BillPending, BillOverdue, BillSubmittedForReview:
		return true
	default:
		return false
	}
}

// UtilityBill is a billing record tied to a lease.
type UtilityBill struct {
	ID               string     `json:"id"`
	LeaseID          string     `json:"leaseId"`
	PropertyID       string     `json:"propertyId"`
	LandlordID       string     `json:"landlordId"`
	TenantID         string     `json:"tenantId"`
	BillType         string     `json:"billType"` // electricity | water | gas | internet | other
	Amount           int64      `json:"amount"`
	DueDate          time.Time  `json:"dueDate"`
	Status           BillStatus `json:"status"`
	PaidDate         *time.Time `json:"paidDate,omitempty"`
	ProofURL         string     `json:"proofUrl,omitempty"`
	ProofSubmittedAt *time.Time `json:"proofSubmittedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// BillRepository defines data access for utility bills. The transition methods
// guard status in SQL so concurrent callers serialize on the row.
type BillRepository interface {
	Create(ctx context.Context, bill *UtilityBill) error
	GetByID(ctx context.Context, id string) (*UtilityBill, error)
	ListByLandlord(ctx context.Context, landlordID string) ([]*UtilityBill, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*UtilityBill, error)
	// ListOverdue returns the landlord's bills with stored status overdue and a
	// past due date.
	ListOverdue(ctx context.Context, landlordID string, now time.Time) ([]*UtilityBill, error)
	// MarkPaid transitions the bill to paid. ErrConflict when the bill is
	// already paid; paid_date is set exactly once.
	MarkPaid(ctx context.Context, billID string, paidAt time.Time) (*UtilityBill, error)
	// SubmitProof records the proof attachment and moves the bill to
	// submitted_for_review. ErrConflict when the bill is already paid.
	SubmitProof(ctx context.Context, billID, proofURL string, submittedAt time.Time) (*UtilityBill, error)
	// SweepOverdue flips due pending bills to overdue and returns how many
	// rows changed.
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}
