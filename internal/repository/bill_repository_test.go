package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/infrastructure/logger"
)

var billTestColumns = []string{
	"id", "lease_id", "property_id", "landlord_id", "tenant_id", "bill_type", "amount",
	"due_date", "status", "paid_date", "proof_url", "proof_submitted_at", "created_at", "updated_at",
}

func newBillRepoMock(t *testing.T) (*PostgresBillRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresBillRepository(db, logger.NewLogger("error")), mock
}

func TestMarkPaidLocksRowAndRejectsPaidBill(t *testing.T) {
	repo, mock := newBillRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM utility_bills").
		WithArgs("bill-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("paid"))
	mock.ExpectRollback()

	_, err := repo.MarkPaid(context.Background(), "bill-1", time.Now())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkPaidCommitsPendingBill(t *testing.T) {
	repo, mock := newBillRepoMock(t)

	due := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM utility_bills").
		WithArgs("bill-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectQuery("UPDATE utility_bills SET status =").
		WithArgs("bill-1", domain.BillPaid, paidAt).
		WillReturnRows(sqlmock.NewRows(billTestColumns).AddRow(
			"bill-1", "lease-1", "prop-1", "landlord-1", "tenant-1", "water", int64(4200),
			due, "paid", paidAt, nil, nil, now, now,
		))
	mock.ExpectCommit()

	bill, err := repo.MarkPaid(context.Background(), "bill-1", paidAt)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if bill.Status != domain.BillPaid {
		t.Errorf("status = %s, want paid", bill.Status)
	}
	if bill.PaidDate == nil || !bill.PaidDate.Equal(paidAt) {
		t.Errorf("paid date = %v, want %v", bill.PaidDate, paidAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSubmitProofRejectsPaidBill(t *testing.T) {
	repo, mock := newBillRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM utility_bills").
		WithArgs("bill-2").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("paid"))
	mock.ExpectRollback()

	_, err := repo.SubmitProof(context.Background(), "bill-2", "/uploads/x.png", time.Now())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkPaidMissingBillIsNotFound(t *testing.T) {
	repo, mock := newBillRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM utility_bills").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	_, err := repo.MarkPaid(context.Background(), "ghost", time.Now())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
