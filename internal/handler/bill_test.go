package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/infrastructure/logger"
	"github.com/estately/estately/internal/notification"
	"github.com/estately/estately/internal/security"
	"github.com/estately/estately/internal/security/audit"
	"github.com/estately/estately/internal/security/auth"
	"github.com/estately/estately/internal/security/middleware"
	"github.com/estately/estately/internal/service"
)

// stubBillRepo satisfies domain.BillRepository via embedding; only GetByID
// is wired, which is as far as a rejected proof submission gets.
type stubBillRepo struct {
	domain.BillRepository
	bill *domain.UtilityBill
	err  error
}

func (s *stubBillRepo) GetByID(ctx context.Context, id string) (*domain.UtilityBill, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bill, nil
}

type fakeUploadStore struct {
	saved   []string
	removed []string
}

func (f *fakeUploadStore) Save(filename string, r io.Reader) (string, error) {
	url := "/uploads/" + filename
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeUploadStore) Remove(url string) error {
	f.removed = append(f.removed, url)
	return nil
}

func newSubmitPaymentServer(t *testing.T, repo domain.BillRepository, store *fakeUploadStore) http.Handler {
	t.Helper()
	log := logger.NewLogger("error")
	billService := service.NewBillService(repo, nil, nil,
		security.NewAuthorizationService(log),
		notification.NewMailer(notification.NewLogSender(log), log), log)
	billHandler := NewBillHandler(billService, store, audit.NewLogger(log), log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/bills/{id}/submit-payment", billHandler.SubmitPayment)
	return mux
}

func proofRequest(t *testing.T, billID string, claims *auth.Claims) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("proof", "receipt.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte("fake png bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/bills/"+billID+"/submit-payment", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	ctx := context.WithValue(req.Context(), middleware.ClaimsContextKey{}, claims)
	return req.WithContext(ctx)
}

func TestSubmitPaymentRemovesUploadForMissingBill(t *testing.T) {
	store := &fakeUploadStore{}
	repo := &stubBillRepo{err: fmt.Errorf("bill: %w", domain.ErrNotFound)}
	srv := newSubmitPaymentServer(t, repo, store)

	req := proofRequest(t, "no-such-bill", &auth.Claims{UserID: "tenant-1", Role: domain.RoleTenant})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved = %d files, want 1", len(store.saved))
	}
	if len(store.removed) != 1 || store.removed[0] != store.saved[0] {
		t.Errorf("removed = %v, want the saved file %q taken back", store.removed, store.saved[0])
	}
}

func TestSubmitPaymentRemovesUploadForWrongTenant(t *testing.T) {
	store := &fakeUploadStore{}
	repo := &stubBillRepo{bill: &domain.UtilityBill{
		ID:       "bill-1",
		TenantID: "tenant-1",
		Status:   domain.BillPending,
	}}
	srv := newSubmitPaymentServer(t, repo, store)

	req := proofRequest(t, "bill-1", &auth.Claims{UserID: "tenant-2", Role: domain.RoleTenant})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(store.removed) != 1 {
		t.Errorf("removed = %v, want the rejected proof deleted", store.removed)
	}
}
