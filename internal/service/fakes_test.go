package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/infrastructure/logger"
	"github.com/estately/estately/internal/notification"
	"github.com/estately/estately/internal/security"
)

var (
	testLogger = logger.NewLogger("error")
	testAuthz  = security.NewAuthorizationService(testLogger)
)

func nextID(prefix string, n *int) string {
	*n++
	return prefix + "-" + strconv.Itoa(*n)
}

// memUserRepo is an in-memory domain.UserRepository
type memUserRepo struct {
	seq   int
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email taken: %w", domain.ErrConflict)
		}
	}
	if u.ID == "" {
		u.ID = nextID("u", &m.seq)
	}
	u.IsActive = true
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return nil
}
func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email && u.IsActive {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (m *memUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}
func (m *memUserRepo) SetVerified(_ context.Context, id string) error {
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Verified = true
	return nil
}
func (m *memUserRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}
func (m *memUserRepo) Deactivate(_ context.Context, id string) error {
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = false
	return nil
}

// memPropertyRepo is an in-memory domain.PropertyRepository
type memPropertyRepo struct {
	seq        int
	properties map[string]*domain.Property
}

func newMemPropertyRepo() *memPropertyRepo {
	return &memPropertyRepo{properties: map[string]*domain.Property{}}
}

func (m *memPropertyRepo) Create(_ context.Context, p *domain.Property) error {
	if p.ID == "" {
		p.ID = nextID("p", &m.seq)
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.properties[p.ID] = p
	return nil
}
func (m *memPropertyRepo) GetByID(_ context.Context, id string) (*domain.Property, error) {
	if p, ok := m.properties[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memPropertyRepo) List(_ context.Context, filters domain.PropertyFilters) ([]*domain.Property, error) {
	var out []*domain.Property
	for _, p := range m.properties {
		if filters.City != "" && p.City != filters.City {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
func (m *memPropertyRepo) Update(_ context.Context, id string, update domain.PropertyUpdate) (*domain.Property, error) {
	p, ok := m.properties[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.RentMonthly != nil {
		p.RentMonthly = *update.RentMonthly
	}
	if update.Available != nil {
		p.Available = *update.Available
	}
	if update.SharePrice != nil {
		p.SharePrice = *update.SharePrice
	}
	p.UpdatedAt = time.Now()
	return p, nil
}
func (m *memPropertyRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.properties[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.properties, id)
	return nil
}

// memLeaseRepo is an in-memory domain.LeaseRepository
type memLeaseRepo struct {
	seq    int
	leases map[string]*domain.Lease
}

func newMemLeaseRepo() *memLeaseRepo {
	return &memLeaseRepo{leases: map[string]*domain.Lease{}}
}

func (m *memLeaseRepo) Create(_ context.Context, l *domain.Lease) error {
	if l.ID == "" {
		l.ID = nextID("l", &m.seq)
	}
	l.Status = domain.LeaseActive
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	m.leases[l.ID] = l
	return nil
}
func (m *memLeaseRepo) GetByID(_ context.Context, id string) (*domain.Lease, error) {
	if l, ok := m.leases[id]; ok {
		return l, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memLeaseRepo) ListByLandlord(_ context.Context, landlordID string) ([]*domain.Lease, error) {
	var out []*domain.Lease
	for _, l := range m.leases {
		if l.LandlordID == landlordID {
			out = append(out, l)
		}
	}
	return out, nil
}
func (m *memLeaseRepo) ListByTenant(_ context.Context, tenantID string) ([]*domain.Lease, error) {
	var out []*domain.Lease
	for _, l := range m.leases {
		if l.TenantID == tenantID {
			out = append(out, l)
		}
	}
	return out, nil
}
func (m *memLeaseRepo) Terminate(_ context.Context, id string) error {
	l, ok := m.leases[id]
	if !ok {
		return domain.ErrNotFound
	}
	if l.Status != domain.LeaseActive {
		return fmt.Errorf("lease is %s: %w", l.Status, domain.ErrConflict)
	}
	l.Status = domain.LeaseTerminated
	return nil
}
func (m *memLeaseRepo) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, l := range m.leases {
		if l.Status == domain.LeaseActive && l.EndDate.Before(now) {
			l.Status = domain.LeaseExpired
			n++
		}
	}
	return n, nil
}
func (m *memLeaseRepo) ActiveTenants(_ context.Context, landlordID string) ([]*domain.TenantSummary, error) {
	var out []*domain.TenantSummary
	for _, l := range m.leases {
		if l.LandlordID == landlordID && l.Status == domain.LeaseActive {
			out = append(out, &domain.TenantSummary{
				TenantID:   l.TenantID,
				PropertyID: l.PropertyID,
				LeaseID:    l.ID,
				EndDate:    l.EndDate,
			})
		}
	}
	return out, nil
}
func (m *memLeaseRepo) CountActive(_ context.Context) (int, error) {
	n := 0
	for _, l := range m.leases {
		if l.Status == domain.LeaseActive {
			n++
		}
	}
	return n, nil
}

// memBillRepo is an in-memory domain.BillRepository
type memBillRepo struct {
	seq   int
	bills map[string]*domain.UtilityBill
}

func newMemBillRepo() *memBillRepo {
	return &memBillRepo{bills: map[string]*domain.UtilityBill{}}
}

func (m *memBillRepo) Create(_ context.Context, b *domain.UtilityBill) error {
	if b.ID == "" {
		b.ID = nextID("b", &m.seq)
	}
	b.Status = domain.BillPending
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.bills[b.ID] = b
	return nil
}
func (m *memBillRepo) GetByID(_ context.Context, id string) (*domain.UtilityBill, error) {
	if b, ok := m.bills[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memBillRepo) ListByLandlord(_ context.Context, landlordID string) ([]*domain.UtilityBill, error) {
	var out []*domain.UtilityBill
	for _, b := range m.bills {
		if b.LandlordID == landlordID {
			out = append(out, b)
		}
	}
	return out, nil
}
func (m *memBillRepo) ListByTenant(_ context.Context, tenantID string) ([]*domain.UtilityBill, error) {
	var out []*domain.UtilityBill
	for _, b := range m.bills {
		if b.TenantID == tenantID {
			out = append(out, b)
		}
	}
	return out, nil
}
func (m *memBillRepo) ListOverdue(_ context.Context, landlordID string, now time.Time) ([]*domain.UtilityBill, error) {
	var out []*domain.UtilityBill
	for _, b := range m.bills {
		if b.LandlordID == landlordID && b.Status == domain.BillOverdue && b.DueDate.Before(now) {
			out = append(out, b)
		}
	}
	return out, nil
}
func (m *memBillRepo) MarkPaid(_ context.Context, billID string, paidAt time.Time) (*domain.UtilityBill, error) {
	b, ok := m.bills[billID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !b.Status.PayableFrom() {
		return nil, fmt.Errorf("bill is %s: %w", b.Status, domain.ErrConflict)
	}
	b.Status = domain.BillPaid
	b.PaidDate = &paidAt
	b.UpdatedAt = paidAt
	return b, nil
}
func (m *memBillRepo) SubmitProof(_ context.Context, billID, proofURL string, submittedAt time.Time) (*domain.UtilityBill, error) {
	b, ok := m.bills[billID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if b.Status == domain.BillPaid {
		return nil, fmt.Errorf("bill already paid: %w", domain.ErrConflict)
	}
	b.Status = domain.BillSubmittedForReview
	b.ProofURL = proofURL
	b.ProofSubmittedAt = &submittedAt
	return b, nil
}
func (m *memBillRepo) SweepOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, b := range m.bills {
		if b.Status == domain.BillPending && b.DueDate.Before(now) {
			b.Status = domain.BillOverdue
			n++
		}
	}
	return n, nil
}

// memFavoriteRepo is an in-memory domain.FavoriteRepository
type memFavoriteRepo struct {
	favorites map[string]*domain.Favorite
}

func newMemFavoriteRepo() *memFavoriteRepo {
	return &memFavoriteRepo{favorites: map[string]*domain.Favorite{}}
}

func favKey(userID string, kind domain.FavoriteKind, targetID string) string {
	return userID + "|" + string(kind) + "|" + targetID
}

func (m *memFavoriteRepo) Toggle(_ context.Context, userID string, kind domain.FavoriteKind, targetID string) (bool, error) {
	key := favKey(userID, kind, targetID)
	if _, ok := m.favorites[key]; ok {
		delete(m.favorites, key)
		return false, nil
	}
	m.favorites[key] = &domain.Favorite{
		UserID:     userID,
		TargetKind: kind,
		TargetID:   targetID,
		CreatedAt:  time.Now(),
	}
	return true, nil
}
func (m *memFavoriteRepo) Remove(_ context.Context, userID string, kind domain.FavoriteKind, targetID string) error {
	delete(m.favorites, favKey(userID, kind, targetID))
	return nil
}
func (m *memFavoriteRepo) ListByUser(_ context.Context, userID string) ([]*domain.Favorite, error) {
	var out []*domain.Favorite
	for _, f := range m.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}
func (m *memFavoriteRepo) Count(_ context.Context, kind domain.FavoriteKind, targetID string) (int64, error) {
	var n int64
	for _, f := range m.favorites {
		if f.TargetKind == kind && f.TargetID == targetID {
			n++
		}
	}
	return n, nil
}

// memHoldingRepo is an in-memory domain.HoldingRepository
type memHoldingRepo struct {
	seq      int
	holdings map[string]*domain.Holding
}

func newMemHoldingRepo() *memHoldingRepo {
	return &memHoldingRepo{holdings: map[string]*domain.Holding{}}
}

func (m *memHoldingRepo) Create(_ context.Context, h *domain.Holding) error {
	if h.ID == "" {
		h.ID = nextID("h", &m.seq)
	}
	h.CreatedAt = time.Now()
	m.holdings[h.ID] = h
	return nil
}
func (m *memHoldingRepo) ListByUser(_ context.Context, userID string) ([]*domain.Holding, error) {
	var out []*domain.Holding
	for _, h := range m.holdings {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

// memInquiryRepo is an in-memory domain.InquiryRepository
type memInquiryRepo struct {
	seq       int
	inquiries map[string]*domain.Inquiry
}

func newMemInquiryRepo() *memInquiryRepo {
	return &memInquiryRepo{inquiries: map[string]*domain.Inquiry{}}
}

func (m *memInquiryRepo) Create(_ context.Context, inq *domain.Inquiry) error {
	if inq.ID == "" {
		inq.ID = nextID("i", &m.seq)
	}
	inq.Status = domain.InquiryNew
	inq.CreatedAt = time.Now()
	m.inquiries[inq.ID] = inq
	return nil
}
func (m *memInquiryRepo) ListByRecipient(_ context.Context, toUserID string) ([]*domain.Inquiry, error) {
	var out []*domain.Inquiry
	for _, inq := range m.inquiries {
		if inq.ToUserID == toUserID {
			out = append(out, inq)
		}
	}
	return out, nil
}
func (m *memInquiryRepo) MarkResponded(_ context.Context, id string) error {
	inq, ok := m.inquiries[id]
	if !ok {
		return domain.ErrNotFound
	}
	inq.Status = domain.InquiryResponded
	return nil
}

// memCodeStore is an in-memory CodeStore. Expiry is ignored; tests exercise
// presence and one-shot consumption.
type memCodeStore struct {
	mu    sync.Mutex
	codes map[string]string
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{codes: map[string]string{}}
}

func (m *memCodeStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[key] = fmt.Sprintf("%v", value)
	return nil
}
func (m *memCodeStore) GetDel(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.codes[key]
	if !ok {
		return "", goredis.Nil
	}
	delete(m.codes, key)
	return v, nil
}

// recordingSender captures outbound mail
type recordingSender struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingSender) Send(to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, to+"|"+subject+"|"+body)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func newTestMailer() (*notification.Mailer, *recordingSender) {
	sender := &recordingSender{}
	return notification.NewMailer(sender, testLogger), sender
}
