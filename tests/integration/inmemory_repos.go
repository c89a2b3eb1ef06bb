package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// In-memory repositories implementing the storage ports with the same
// conditional-update semantics as the postgres layer, so the full engine can
// be exercised without a database. A single mutex per repo stands in for the
// atomicity of the conditional UPDATE statements.

// --- Merchant repo + ledger ---

type inMemoryMerchantRepo struct {
	mu        sync.Mutex
	merchants map[uuid.UUID]*domain.Merchant
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[uuid.UUID]*domain.Merchant)}
}

func (r *inMemoryMerchantRepo) Create(_ context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryMerchantRepo) List(_ context.Context) ([]domain.Merchant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Merchant, 0, len(r.merchants))
	for _, m := range r.merchants {
		out = append(out, *m)
	}
	return out, nil
}

func (r *inMemoryMerchantRepo) Update(_ context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.merchants[m.ID]
	if !ok {
		return fmt.Errorf("merchant not found")
	}
	// Balance columns move only through the ledger operations.
	cp := *m
	cp.Balance = existing.Balance
	cp.FrozenBalance = existing.FrozenBalance
	r.merchants[m.ID] = &cp
	return nil
}

func (r *inMemoryMerchantRepo) CreditAvailable(_ context.Context, _ pgx.Tx, merchantID uuid.UUID, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[merchantID]
	if !ok {
		return fmt.Errorf("merchant not found")
	}
	m.Balance = m.Balance.Add(amount)
	return nil
}

func (r *inMemoryMerchantRepo) FreezeForPayout(_ context.Context, _ pgx.Tx, merchantID uuid.UUID, total decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[merchantID]
	if !ok {
		return false, fmt.Errorf("merchant not found")
	}
	if m.Balance.LessThan(total) {
		return false, nil
	}
	m.Balance = m.Balance.Sub(total)
	m.FrozenBalance = m.FrozenBalance.Add(total)
	return true, nil
}

func (r *inMemoryMerchantRepo) ResolveFreeze(_ context.Context, _ pgx.Tx, merchantID uuid.UUID, total decimal.Decimal, outcome domain.PayoutOutcome) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[merchantID]
	if !ok {
		return false, fmt.Errorf("merchant not found")
	}
	clamped := m.FrozenBalance.LessThan(total)
	release := total
	if clamped {
		release = m.FrozenBalance
	}
	m.FrozenBalance = m.FrozenBalance.Sub(release)
	if outcome == domain.PayoutOutcomeRejected {
		m.Balance = m.Balance.Add(release)
	}
	return clamped, nil
}

// --- Transaction repo ---

type inMemoryTransactionRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

func (r *inMemoryTransactionRepo) Create(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.transactions {
		if existing.OrderNo == txn.OrderNo {
			return uniqueViolation()
		}
		if txn.MerchantOrderNo != "" &&
			existing.MerchantID == txn.MerchantID &&
			existing.MerchantOrderNo == txn.MerchantOrderNo {
			return uniqueViolation()
		}
	}
	cp := *txn
	r.transactions[txn.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) GetByOrderNo(_ context.Context, orderNo string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.OrderNo == orderNo {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) GetByMerchantOrderNo(_ context.Context, merchantID uuid.UUID, merchantOrderNo string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.MerchantID == merchantID && t.MerchantOrderNo == merchantOrderNo {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) MarkDispatched(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || t.Status != domain.TransactionStatusPending ||
		t.Stage == nil || *t.Stage != domain.PayoutStageCreated {
		return false, nil
	}
	dispatched := domain.PayoutStageDispatched
	t.Stage = &dispatched
	return true, nil
}

func (r *inMemoryTransactionRepo) SetCallbackData(_ context.Context, id uuid.UUID, data string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return fmt.Errorf("transaction not found")
	}
	t.CallbackData = &data
	return nil
}

func (r *inMemoryTransactionRepo) Finalize(_ context.Context, _ pgx.Tx, id uuid.UUID, status domain.TransactionStatus, callbackData *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || t.Status != domain.TransactionStatusPending {
		return false, nil
	}
	t.Status = status
	if callbackData != nil {
		t.CallbackData = callbackData
	}
	now := time.Now().UTC()
	t.ProcessedAt = &now
	return true, nil
}

func (r *inMemoryTransactionRepo) RejectCreatedPayout(_ context.Context, _ pgx.Tx, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || t.Status != domain.TransactionStatusPending ||
		t.Stage == nil || *t.Stage != domain.PayoutStageCreated {
		return false, nil
	}
	t.Status = domain.TransactionStatusFailed
	now := time.Now().UTC()
	t.ProcessedAt = &now
	return true, nil
}

func (r *inMemoryTransactionRepo) List(_ context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if params.MerchantID != nil && t.MerchantID != *params.MerchantID {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryTransactionRepo) GetStats(_ context.Context, merchantID *uuid.UUID, periodStart *int64) (*ports.TransactionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &ports.TransactionStats{
		TotalPayinVolume:  decimal.Zero,
		TotalPayoutVolume: decimal.Zero,
	}
	for _, t := range r.transactions {
		if merchantID != nil && t.MerchantID != *merchantID {
			continue
		}
		if periodStart != nil && t.CreatedAt.Unix() < *periodStart {
			continue
		}
		stats.TotalTransactions++
		switch t.Status {
		case domain.TransactionStatusSuccess:
			stats.Successful++
		case domain.TransactionStatusFailed:
			stats.Failed++
		case domain.TransactionStatusPending:
			stats.Pending++
		}
		if t.Status == domain.TransactionStatusSuccess {
			switch t.Type {
			case domain.TransactionTypePayin:
				stats.TotalPayinVolume = stats.TotalPayinVolume.Add(t.NetAmount)
			case domain.TransactionTypePayout:
				stats.TotalPayoutVolume = stats.TotalPayoutVolume.Add(t.NetAmount)
			}
		}
	}
	return stats, nil
}

// --- Payment link repo ---

type inMemoryPaymentLinkRepo struct {
	mu    sync.Mutex
	links map[uuid.UUID]*domain.PaymentLink
}

func newInMemoryPaymentLinkRepo() *inMemoryPaymentLinkRepo {
	return &inMemoryPaymentLinkRepo{links: make(map[uuid.UUID]*domain.PaymentLink)}
}

func (r *inMemoryPaymentLinkRepo) Create(_ context.Context, link *domain.PaymentLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *link
	r.links[link.ID] = &cp
	return nil
}

func (r *inMemoryPaymentLinkRepo) GetByCode(_ context.Context, code string) (*domain.PaymentLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.Code == code {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentLinkRepo) MarkPaid(_ context.Context, id uuid.UUID, orderNo string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || l.PaidOrderNo != nil {
		return false, nil
	}
	l.PaidOrderNo = &orderNo
	return true, nil
}

// --- Alert repo ---

type inMemoryAlertRepo struct {
	mu     sync.Mutex
	alerts []*domain.Alert
}

func newInMemoryAlertRepo() *inMemoryAlertRepo {
	return &inMemoryAlertRepo{}
}

func (r *inMemoryAlertRepo) Create(_ context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *alert
	r.alerts = append(r.alerts, &cp)
	return nil
}

func (r *inMemoryAlertRepo) List(_ context.Context, unacknowledgedOnly bool) ([]domain.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Alert
	for _, a := range r.alerts {
		if unacknowledgedOnly && a.AcknowledgedAt != nil {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *inMemoryAlertRepo) Acknowledge(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ID == id && a.AcknowledgedAt == nil {
			now := time.Now().UTC()
			a.AcknowledgedAt = &now
		}
	}
	return nil
}

// --- Admin repo ---

type inMemoryAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*domain.AdminUser
}

func newInMemoryAdminRepo() *inMemoryAdminRepo {
	return &inMemoryAdminRepo{admins: make(map[string]*domain.AdminUser)}
}

func (r *inMemoryAdminRepo) Create(_ context.Context, admin *domain.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *admin
	r.admins[admin.Username] = &cp
	return nil
}

func (r *inMemoryAdminRepo) GetByUsername(_ context.Context, username string) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[username]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// --- Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
