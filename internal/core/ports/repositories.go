package ports

import (
	"context"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MerchantRepository defines persistence for merchants and the ledger
// operations on their balance buckets. The three ledger methods are each a
// single conditional UPDATE; methods accepting pgx.Tx run inside the same
// database transaction as the status transition they accompany.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	List(ctx context.Context) ([]domain.Merchant, error)
	Update(ctx context.Context, merchant *domain.Merchant) error

	// CreditAvailable adds amount to the available balance.
	CreditAvailable(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, amount decimal.Decimal) error
	// FreezeForPayout moves total from available to frozen. Returns false
	// (and performs nothing) when the available balance is below total.
	FreezeForPayout(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, total decimal.Decimal) (bool, error)
	// ResolveFreeze releases total from the frozen bucket; on a rejected
	// outcome the funds return to available. frozen_balance clamps at zero;
	// clamped reports whether clamping occurred so callers can log it.
	ResolveFreeze(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, total decimal.Decimal, outcome domain.PayoutOutcome) (clamped bool, err error)
}

// TransactionRepository defines persistence for transactions. Conditional
// methods return false when the guard did not match (the row was not in the
// required state), which callers surface as InvalidState or idempotent no-op.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByOrderNo(ctx context.Context, orderNo string) (*domain.Transaction, error)
	GetByMerchantOrderNo(ctx context.Context, merchantID uuid.UUID, merchantOrderNo string) (*domain.Transaction, error)

	// MarkDispatched advances a payout from CREATED to DISPATCHED while the
	// status stays PENDING. The claim happens before the upstream call so a
	// concurrent approval or rejection loses cleanly.
	MarkDispatched(ctx context.Context, id uuid.UUID) (bool, error)
	// SetCallbackData stores a raw gateway or settlement payload for audit.
	SetCallbackData(ctx context.Context, id uuid.UUID, data string) error
	// Finalize moves a pending transaction to a terminal status, guarded by
	// status = PENDING, storing the raw callback payload.
	Finalize(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, callbackData *string) (bool, error)
	// RejectCreatedPayout fails a payout still awaiting approval, guarded by
	// status = PENDING AND stage = CREATED.
	RejectCreatedPayout(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)

	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, merchantID *uuid.UUID, periodStart *int64) (*TransactionStats, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	MerchantID *uuid.UUID
	Status     *domain.TransactionStatus
	Type       *domain.TransactionType
	From       *int64 // Unix timestamp
	To         *int64 // Unix timestamp
	Page       int
	PageSize   int
}

// TransactionStats holds aggregated statistics for the admin dashboard.
type TransactionStats struct {
	TotalTransactions int64
	Successful        int64
	Failed            int64
	Pending           int64
	TotalPayinVolume  decimal.Decimal // Sum of successful payin net amounts
	TotalPayoutVolume decimal.Decimal // Sum of successful payout held amounts
}

// PaymentLinkRepository defines persistence for payment links.
type PaymentLinkRepository interface {
	Create(ctx context.Context, link *domain.PaymentLink) error
	GetByCode(ctx context.Context, code string) (*domain.PaymentLink, error)
	// MarkPaid binds the payin order to the link, guarded by the link being
	// unpaid. Returns false when another payment already claimed it.
	MarkPaid(ctx context.Context, id uuid.UUID, orderNo string) (bool, error)
}

// AlertRepository defines persistence for administrative alerts.
type AlertRepository interface {
	Create(ctx context.Context, alert *domain.Alert) error
	List(ctx context.Context, unacknowledgedOnly bool) ([]domain.Alert, error)
	Acknowledge(ctx context.Context, id uuid.UUID) error
}

// AdminRepository defines persistence for admin users.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminUser) error
	GetByUsername(ctx context.Context, username string) (*domain.AdminUser, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
