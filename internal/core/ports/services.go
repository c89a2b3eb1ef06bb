package ports

import (
	"context"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SignatureService computes and verifies the keyed digests used by both the
// merchant-facing API and the upstream processor. Parts must already be in
// the scheme-specific field order (domain.PayinSignParts / PayoutSignParts).
type SignatureService interface {
	Sign(parts []string) string
	Verify(parts []string, candidate string) bool
}

// OrderNoGenerator produces collision-resistant order identifiers with a
// per-class prefix. Collisions surface from storage as DuplicateOrder.
type OrderNoGenerator interface {
	Generate(prefix string) string
}

// Order number class prefixes.
const (
	OrderPrefixPayin       = "PI"
	OrderPrefixPayout      = "PO"
	OrderPrefixPaymentLink = "PL"
)

// GatewayClient is the thin adapter to the upstream processor. It signs with
// the platform's master credentials and hands the processor this system's
// internal callback endpoints. It never retries; retry policy belongs to the
// caller because blind retries on payment creation risk duplicate charges.
type GatewayClient interface {
	CreatePayment(ctx context.Context, req GatewayPaymentRequest) (*GatewayResult, error)
	CreatePayout(ctx context.Context, req GatewayPayoutRequest) (*GatewayResult, error)
	HealthCheck(ctx context.Context) error
}

// GatewayPaymentRequest is the outbound payin-creation request. Amount is the
// exact decimal string included in the signature.
type GatewayPaymentRequest struct {
	OrderNo string
	Amount  string
	Extra   *string
}

// GatewayPayoutRequest is the outbound payout-dispatch request.
type GatewayPayoutRequest struct {
	OrderNo       string
	Amount        string
	AccountNumber string
	IFSC          string
	AccountHolder string
	BankName      string
}

// GatewayResult is the normalized upstream response.
type GatewayResult struct {
	Success    bool
	PaymentURL string
	Raw        string
}

// --- Service Ports (Business Logic) ---

// PaymentService is the transaction lifecycle manager: it owns every state
// transition of a payin or payout and the ledger adjustments tied to them.
type PaymentService interface {
	CreatePayin(ctx context.Context, req CreatePayinRequest) (*domain.Transaction, error)
	CreatePayout(ctx context.Context, req CreatePayoutRequest) (*domain.Transaction, error)
	ApprovePayout(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error)
	RejectPayout(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error)
}

// CreatePayinRequest holds validated input for payin creation. Amount carries
// the caller's exact decimal string alongside its parsed value so signatures
// byte-match.
type CreatePayinRequest struct {
	MerchantID      uuid.UUID
	Amount          decimal.Decimal
	AmountStr       string
	MerchantOrderNo string
	CallbackURL     string
	Extra           *string
	OrderPrefix     string // OrderPrefixPayin or OrderPrefixPaymentLink
}

// CreatePayoutRequest holds validated input for payout creation.
type CreatePayoutRequest struct {
	MerchantID      uuid.UUID
	Amount          decimal.Decimal
	AmountStr       string
	MerchantOrderNo string
	CallbackURL     string
	AccountNumber   string
	IFSC            string
	AccountHolder   string
	BankName        string
}

// CallbackService applies settlement notifications from the upstream
// processor exactly once.
type CallbackService interface {
	ProcessPayinCallback(ctx context.Context, cb PayinCallback) error
	ProcessPayoutCallback(ctx context.Context, cb PayoutCallback) error
}

// PayinCallback is the settlement notification for a payin.
type PayinCallback struct {
	OrderNo string
	Amount  string // Exact decimal string from the processor
	Status  string // "success" or "failed"
	Sign    string
	Raw     string // Full payload as received, persisted for audit
}

// PayoutCallback is the settlement notification for a payout.
type PayoutCallback struct {
	OrderNo string
	Amount  string
	Status  string
	Sign    string
	Raw     string
}

// Notifier raises administrative alerts when thresholds are crossed.
type Notifier interface {
	LargePayin(ctx context.Context, txn *domain.Transaction)
	LargePayout(ctx context.Context, txn *domain.Transaction)
	GatewayDegraded(ctx context.Context, reason string)
}

// MerchantNotifier forwards settlement outcomes to the merchant's callback
// URL, signed with the merchant's own secret. Delivery is best-effort and
// strictly after the ledger mutation is committed.
type MerchantNotifier interface {
	NotifySettlement(ctx context.Context, merchant *domain.Merchant, txn *domain.Transaction)
}

// PaymentLinkService manages shareable payment links.
type PaymentLinkService interface {
	CreateLink(ctx context.Context, req CreateLinkRequest) (*domain.PaymentLink, error)
	// PayLink creates the single payin transaction for the link and returns
	// it with the upstream payment URL populated.
	PayLink(ctx context.Context, code string) (*domain.Transaction, error)
}

// CreateLinkRequest holds validated input for payment link creation.
type CreateLinkRequest struct {
	MerchantID  uuid.UUID
	Amount      decimal.Decimal
	Description string
	ExpiresAt   *time.Time
}

// AuthService authenticates admin users.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations for the admin surface.
type TokenService interface {
	Generate(adminID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AdminID  uuid.UUID
	Username string
}

// MerchantManagementService is the admin surface over merchants: onboarding,
// fee schedule changes, and signing-key rotation.
type MerchantManagementService interface {
	CreateMerchant(ctx context.Context, name string, payinFeePercent, payoutFeePercent decimal.Decimal, callbackURL *string) (*domain.Merchant, error)
	UpdateFeeSchedule(ctx context.Context, merchantID uuid.UUID, payinFeePercent, payoutFeePercent decimal.Decimal) (*domain.Merchant, error)
	RotateKeys(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error)
}

// ReportingService serves the admin dashboard.
type ReportingService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, merchantID *uuid.UUID, period string) (*TransactionStats, error)
	LedgerSnapshot(ctx context.Context, merchantID uuid.UUID) (balance, frozen decimal.Decimal, err error)
}

// DedupCache is the Redis fast-path for duplicate merchant_order_no detection
// on payin creation. The database unique constraint remains authoritative.
type DedupCache interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string, ttl time.Duration) error
}
