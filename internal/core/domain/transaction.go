package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of money movement.
type TransactionType string

const (
	TransactionTypePayin  TransactionType = "PAYIN"
	TransactionTypePayout TransactionType = "PAYOUT"
)

// TransactionStatus represents the lifecycle state of a transaction.
// SUCCESS and FAILED are terminal; no transition leaves them.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// PayoutStage is the internal sub-state of a pending payout: CREATED means
// frozen and awaiting an admin decision, DISPATCHED means the payout has been
// sent upstream and only a settlement callback can finish it.
type PayoutStage string

const (
	PayoutStageCreated    PayoutStage = "CREATED"
	PayoutStageDispatched PayoutStage = "DISPATCHED"
)

// PayoutOutcome selects how a payout freeze is resolved.
type PayoutOutcome string

const (
	PayoutOutcomeConfirmed PayoutOutcome = "CONFIRMED" // funds leave the ledger
	PayoutOutcomeRejected  PayoutOutcome = "REJECTED"  // funds return to available
)

// Transaction represents one payin or one payout through its whole lifecycle.
type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	OrderNo         string            `json:"order_no"`                    // System-generated, globally unique
	MerchantOrderNo string            `json:"merchant_order_no,omitempty"` // Merchant correlation id
	MerchantID      uuid.UUID         `json:"merchant_id"`
	Type            TransactionType   `json:"type"`
	Status          TransactionStatus `json:"status"`
	Stage           *PayoutStage      `json:"stage,omitempty"` // Payout only
	Amount          decimal.Decimal   `json:"amount"`
	Fee             decimal.Decimal   `json:"fee"`
	NetAmount       decimal.Decimal   `json:"net_amount"` // amount-fee credited (payin) or amount+fee debited (payout)
	PaymentURL      *string           `json:"payment_url,omitempty"`
	CallbackURL     string            `json:"callback_url"` // Merchant's notification URL
	Extra           *string           `json:"extra,omitempty"`

	// Payout destination fields.
	AccountNumber string `json:"account_number,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	AccountHolder string `json:"account_holder,omitempty"`
	BankName      string `json:"bank_name,omitempty"`

	CallbackData *string    `json:"-"` // Last raw settlement payload, for audit
	CreatedAt    time.Time  `json:"created_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}

// IsPayout returns true for payout transactions.
func (t *Transaction) IsPayout() bool {
	return t.Type == TransactionTypePayout
}

// HeldAmount is the total moved into the frozen bucket for a payout.
func (t *Transaction) HeldAmount() decimal.Decimal {
	return t.Amount.Add(t.Fee)
}

// AwaitingApproval reports whether an admin may still approve or reject.
func (t *Transaction) AwaitingApproval() bool {
	return t.Type == TransactionTypePayout &&
		t.Status == TransactionStatusPending &&
		t.Stage != nil && *t.Stage == PayoutStageCreated
}
