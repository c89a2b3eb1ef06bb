package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MerchantStatus represents the state of a merchant account.
type MerchantStatus string

const (
	MerchantStatusActive      MerchantStatus = "ACTIVE"
	MerchantStatusSuspended   MerchantStatus = "SUSPENDED"
	MerchantStatusDeactivated MerchantStatus = "DEACTIVATED"
)

// Merchant represents a registered merchant, including its fee schedule and
// ledger account. Balance and FrozenBalance are mutated only through the
// conditional ledger operations on the repository, never assigned directly.
type Merchant struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	APIKey           string          `json:"-"` // Payin signing secret
	PayoutKey        string          `json:"-"` // Payout signing secret
	CallbackURL      *string         `json:"callback_url,omitempty"`
	PayinFeePercent  decimal.Decimal `json:"payin_fee_percent"`
	PayoutFeePercent decimal.Decimal `json:"payout_fee_percent"`
	Balance          decimal.Decimal `json:"balance"`        // Available funds
	FrozenBalance    decimal.Decimal `json:"frozen_balance"` // Held for pending payouts
	Status           MerchantStatus  `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsActive returns true if the merchant account is active.
func (m *Merchant) IsActive() bool {
	return m.Status == MerchantStatusActive
}

// PayinFee computes the fee withheld from a payin of the given amount,
// rounded to 2 decimal places.
func (m *Merchant) PayinFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(m.PayinFeePercent).Div(decimal.NewFromInt(100)).Round(2)
}

// PayoutFee computes the fee charged on top of a payout of the given amount,
// rounded to 2 decimal places. Payouts always use the payout fee schedule;
// the payin fee is never a fallback.
func (m *Merchant) PayoutFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(m.PayoutFeePercent).Div(decimal.NewFromInt(100)).Round(2)
}
