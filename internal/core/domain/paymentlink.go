package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentLink binds an amount and description to a shareable code. Paying a
// link creates exactly one payin transaction; a link is single-use.
type PaymentLink struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	MerchantID  uuid.UUID       `json:"merchant_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	PaidOrderNo *string         `json:"paid_order_no,omitempty"` // Order created when the link was paid
	CreatedAt   time.Time       `json:"created_at"`
}

// IsExpired reports whether the link has passed its expiry.
func (l *PaymentLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// IsPaid reports whether the link has already produced a payin.
func (l *PaymentLink) IsPaid() bool {
	return l.PaidOrderNo != nil
}
