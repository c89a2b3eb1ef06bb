package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMerchant_IsActive(t *testing.T) {
	tests := []struct {
		name   string
		status MerchantStatus
		want   bool
	}{
		{"active", MerchantStatusActive, true},
		{"suspended", MerchantStatusSuspended, false},
		{"deactivated", MerchantStatusDeactivated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Merchant{Status: tt.status}
			assert.Equal(t, tt.want, m.IsActive())
		})
	}
}

func TestMerchant_PayinFee(t *testing.T) {
	m := &Merchant{PayinFeePercent: dec("9")}
	assert.True(t, m.PayinFee(dec("500.00")).Equal(dec("45.00")))
}

func TestMerchant_PayoutFee(t *testing.T) {
	m := &Merchant{PayoutFeePercent: dec("4")}
	assert.True(t, m.PayoutFee(dec("400")).Equal(dec("16.00")))
}

func TestMerchant_FeeRounding(t *testing.T) {
	m := &Merchant{PayinFeePercent: dec("2.5")}
	// 33.33 * 2.5% = 0.83325 -> 0.83
	assert.True(t, m.PayinFee(dec("33.33")).Equal(dec("0.83")))
}

func TestTransaction_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status TransactionStatus
		want   bool
	}{
		{"pending", TransactionStatusPending, false},
		{"success", TransactionStatusSuccess, true},
		{"failed", TransactionStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Status: tt.status}
			assert.Equal(t, tt.want, tx.IsTerminal())
		})
	}
}

func TestTransaction_HeldAmount(t *testing.T) {
	tx := &Transaction{Amount: dec("400"), Fee: dec("16")}
	assert.True(t, tx.HeldAmount().Equal(dec("416")))
}

func TestTransaction_AwaitingApproval(t *testing.T) {
	created := PayoutStageCreated
	dispatched := PayoutStageDispatched

	tests := []struct {
		name string
		tx   Transaction
		want bool
	}{
		{"pending created payout", Transaction{Type: TransactionTypePayout, Status: TransactionStatusPending, Stage: &created}, true},
		{"dispatched payout", Transaction{Type: TransactionTypePayout, Status: TransactionStatusPending, Stage: &dispatched}, false},
		{"failed payout", Transaction{Type: TransactionTypePayout, Status: TransactionStatusFailed, Stage: &created}, false},
		{"payin", Transaction{Type: TransactionTypePayin, Status: TransactionStatusPending}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tx.AwaitingApproval())
		})
	}
}

func TestPaymentLink_IsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&PaymentLink{}).IsExpired(now), "no expiry means never expired")
	assert.True(t, (&PaymentLink{ExpiresAt: &past}).IsExpired(now))
	assert.False(t, (&PaymentLink{ExpiresAt: &future}).IsExpired(now))
}

func TestPaymentLink_IsPaid(t *testing.T) {
	orderNo := "PL17080920001234"
	assert.False(t, (&PaymentLink{}).IsPaid())
	assert.True(t, (&PaymentLink{PaidOrderNo: &orderNo}).IsPaid())
}

func TestStatusConstants(t *testing.T) {
	assert.Equal(t, TransactionStatus("PENDING"), TransactionStatusPending)
	assert.Equal(t, TransactionStatus("SUCCESS"), TransactionStatusSuccess)
	assert.Equal(t, TransactionStatus("FAILED"), TransactionStatusFailed)
	assert.Equal(t, TransactionType("PAYIN"), TransactionTypePayin)
	assert.Equal(t, TransactionType("PAYOUT"), TransactionTypePayout)
	assert.Equal(t, PayoutStage("CREATED"), PayoutStageCreated)
	assert.Equal(t, PayoutStage("DISPATCHED"), PayoutStageDispatched)
}
