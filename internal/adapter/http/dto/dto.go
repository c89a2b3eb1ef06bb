package dto

// PayinRequest is the merchant-facing request body for payin creation. The
// sign covers [merchant_id, amount, merchant_order_no, api_key, callback_url]
// with amount as the exact string received here.
type PayinRequest struct {
	MerchantID      string  `json:"merchant_id" binding:"required,uuid"`
	Amount          string  `json:"amount" binding:"required,decimal_amount"`
	MerchantOrderNo string  `json:"merchant_order_no" binding:"required,max=100,safe_id"`
	CallbackURL     string  `json:"callback_url" binding:"required,safe_url"`
	Extra           *string `json:"extra,omitempty"`
	Sign            string  `json:"sign" binding:"required,len=32"`
}

// PayoutRequest is the merchant-facing request body for payout creation.
// transaction_id is the merchant's correlation id for this payout.
type PayoutRequest struct {
	MerchantID    string `json:"merchant_id" binding:"required,uuid"`
	Amount        string `json:"amount" binding:"required,decimal_amount"`
	TransactionID string `json:"transaction_id" binding:"required,max=100,safe_id"`
	AccountNumber string `json:"account_number" binding:"required,max=50"`
	IFSC          string `json:"ifsc" binding:"required,max=20"`
	Name          string `json:"name" binding:"required,max=100"`
	BankName      string `json:"bank_name" binding:"required,max=100"`
	CallbackURL   string `json:"callback_url" binding:"required,safe_url"`
	Sign          string `json:"sign" binding:"required,len=32"`
}

// SettlementCallback is the upstream processor's settlement notification for
// both payins and payouts.
type SettlementCallback struct {
	OrderNo string `json:"order_no" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Sign    string `json:"sign" binding:"required"`
}

// PayinResponse is the raw merchant-facing body on successful payin creation.
// The merchant SDKs expect this flat shape, not the admin envelope.
type PayinResponse struct {
	OrderNo    string  `json:"order_no"`
	PaymentURL *string `json:"payment_url"`
}

// PayoutResponse is the raw merchant-facing body on successful payout creation.
type PayoutResponse struct {
	OrderNo string `json:"order_no"`
	Status  string `json:"status"`
}

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateMerchantRequest is the admin request body for merchant onboarding.
type CreateMerchantRequest struct {
	Name             string  `json:"name" binding:"required,min=1,max=100"`
	PayinFeePercent  string  `json:"payin_fee_percent" binding:"required,decimal_percent"`
	PayoutFeePercent string  `json:"payout_fee_percent" binding:"required,decimal_percent"`
	CallbackURL      *string `json:"callback_url,omitempty" binding:"omitempty,safe_url"`
}

// FeeScheduleRequest is the admin request body for fee schedule changes.
type FeeScheduleRequest struct {
	PayinFeePercent  string `json:"payin_fee_percent" binding:"required,decimal_percent"`
	PayoutFeePercent string `json:"payout_fee_percent" binding:"required,decimal_percent"`
}

// MerchantResponse is the admin-facing merchant representation. Signing keys
// appear only here, on the create and rotate responses.
type MerchantResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	APIKey           string  `json:"api_key,omitempty"`
	PayoutKey        string  `json:"payout_key,omitempty"`
	CallbackURL      *string `json:"callback_url,omitempty"`
	PayinFeePercent  string  `json:"payin_fee_percent"`
	PayoutFeePercent string  `json:"payout_fee_percent"`
	Balance          string  `json:"balance"`
	FrozenBalance    string  `json:"frozen_balance"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
}

// CreateLinkRequest is the admin request body for payment link creation.
type CreateLinkRequest struct {
	MerchantID  string `json:"merchant_id" binding:"required,uuid"`
	Amount      string `json:"amount" binding:"required,decimal_amount"`
	Description string `json:"description" binding:"max=255"`
	ExpiresAt   *int64 `json:"expires_at,omitempty"` // Unix timestamp
}

// PaymentLinkResponse is the response body for payment link creation.
type PaymentLinkResponse struct {
	Code      string `json:"code"`
	Amount    string `json:"amount"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
}

// TransactionResponse is the admin-facing transaction representation.
type TransactionResponse struct {
	ID              string  `json:"id"`
	OrderNo         string  `json:"order_no"`
	MerchantOrderNo string  `json:"merchant_order_no,omitempty"`
	MerchantID      string  `json:"merchant_id"`
	Type            string  `json:"type"`
	Status          string  `json:"status"`
	Stage           *string `json:"stage,omitempty"`
	Amount          string  `json:"amount"`
	Fee             string  `json:"fee"`
	NetAmount       string  `json:"net_amount"`
	PaymentURL      *string `json:"payment_url,omitempty"`
	CreatedAt       string  `json:"created_at"`
	ProcessedAt     *string `json:"processed_at,omitempty"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// StatsResponse is the response for dashboard statistics.
type StatsResponse struct {
	TotalTransactions int64  `json:"total_transactions"`
	Successful        int64  `json:"successful"`
	Failed            int64  `json:"failed"`
	Pending           int64  `json:"pending"`
	TotalPayinVolume  string `json:"total_payin_volume"`
	TotalPayoutVolume string `json:"total_payout_volume"`
}

// LedgerResponse is the per-merchant balance snapshot.
type LedgerResponse struct {
	MerchantID    string `json:"merchant_id"`
	Balance       string `json:"balance"`
	FrozenBalance string `json:"frozen_balance"`
}

// AlertResponse is the admin-facing alert representation.
type AlertResponse struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	Message        string  `json:"message"`
	MerchantID     *string `json:"merchant_id,omitempty"`
	OrderNo        *string `json:"order_no,omitempty"`
	CreatedAt      string  `json:"created_at"`
	AcknowledgedAt *string `json:"acknowledged_at,omitempty"`
}
