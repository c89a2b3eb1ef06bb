package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hypersoftss/elopaygateway-sub002/config"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"

	"github.com/rs/zerolog"
)

// Client implements ports.GatewayClient against the upstream processor's
// HTTP API. All outbound requests are signed with the platform's master
// credentials, and the processor is handed this system's internal callback
// endpoints so settlements funnel back in.
type Client struct {
	cfg        config.GatewayConfig
	httpClient *http.Client
	sigSvc     ports.SignatureService
	log        zerolog.Logger
}

// NewClient creates a new upstream gateway client. The HTTP timeout comes
// from configuration; there are no retries here because a blind retry on
// payment creation risks a duplicate charge upstream.
func NewClient(cfg config.GatewayConfig, sigSvc ports.SignatureService, log zerolog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sigSvc:     sigSvc,
		log:        log,
	}
}

// createPaymentRequest is the JSON body for upstream payin creation.
type createPaymentRequest struct {
	MerchantID      string  `json:"merchant_id"`
	Amount          string  `json:"amount"`
	MerchantOrderNo string  `json:"merchant_order_no"`
	CallbackURL     string  `json:"callback_url"`
	Extra           *string `json:"extra,omitempty"`
	Sign            string  `json:"sign"`
}

// gatewayResponse is the normalized upstream response envelope.
type gatewayResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	PaymentURL string `json:"payment_url"`
}

// CreatePayment registers a payin upstream and returns the hosted payment URL.
func (c *Client) CreatePayment(ctx context.Context, req ports.GatewayPaymentRequest) (*ports.GatewayResult, error) {
	callbackURL := c.cfg.PayinCallbackURL()
	body := createPaymentRequest{
		MerchantID:      c.cfg.MerchantID,
		Amount:          req.Amount,
		MerchantOrderNo: req.OrderNo,
		CallbackURL:     callbackURL,
		Extra:           req.Extra,
		Sign: c.sigSvc.Sign(domain.PayinSignParts(
			c.cfg.MerchantID, req.Amount, req.OrderNo, c.cfg.APIKey, callbackURL,
		)),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/payment/create", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, req.OrderNo)
}

// CreatePayout dispatches an approved payout upstream. The upstream payout
// endpoint takes a form-encoded body, unlike payment creation.
func (c *Client) CreatePayout(ctx context.Context, req ports.GatewayPayoutRequest) (*ports.GatewayResult, error) {
	callbackURL := c.cfg.PayoutCallbackURL()
	form := url.Values{}
	form.Set("merchant_id", c.cfg.MerchantID)
	form.Set("transaction_id", req.OrderNo)
	form.Set("amount", req.Amount)
	form.Set("account_number", req.AccountNumber)
	form.Set("ifsc", req.IFSC)
	form.Set("name", req.AccountHolder)
	form.Set("bank_name", req.BankName)
	form.Set("callback_url", callbackURL)
	form.Set("sign", c.sigSvc.Sign(domain.PayoutSignParts(
		req.AccountNumber, req.Amount, req.BankName, callbackURL,
		req.IFSC, c.cfg.MerchantID, req.AccountHolder, req.OrderNo,
		c.cfg.PayoutKey,
	)))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/payout/create", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build payout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(httpReq, req.OrderNo)
}

// HealthCheck probes the upstream processor.
func (c *Client) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gateway health probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway health probe: status %d", resp.StatusCode)
	}
	return nil
}

// do executes the request and normalizes the upstream response.
func (c *Client) do(httpReq *http.Request, orderNo string) (*ports.GatewayResult, error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().
			Str("order_no", orderNo).
			Int("status", resp.StatusCode).
			Str("body", string(raw)).
			Msg("gateway returned non-2xx")
		return nil, fmt.Errorf("gateway status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed gatewayResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	return &ports.GatewayResult{
		Success:    strings.EqualFold(parsed.Status, "success"),
		PaymentURL: parsed.PaymentURL,
		Raw:        string(raw),
	}, nil
}

// HealthAdapter exposes the gateway probe as a named health check.
type HealthAdapter struct {
	client ports.GatewayClient
}

// NewHealthAdapter creates a health checker backed by the gateway client.
func NewHealthAdapter(client ports.GatewayClient) *HealthAdapter {
	return &HealthAdapter{client: client}
}

// Ping probes the upstream processor.
func (h *HealthAdapter) Ping(ctx context.Context) error {
	return h.client.HealthCheck(ctx)
}

// Name returns the check name.
func (h *HealthAdapter) Name() string {
	return "gateway"
}
