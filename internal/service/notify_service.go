package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"

	"github.com/rs/zerolog"
)

// notifyRetryIntervals paces merchant notification redelivery attempts.
var notifyRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	5 * time.Minute,
}

// MerchantCallbackPayload is the JSON body POSTed to the merchant's callback
// URL. Sign covers the scheme-specific field order with the merchant's own
// secret so the merchant SDK can verify it.
type MerchantCallbackPayload struct {
	MerchantID      string `json:"merchant_id"`
	OrderNo         string `json:"order_no"`
	MerchantOrderNo string `json:"merchant_order_no,omitempty"`
	Amount          string `json:"amount"`
	Status          string `json:"status"`
	Sign            string `json:"sign"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// MerchantNotifyService implements ports.MerchantNotifier. Delivery is
// fire-and-forget with bounded retries; it runs strictly after the ledger
// mutation committed and can never roll it back.
type MerchantNotifyService struct {
	sigSvc     ports.SignatureService
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewMerchantNotifyService creates a new MerchantNotifyService.
func NewMerchantNotifyService(sigSvc ports.SignatureService, httpClient HTTPClient, log zerolog.Logger) *MerchantNotifyService {
	return &MerchantNotifyService{sigSvc: sigSvc, httpClient: httpClient, log: log}
}

// NotifySettlement signs and delivers the settlement outcome to the
// merchant's callback URL in the background.
func (s *MerchantNotifyService) NotifySettlement(_ context.Context, merchant *domain.Merchant, txn *domain.Transaction) {
	if merchant.CallbackURL == nil || *merchant.CallbackURL == "" {
		return
	}

	amount := txn.Amount.String()
	var parts []string
	if txn.IsPayout() {
		parts = domain.PayoutSignParts(
			txn.AccountNumber, amount, txn.BankName, *merchant.CallbackURL,
			txn.IFSC, merchant.ID.String(), txn.AccountHolder, txn.OrderNo,
			merchant.PayoutKey,
		)
	} else {
		parts = domain.PayinSignParts(
			merchant.ID.String(), amount, txn.MerchantOrderNo,
			merchant.APIKey, *merchant.CallbackURL,
		)
	}

	payload := MerchantCallbackPayload{
		MerchantID:      merchant.ID.String(),
		OrderNo:         txn.OrderNo,
		MerchantOrderNo: txn.MerchantOrderNo,
		Amount:          amount,
		Status:          string(txn.Status),
		Sign:            s.sigSvc.Sign(parts),
	}

	go s.deliverWithRetries(*merchant.CallbackURL, payload)
}

// deliverWithRetries attempts delivery until a 2xx response or exhaustion.
func (s *MerchantNotifyService) deliverWithRetries(url string, payload MerchantCallbackPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("order_no", payload.OrderNo).Msg("merchant notify: failed to marshal payload")
		return
	}

	for attempt := 0; attempt <= len(notifyRetryIntervals); attempt++ {
		if attempt > 0 {
			time.Sleep(notifyRetryIntervals[attempt-1])
		}

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			s.log.Error().Err(err).Str("order_no", payload.OrderNo).Msg("merchant notify: failed to build request")
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.log.Warn().Err(err).Str("order_no", payload.OrderNo).Int("attempt", attempt+1).Msg("merchant notify: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			s.log.Info().Str("order_no", payload.OrderNo).Int("attempt", attempt+1).Msg("merchant notify: delivered")
			return
		}
		s.log.Warn().Str("order_no", payload.OrderNo).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("merchant notify: non-2xx response")
	}

	s.log.Error().Str("order_no", payload.OrderNo).Str("url", url).Msg("merchant notify: all attempts exhausted")
}
