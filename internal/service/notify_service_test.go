package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureHTTPClient struct {
	requests chan *http.Request
	status   int
}

func (c *captureHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.requests <- req
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(strings.NewReader("ok")),
	}, nil
}

func TestMerchantNotifyService_DeliversSignedPayload(t *testing.T) {
	client := &captureHTTPClient{requests: make(chan *http.Request, 1), status: http.StatusOK}
	sigSvc := NewDigestSignatureService()
	svc := NewMerchantNotifyService(sigSvc, client, zerolog.Nop())

	cb := "https://merchant.example/settlements"
	merchant := &domain.Merchant{ID: uuid.New(), APIKey: "api-secret", PayoutKey: "payout-secret", CallbackURL: &cb}
	txn := &domain.Transaction{
		ID:              uuid.New(),
		OrderNo:         "PI1",
		MerchantOrderNo: "ORD-1",
		MerchantID:      merchant.ID,
		Type:            domain.TransactionTypePayin,
		Status:          domain.TransactionStatusSuccess,
		Amount:          dec("500.00"),
	}

	svc.NotifySettlement(context.Background(), merchant, txn)

	var req *http.Request
	select {
	case req = <-client.requests:
	case <-time.After(2 * time.Second):
		t.Fatal("notification never delivered")
	}

	assert.Equal(t, cb, req.URL.String())
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var payload MerchantCallbackPayload
	require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
	assert.Equal(t, "PI1", payload.OrderNo)
	assert.Equal(t, "500", payload.Amount)
	assert.Equal(t, "SUCCESS", payload.Status)

	expected := sigSvc.Sign(domain.PayinSignParts(
		merchant.ID.String(), payload.Amount, "ORD-1", merchant.APIKey, cb,
	))
	assert.Equal(t, expected, payload.Sign)
}

func TestMerchantNotifyService_PayoutSignedWithPayoutKey(t *testing.T) {
	client := &captureHTTPClient{requests: make(chan *http.Request, 1), status: http.StatusOK}
	sigSvc := NewDigestSignatureService()
	svc := NewMerchantNotifyService(sigSvc, client, zerolog.Nop())

	cb := "https://merchant.example/settlements"
	merchant := &domain.Merchant{ID: uuid.New(), APIKey: "api-secret", PayoutKey: "payout-secret", CallbackURL: &cb}
	txn := &domain.Transaction{
		ID:            uuid.New(),
		OrderNo:       "PO1",
		MerchantID:    merchant.ID,
		Type:          domain.TransactionTypePayout,
		Status:        domain.TransactionStatusSuccess,
		Amount:        dec("400.00"),
		AccountNumber: "1234567890",
		IFSC:          "HDFC0001",
		AccountHolder: "Jane Roe",
		BankName:      "HDFC",
	}

	svc.NotifySettlement(context.Background(), merchant, txn)

	var req *http.Request
	select {
	case req = <-client.requests:
	case <-time.After(2 * time.Second):
		t.Fatal("notification never delivered")
	}

	var payload MerchantCallbackPayload
	require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))

	expected := sigSvc.Sign(domain.PayoutSignParts(
		txn.AccountNumber, payload.Amount, txn.BankName, cb,
		txn.IFSC, merchant.ID.String(), txn.AccountHolder, txn.OrderNo,
		merchant.PayoutKey,
	))
	assert.Equal(t, expected, payload.Sign)
}

func TestMerchantNotifyService_NoCallbackURL_NoDelivery(t *testing.T) {
	client := &captureHTTPClient{requests: make(chan *http.Request, 1), status: http.StatusOK}
	svc := NewMerchantNotifyService(NewDigestSignatureService(), client, zerolog.Nop())

	merchant := &domain.Merchant{ID: uuid.New()}
	txn := &domain.Transaction{ID: uuid.New(), OrderNo: "PI1", Amount: dec("1.00")}

	svc.NotifySettlement(context.Background(), merchant, txn)

	select {
	case <-client.requests:
		t.Fatal("no delivery expected without a callback URL")
	case <-time.After(50 * time.Millisecond):
	}
}
