package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/config"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.GatewayConfig {
	return config.GatewayConfig{
		BaseURL:         baseURL,
		MerchantID:      "platform-1",
		APIKey:          "master-api-key",
		PayoutKey:       "master-payout-key",
		CallbackBaseURL: "https://gw.example",
		Timeout:         2 * time.Second,
	}
}

func TestClient_CreatePayment_SignsAndParses(t *testing.T) {
	sigSvc := service.NewDigestSignatureService()

	var received createPaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/payment/create", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","payment_url":"https://pay.upstream.example/p/abc"}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), sigSvc, zerolog.Nop())

	result, err := client.CreatePayment(context.Background(), ports.GatewayPaymentRequest{
		OrderNo: "PI1",
		Amount:  "100.50",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "https://pay.upstream.example/p/abc", result.PaymentURL)

	assert.Equal(t, "platform-1", received.MerchantID)
	assert.Equal(t, "100.50", received.Amount)
	assert.Equal(t, "PI1", received.MerchantOrderNo)
	assert.Equal(t, "https://gw.example/api/v1/callback/payin", received.CallbackURL)

	expected := sigSvc.Sign(domain.PayinSignParts(
		"platform-1", "100.50", "PI1", "master-api-key", "https://gw.example/api/v1/callback/payin",
	))
	assert.Equal(t, expected, received.Sign)
}

func TestClient_CreatePayout_FormEncodedAndSigned(t *testing.T) {
	sigSvc := service.NewDigestSignatureService()

	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payout/create", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), sigSvc, zerolog.Nop())

	result, err := client.CreatePayout(context.Background(), ports.GatewayPayoutRequest{
		OrderNo:       "PO1",
		Amount:        "400",
		AccountNumber: "1234567890",
		IFSC:          "HDFC0001",
		AccountHolder: "Jane Roe",
		BankName:      "HDFC",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)

	assert.Equal(t, "platform-1", form["merchant_id"])
	assert.Equal(t, "PO1", form["transaction_id"])
	assert.Equal(t, "400", form["amount"])
	assert.Equal(t, "https://gw.example/api/v1/callback/payout", form["callback_url"])

	expected := sigSvc.Sign(domain.PayoutSignParts(
		"1234567890", "400", "HDFC", "https://gw.example/api/v1/callback/payout",
		"HDFC0001", "platform-1", "Jane Roe", "PO1", "master-payout-key",
	))
	assert.Equal(t, expected, form["sign"])
}

func TestClient_CreatePayment_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"upstream overloaded"}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), service.NewDigestSignatureService(), zerolog.Nop())

	_, err := client.CreatePayment(context.Background(), ports.GatewayPaymentRequest{OrderNo: "PI1", Amount: "1.00"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_CreatePayment_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed on purpose

	client := NewClient(testConfig(srv.URL), service.NewDigestSignatureService(), zerolog.Nop())

	_, err := client.CreatePayment(context.Background(), ports.GatewayPaymentRequest{OrderNo: "PI1", Amount: "1.00"})
	assert.Error(t, err)
}

func TestClient_HealthCheck(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), service.NewDigestSignatureService(), zerolog.Nop())

	require.NoError(t, client.HealthCheck(context.Background()))

	healthy = false
	assert.Error(t, client.HealthCheck(context.Background()))

	adapter := NewHealthAdapter(client)
	assert.Equal(t, "gateway", adapter.Name())
	assert.Error(t, adapter.Ping(context.Background()))
}
