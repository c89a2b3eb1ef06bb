package handler

import (
	"net/http"

	"github.com/hypersoftss/elopaygateway-sub002/internal/adapter/http/dto"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/apperror"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles the merchant-facing payin/payout endpoints. These
// endpoints authenticate by request signature, not by session, and answer in
// the flat wire shapes the merchant SDKs expect.
type PaymentHandler struct {
	paymentSvc   ports.PaymentService
	merchantRepo ports.MerchantRepository
	sigSvc       ports.SignatureService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService, merchantRepo ports.MerchantRepository, sigSvc ports.SignatureService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc, merchantRepo: merchantRepo, sigSvc: sigSvc}
}

// CreatePayin handles POST /api/v1/payin.
func (h *PaymentHandler) CreatePayin(c *gin.Context) {
	var req dto.PayinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GatewayError(c, apperror.Validation(err.Error()))
		return
	}

	merchant, ok := h.verifiedMerchant(c, req.MerchantID, func(m *domain.Merchant) []string {
		return domain.PayinSignParts(req.MerchantID, req.Amount, req.MerchantOrderNo, m.APIKey, req.CallbackURL)
	}, req.Sign)
	if !ok {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.GatewayError(c, apperror.ErrInvalidAmount())
		return
	}

	txn, err := h.paymentSvc.CreatePayin(c.Request.Context(), ports.CreatePayinRequest{
		MerchantID:      merchant.ID,
		Amount:          amount,
		AmountStr:       req.Amount,
		MerchantOrderNo: req.MerchantOrderNo,
		CallbackURL:     req.CallbackURL,
		Extra:           req.Extra,
		OrderPrefix:     ports.OrderPrefixPayin,
	})
	if err != nil {
		response.GatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PayinResponse{
		OrderNo:    txn.OrderNo,
		PaymentURL: txn.PaymentURL,
	})
}

// CreatePayout handles POST /api/v1/payout.
func (h *PaymentHandler) CreatePayout(c *gin.Context) {
	var req dto.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GatewayError(c, apperror.Validation(err.Error()))
		return
	}

	merchant, ok := h.verifiedMerchant(c, req.MerchantID, func(m *domain.Merchant) []string {
		return domain.PayoutSignParts(
			req.AccountNumber, req.Amount, req.BankName, req.CallbackURL,
			req.IFSC, req.MerchantID, req.Name, req.TransactionID, m.PayoutKey,
		)
	}, req.Sign)
	if !ok {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.GatewayError(c, apperror.ErrInvalidAmount())
		return
	}

	txn, err := h.paymentSvc.CreatePayout(c.Request.Context(), ports.CreatePayoutRequest{
		MerchantID:      merchant.ID,
		Amount:          amount,
		AmountStr:       req.Amount,
		MerchantOrderNo: req.TransactionID,
		CallbackURL:     req.CallbackURL,
		AccountNumber:   req.AccountNumber,
		IFSC:            req.IFSC,
		AccountHolder:   req.Name,
		BankName:        req.BankName,
	})
	if err != nil {
		response.GatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PayoutResponse{
		OrderNo: txn.OrderNo,
		Status:  string(txn.Status),
	})
}

// verifiedMerchant looks up the merchant and checks the request signature.
// On failure it writes the error response and returns ok=false.
func (h *PaymentHandler) verifiedMerchant(c *gin.Context, merchantID string, parts func(*domain.Merchant) []string, sign string) (*domain.Merchant, bool) {
	id, err := uuid.Parse(merchantID)
	if err != nil {
		response.GatewayError(c, apperror.Validation("invalid merchant_id"))
		return nil, false
	}

	merchant, err := h.merchantRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.GatewayError(c, apperror.InternalError(err))
		return nil, false
	}
	if merchant == nil {
		response.GatewayError(c, apperror.ErrNotFound("merchant"))
		return nil, false
	}

	if !h.sigSvc.Verify(parts(merchant), sign) {
		response.GatewayError(c, apperror.ErrInvalidSignature())
		return nil, false
	}

	return merchant, true
}
