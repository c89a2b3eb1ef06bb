package handler

import (
	"net/http"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/adapter/http/dto"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/apperror"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentLinkHandler handles payment link creation (admin) and payment
// (public, by code).
type PaymentLinkHandler struct {
	linkSvc ports.PaymentLinkService
}

// NewPaymentLinkHandler creates a new PaymentLinkHandler.
func NewPaymentLinkHandler(linkSvc ports.PaymentLinkService) *PaymentLinkHandler {
	return &PaymentLinkHandler{linkSvc: linkSvc}
}

// CreateLink handles POST /api/v1/admin/links.
func (h *PaymentLinkHandler) CreateLink(c *gin.Context) {
	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchantID, err := uuid.Parse(req.MerchantID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid merchant_id"))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		t := time.Unix(*req.ExpiresAt, 0)
		expiresAt = &t
	}

	link, err := h.linkSvc.CreateLink(c.Request.Context(), ports.CreateLinkRequest{
		MerchantID:  merchantID,
		Amount:      amount,
		Description: req.Description,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.PaymentLinkResponse{
		Code:   link.Code,
		Amount: link.Amount.StringFixed(2),
	}
	if link.ExpiresAt != nil {
		e := link.ExpiresAt.Unix()
		resp.ExpiresAt = &e
	}
	response.Created(c, resp)
}

// PayLink handles POST /api/v1/links/:code/pay. It answers in the flat wire
// shape because the payer follows the link outside any authenticated session.
func (h *PaymentLinkHandler) PayLink(c *gin.Context) {
	code := c.Param("code")

	txn, err := h.linkSvc.PayLink(c.Request.Context(), code)
	if err != nil {
		response.GatewayError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PayinResponse{
		OrderNo:    txn.OrderNo,
		PaymentURL: txn.PaymentURL,
	})
}
