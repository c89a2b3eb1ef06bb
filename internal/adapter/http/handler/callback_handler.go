package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hypersoftss/elopaygateway-sub002/internal/adapter/http/dto"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/apperror"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

// CallbackHandler receives the upstream processor's settlement notifications.
// It must answer quickly and idempotently; a non-2xx answer makes the
// processor redeliver, which the exactly-once check downstream absorbs.
type CallbackHandler struct {
	callbackSvc ports.CallbackService
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(callbackSvc ports.CallbackService) *CallbackHandler {
	return &CallbackHandler{callbackSvc: callbackSvc}
}

// PayinCallback handles POST /api/v1/callback/payin.
func (h *CallbackHandler) PayinCallback(c *gin.Context) {
	cb, raw, ok := h.parse(c)
	if !ok {
		return
	}

	err := h.callbackSvc.ProcessPayinCallback(c.Request.Context(), ports.PayinCallback{
		OrderNo: cb.OrderNo,
		Amount:  cb.Amount,
		Status:  cb.Status,
		Sign:    cb.Sign,
		Raw:     raw,
	})
	if err != nil {
		response.GatewayError(c, err)
		return
	}

	c.String(http.StatusOK, "success")
}

// PayoutCallback handles POST /api/v1/callback/payout.
func (h *CallbackHandler) PayoutCallback(c *gin.Context) {
	cb, raw, ok := h.parse(c)
	if !ok {
		return
	}

	err := h.callbackSvc.ProcessPayoutCallback(c.Request.Context(), ports.PayoutCallback{
		OrderNo: cb.OrderNo,
		Amount:  cb.Amount,
		Status:  cb.Status,
		Sign:    cb.Sign,
		Raw:     raw,
	})
	if err != nil {
		response.GatewayError(c, err)
		return
	}

	c.String(http.StatusOK, "success")
}

// parse reads the raw body once so the exact payload can be persisted for
// audit, then decodes the fields the processor signs.
func (h *CallbackHandler) parse(c *gin.Context) (*dto.SettlementCallback, string, bool) {
	body, err := c.GetRawData()
	if err != nil {
		response.GatewayError(c, apperror.Validation("cannot read request body"))
		return nil, "", false
	}

	var cb dto.SettlementCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		response.GatewayError(c, apperror.Validation("malformed callback payload"))
		return nil, "", false
	}
	if cb.OrderNo == "" || cb.Amount == "" || cb.Status == "" || cb.Sign == "" {
		response.GatewayError(c, apperror.Validation("missing callback field"))
		return nil, "", false
	}

	return &cb, string(body), true
}
