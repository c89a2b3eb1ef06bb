package handler

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/adapter/http/dto"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/apperror"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertAdminService is the admin surface over alerts.
type AlertAdminService interface {
	List(ctx context.Context, unacknowledgedOnly bool) ([]domain.Alert, error)
	Acknowledge(ctx context.Context, id uuid.UUID) error
}

// AdminHandler handles the JWT-guarded admin endpoints: payout decisions,
// merchant management, reporting, and alerts.
type AdminHandler struct {
	paymentSvc   ports.PaymentService
	reportingSvc ports.ReportingService
	merchantSvc  ports.MerchantManagementService
	alertSvc     AlertAdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	paymentSvc ports.PaymentService,
	reportingSvc ports.ReportingService,
	merchantSvc ports.MerchantManagementService,
	alertSvc AlertAdminService,
) *AdminHandler {
	return &AdminHandler{
		paymentSvc:   paymentSvc,
		reportingSvc: reportingSvc,
		merchantSvc:  merchantSvc,
		alertSvc:     alertSvc,
	}
}

// ApprovePayout handles POST /api/v1/admin/payouts/:id/approve.
func (h *AdminHandler) ApprovePayout(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	txn, err := h.paymentSvc.ApprovePayout(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// RejectPayout handles POST /api/v1/admin/payouts/:id/reject.
func (h *AdminHandler) RejectPayout(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	txn, err := h.paymentSvc.RejectPayout(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// ListTransactions handles GET /api/v1/admin/transactions.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.TransactionListParams{
		Page:     page,
		PageSize: pageSize,
	}

	if m := c.Query("merchant_id"); m != "" {
		id, err := uuid.Parse(m)
		if err != nil {
			response.Error(c, apperror.Validation("invalid merchant_id"))
			return
		}
		params.MerchantID = &id
	}
	if s := c.Query("status"); s != "" {
		status := domain.TransactionStatus(s)
		params.Status = &status
	}
	if t := c.Query("type"); t != "" {
		txType := domain.TransactionType(t)
		params.Type = &txType
	}
	if f := c.Query("from"); f != "" {
		if v, err := strconv.ParseInt(f, 10, 64); err == nil {
			params.From = &v
		}
	}
	if t := c.Query("to"); t != "" {
		if v, err := strconv.ParseInt(t, 10, 64); err == nil {
			params.To = &v
		}
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// GetStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	var merchantID *uuid.UUID
	if m := c.Query("merchant_id"); m != "" {
		id, err := uuid.Parse(m)
		if err != nil {
			response.Error(c, apperror.Validation("invalid merchant_id"))
			return
		}
		merchantID = &id
	}

	period := c.DefaultQuery("period", "")
	stats, err := h.reportingSvc.GetStats(c.Request.Context(), merchantID, period)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsResponse{
		TotalTransactions: stats.TotalTransactions,
		Successful:        stats.Successful,
		Failed:            stats.Failed,
		Pending:           stats.Pending,
		TotalPayinVolume:  stats.TotalPayinVolume.StringFixed(2),
		TotalPayoutVolume: stats.TotalPayoutVolume.StringFixed(2),
	})
}

// GetLedger handles GET /api/v1/admin/merchants/:id/ledger.
func (h *AdminHandler) GetLedger(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	balance, frozen, err := h.reportingSvc.LedgerSnapshot(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LedgerResponse{
		MerchantID:    id.String(),
		Balance:       balance.StringFixed(2),
		FrozenBalance: frozen.StringFixed(2),
	})
}

// CreateMerchant handles POST /api/v1/admin/merchants.
func (h *AdminHandler) CreateMerchant(c *gin.Context) {
	var req dto.CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	payinFee, err := decimal.NewFromString(req.PayinFeePercent)
	if err != nil {
		response.Error(c, apperror.Validation("invalid payin_fee_percent"))
		return
	}
	payoutFee, err := decimal.NewFromString(req.PayoutFeePercent)
	if err != nil {
		response.Error(c, apperror.Validation("invalid payout_fee_percent"))
		return
	}

	merchant, err := h.merchantSvc.CreateMerchant(c.Request.Context(), req.Name, payinFee, payoutFee, req.CallbackURL)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toMerchantResponse(merchant, true))
}

// UpdateFeeSchedule handles PUT /api/v1/admin/merchants/:id/fees.
// New fees apply to transactions created after the change only.
func (h *AdminHandler) UpdateFeeSchedule(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.FeeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payinFee, err := decimal.NewFromString(req.PayinFeePercent)
	if err != nil {
		response.Error(c, apperror.Validation("invalid payin_fee_percent"))
		return
	}
	payoutFee, err := decimal.NewFromString(req.PayoutFeePercent)
	if err != nil {
		response.Error(c, apperror.Validation("invalid payout_fee_percent"))
		return
	}

	merchant, err := h.merchantSvc.UpdateFeeSchedule(c.Request.Context(), id, payinFee, payoutFee)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toMerchantResponse(merchant, false))
}

// RotateKeys handles POST /api/v1/admin/merchants/:id/rotate-keys.
func (h *AdminHandler) RotateKeys(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	merchant, err := h.merchantSvc.RotateKeys(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toMerchantResponse(merchant, true))
}

// ListAlerts handles GET /api/v1/admin/alerts.
func (h *AdminHandler) ListAlerts(c *gin.Context) {
	unackedOnly := c.Query("unacknowledged") == "true"

	alerts, err := h.alertSvc.List(c.Request.Context(), unackedOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.AlertResponse, 0, len(alerts))
	for i := range alerts {
		items = append(items, toAlertResponse(&alerts[i]))
	}

	response.OK(c, items)
}

// AcknowledgeAlert handles POST /api/v1/admin/alerts/:id/ack.
func (h *AdminHandler) AcknowledgeAlert(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.alertSvc.Acknowledge(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "alert acknowledged"})
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(txn *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:              txn.ID.String(),
		OrderNo:         txn.OrderNo,
		MerchantOrderNo: txn.MerchantOrderNo,
		MerchantID:      txn.MerchantID.String(),
		Type:            string(txn.Type),
		Status:          string(txn.Status),
		Amount:          txn.Amount.StringFixed(2),
		Fee:             txn.Fee.StringFixed(2),
		NetAmount:       txn.NetAmount.StringFixed(2),
		PaymentURL:      txn.PaymentURL,
		CreatedAt:       txn.CreatedAt.Format(time.RFC3339),
	}
	if txn.Stage != nil {
		s := string(*txn.Stage)
		resp.Stage = &s
	}
	if txn.ProcessedAt != nil {
		s := txn.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	return resp
}

// toMerchantResponse converts domain.Merchant to DTO. Signing keys are
// included only on create and rotate responses.
func toMerchantResponse(m *domain.Merchant, withKeys bool) dto.MerchantResponse {
	resp := dto.MerchantResponse{
		ID:               m.ID.String(),
		Name:             m.Name,
		CallbackURL:      m.CallbackURL,
		PayinFeePercent:  m.PayinFeePercent.String(),
		PayoutFeePercent: m.PayoutFeePercent.String(),
		Balance:          m.Balance.StringFixed(2),
		FrozenBalance:    m.FrozenBalance.StringFixed(2),
		Status:           string(m.Status),
		CreatedAt:        m.CreatedAt.Format(time.RFC3339),
	}
	if withKeys {
		resp.APIKey = m.APIKey
		resp.PayoutKey = m.PayoutKey
	}
	return resp
}

func toAlertResponse(a *domain.Alert) dto.AlertResponse {
	resp := dto.AlertResponse{
		ID:        a.ID.String(),
		Kind:      string(a.Kind),
		Message:   a.Message,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
	if a.MerchantID != nil {
		s := a.MerchantID.String()
		resp.MerchantID = &s
	}
	resp.OrderNo = a.OrderNo
	if a.AcknowledgedAt != nil {
		s := a.AcknowledgedAt.Format(time.RFC3339)
		resp.AcknowledgedAt = &s
	}
	return resp
}
