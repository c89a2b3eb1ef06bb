package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReportingServiceImpl implements ports.ReportingService for the admin
// dashboard. Reads only; all writes go through the lifecycle services.
type ReportingServiceImpl struct {
	txRepo       ports.TransactionRepository
	merchantRepo ports.MerchantRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(txRepo ports.TransactionRepository, merchantRepo ports.MerchantRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{txRepo: txRepo, merchantRepo: merchantRepo}
}

// ListTransactions returns a filtered, paginated transaction page with the
// total count for the filter.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

// GetStats aggregates transaction statistics, optionally scoped to one
// merchant and to a rolling period ("24h", "7d", "30d"; empty means all time).
func (s *ReportingServiceImpl) GetStats(ctx context.Context, merchantID *uuid.UUID, period string) (*ports.TransactionStats, error) {
	periodStart, err := periodStartUnix(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	stats, err := s.txRepo.GetStats(ctx, merchantID, periodStart)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get stats: %w", err))
	}
	return stats, nil
}

// LedgerSnapshot returns the merchant's current available and frozen balances.
func (s *ReportingServiceImpl) LedgerSnapshot(ctx context.Context, merchantID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperror.InternalError(fmt.Errorf("fetch merchant: %w", err))
	}
	if merchant == nil {
		return decimal.Zero, decimal.Zero, apperror.ErrNotFound("merchant")
	}
	return merchant.Balance, merchant.FrozenBalance, nil
}

// periodStartUnix translates a rolling-period label to a Unix lower bound.
func periodStartUnix(period string, now time.Time) (*int64, error) {
	var d time.Duration
	switch period {
	case "":
		return nil, nil
	case "24h":
		d = 24 * time.Hour
	case "7d":
		d = 7 * 24 * time.Hour
	case "30d":
		d = 30 * 24 * time.Hour
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown period %q", period))
	}
	start := now.Add(-d).Unix()
	return &start, nil
}
