package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AlertService implements ports.Notifier and the admin-facing alert queries.
// Alert persistence is best-effort: a storage failure is logged, never
// propagated into the money path that raised the alert.
type AlertService struct {
	repo ports.AlertRepository
	log  zerolog.Logger
}

// NewAlertService creates a new AlertService.
func NewAlertService(repo ports.AlertRepository, log zerolog.Logger) *AlertService {
	return &AlertService{repo: repo, log: log}
}

// LargePayin records an alert for a payin at or above the configured threshold.
func (s *AlertService) LargePayin(ctx context.Context, txn *domain.Transaction) {
	s.record(ctx, domain.AlertKindLargePayin, txn,
		fmt.Sprintf("large payin of %s for merchant %s", txn.Amount.String(), txn.MerchantID))
}

// LargePayout records an alert for a payout at or above the configured threshold.
func (s *AlertService) LargePayout(ctx context.Context, txn *domain.Transaction) {
	s.record(ctx, domain.AlertKindLargePayout, txn,
		fmt.Sprintf("large payout of %s requested by merchant %s", txn.Amount.String(), txn.MerchantID))
}

// GatewayDegraded records an alert for upstream health-probe failures.
func (s *AlertService) GatewayDegraded(ctx context.Context, reason string) {
	alert := &domain.Alert{
		ID:        uuid.New(),
		Kind:      domain.AlertKindGatewayDegraded,
		Message:   "upstream gateway degraded: " + reason,
		CreatedAt: time.Now().UTC(),
	}
	s.persist(ctx, alert)
}

// List returns alerts for the admin dashboard.
func (s *AlertService) List(ctx context.Context, unacknowledgedOnly bool) ([]domain.Alert, error) {
	alerts, err := s.repo.List(ctx, unacknowledgedOnly)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list alerts: %w", err))
	}
	return alerts, nil
}

// Acknowledge marks an alert as handled.
func (s *AlertService) Acknowledge(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Acknowledge(ctx, id); err != nil {
		return apperror.InternalError(fmt.Errorf("acknowledge alert: %w", err))
	}
	return nil
}

func (s *AlertService) record(ctx context.Context, kind domain.AlertKind, txn *domain.Transaction, message string) {
	merchantID := txn.MerchantID
	orderNo := txn.OrderNo
	alert := &domain.Alert{
		ID:         uuid.New(),
		Kind:       kind,
		Message:    message,
		MerchantID: &merchantID,
		OrderNo:    &orderNo,
		CreatedAt:  time.Now().UTC(),
	}
	s.persist(ctx, alert)
}

func (s *AlertService) persist(ctx context.Context, alert *domain.Alert) {
	s.log.Warn().
		Str("kind", string(alert.Kind)).
		Str("message", alert.Message).
		Msg("admin alert raised")
	if err := s.repo.Create(ctx, alert); err != nil {
		s.log.Error().Err(err).Str("kind", string(alert.Kind)).Msg("failed to persist alert")
	}
}
