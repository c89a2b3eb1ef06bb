package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"

	"github.com/google/uuid"
)

// AlertRepo implements ports.AlertRepository.
type AlertRepo struct {
	pool Pool
}

// NewAlertRepo creates a new AlertRepo.
func NewAlertRepo(pool Pool) *AlertRepo {
	return &AlertRepo{pool: pool}
}

// Create inserts a new alert.
func (r *AlertRepo) Create(ctx context.Context, alert *domain.Alert) error {
	query := `INSERT INTO alerts (id, kind, message, merchant_id, order_no, created_at, acknowledged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		alert.ID, alert.Kind, alert.Message, alert.MerchantID,
		alert.OrderNo, alert.CreatedAt, alert.AcknowledgedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// List fetches alerts, newest first.
func (r *AlertRepo) List(ctx context.Context, unacknowledgedOnly bool) ([]domain.Alert, error) {
	query := `SELECT id, kind, message, merchant_id, order_no, created_at, acknowledged_at FROM alerts`
	if unacknowledgedOnly {
		query += ` WHERE acknowledged_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.ID, &a.Kind, &a.Message, &a.MerchantID, &a.OrderNo, &a.CreatedAt, &a.AcknowledgedAt); err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}
	return alerts, nil
}

// Acknowledge marks an alert as handled.
func (r *AlertRepo) Acknowledge(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE alerts SET acknowledged_at = $1 WHERE id = $2 AND acknowledged_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("acknowledge alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert not found or already acknowledged: %s", id)
	}
	return nil
}
