package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentLinkRepo implements ports.PaymentLinkRepository.
type PaymentLinkRepo struct {
	pool Pool
}

// NewPaymentLinkRepo creates a new PaymentLinkRepo.
func NewPaymentLinkRepo(pool Pool) *PaymentLinkRepo {
	return &PaymentLinkRepo{pool: pool}
}

// Create inserts a new payment link.
func (r *PaymentLinkRepo) Create(ctx context.Context, link *domain.PaymentLink) error {
	query := `INSERT INTO payment_links (id, code, merchant_id, amount, description, expires_at, paid_order_no, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		link.ID, link.Code, link.MerchantID, link.Amount,
		link.Description, link.ExpiresAt, link.PaidOrderNo, link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment link: %w", err)
	}
	return nil
}

// GetByCode fetches a payment link by its shareable code.
func (r *PaymentLinkRepo) GetByCode(ctx context.Context, code string) (*domain.PaymentLink, error) {
	query := `SELECT id, code, merchant_id, amount, description, expires_at, paid_order_no, created_at
		FROM payment_links WHERE code = $1`

	var l domain.PaymentLink
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&l.ID, &l.Code, &l.MerchantID, &l.Amount,
		&l.Description, &l.ExpiresAt, &l.PaidOrderNo, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment link: %w", err)
	}
	return &l, nil
}

// MarkPaid binds the payin order to the link, guarded by the link being
// unpaid. Returns false when a concurrent payment already claimed it.
func (r *PaymentLinkRepo) MarkPaid(ctx context.Context, id uuid.UUID, orderNo string) (bool, error) {
	query := `UPDATE payment_links SET paid_order_no = $1 WHERE id = $2 AND paid_order_no IS NULL`

	tag, err := r.pool.Exec(ctx, query, orderNo, id)
	if err != nil {
		return false, fmt.Errorf("mark payment link paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
