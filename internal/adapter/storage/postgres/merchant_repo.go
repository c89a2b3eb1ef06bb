package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MerchantRepo implements ports.MerchantRepository. The ledger methods are
// each a single conditional UPDATE so two balance buckets can never be
// mutated from a stale in-memory snapshot.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

const merchantColumns = `id, name, api_key, payout_key, callback_url,
	payin_fee_percent, payout_fee_percent, balance, frozen_balance, status, created_at, updated_at`

// Create inserts a new merchant.
func (r *MerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	query := `INSERT INTO merchants (id, name, api_key, payout_key, callback_url,
		payin_fee_percent, payout_fee_percent, balance, frozen_balance, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.Name, m.APIKey, m.PayoutKey, m.CallbackURL,
		m.PayinFeePercent, m.PayoutFeePercent, m.Balance, m.FrozenBalance,
		m.Status, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

// GetByID fetches a merchant by UUID. Returns nil when not found.
func (r *MerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	query := fmt.Sprintf(`SELECT %s FROM merchants WHERE id = $1`, merchantColumns)
	return r.scanMerchant(r.pool.QueryRow(ctx, query, id))
}

// List fetches all merchants ordered by creation time.
func (r *MerchantRepo) List(ctx context.Context) ([]domain.Merchant, error) {
	query := fmt.Sprintf(`SELECT %s FROM merchants ORDER BY created_at DESC`, merchantColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	var merchants []domain.Merchant
	for rows.Next() {
		var m domain.Merchant
		if err := rows.Scan(
			&m.ID, &m.Name, &m.APIKey, &m.PayoutKey, &m.CallbackURL,
			&m.PayinFeePercent, &m.PayoutFeePercent, &m.Balance, &m.FrozenBalance,
			&m.Status, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan merchant row: %w", err)
		}
		merchants = append(merchants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merchant rows: %w", err)
	}
	return merchants, nil
}

// Update persists merchant profile fields. Balance columns are deliberately
// excluded; they move only through the ledger operations below.
func (r *MerchantRepo) Update(ctx context.Context, m *domain.Merchant) error {
	query := `UPDATE merchants SET name = $1, api_key = $2, payout_key = $3, callback_url = $4,
		payin_fee_percent = $5, payout_fee_percent = $6, status = $7, updated_at = $8
		WHERE id = $9`

	tag, err := r.pool.Exec(ctx, query,
		m.Name, m.APIKey, m.PayoutKey, m.CallbackURL,
		m.PayinFeePercent, m.PayoutFeePercent, m.Status, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update merchant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("merchant not found: %s", m.ID)
	}
	return nil
}

// CreditAvailable adds amount to the merchant's available balance.
func (r *MerchantRepo) CreditAvailable(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, amount decimal.Decimal) error {
	query := `UPDATE merchants SET balance = balance + $1, updated_at = now() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, amount, merchantID)
	if err != nil {
		return fmt.Errorf("credit available balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("merchant not found: %s", merchantID)
	}
	return nil
}

// FreezeForPayout moves total from available to frozen, guarded by the
// available balance covering it. Returns false and changes nothing when the
// guard fails; the balance check and the move are one atomic statement.
func (r *MerchantRepo) FreezeForPayout(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, total decimal.Decimal) (bool, error) {
	query := `UPDATE merchants
		SET balance = balance - $1, frozen_balance = frozen_balance + $1, updated_at = now()
		WHERE id = $2 AND balance >= $1`

	tag, err := tx.Exec(ctx, query, total, merchantID)
	if err != nil {
		return false, fmt.Errorf("freeze for payout: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ResolveFreeze releases total from the frozen bucket. A rejected outcome
// returns the released funds to available; a confirmed outcome lets them
// leave the ledger. frozen_balance clamps at zero instead of going negative,
// and the returned flag reports whether clamping occurred.
func (r *MerchantRepo) ResolveFreeze(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, total decimal.Decimal, outcome domain.PayoutOutcome) (bool, error) {
	refund := outcome == domain.PayoutOutcomeRejected

	// SET expressions see the pre-update row, so LEAST(frozen_balance, $1)
	// is the amount actually released; the CTE keeps the prior frozen value
	// visible in RETURNING for clamp detection.
	query := `WITH prev AS (
			SELECT frozen_balance FROM merchants WHERE id = $2 FOR UPDATE
		)
		UPDATE merchants m
		SET frozen_balance = GREATEST(m.frozen_balance - $1, 0),
			balance = m.balance + CASE WHEN $3 THEN LEAST(m.frozen_balance, $1) ELSE 0 END,
			updated_at = now()
		FROM prev
		WHERE m.id = $2
		RETURNING prev.frozen_balance < $1`

	var clamped bool
	err := tx.QueryRow(ctx, query, total, merchantID, refund).Scan(&clamped)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("merchant not found: %s", merchantID)
		}
		return false, fmt.Errorf("resolve freeze: %w", err)
	}
	return clamped, nil
}

// scanMerchant scans a single row into a Merchant. Returns nil on no rows.
func (r *MerchantRepo) scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	var m domain.Merchant
	err := row.Scan(
		&m.ID, &m.Name, &m.APIKey, &m.PayoutKey, &m.CallbackURL,
		&m.PayinFeePercent, &m.PayoutFeePercent, &m.Balance, &m.FrozenBalance,
		&m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan merchant: %w", err)
	}
	return &m, nil
}
