package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. The conditional
// updates carry their state guard in the WHERE clause and report the guard
// outcome through RowsAffected, so terminal rows are immutable at the
// storage layer no matter how callers race.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, order_no, merchant_order_no, merchant_id, type, status, stage,
	amount, fee, net_amount, payment_url, callback_url, extra,
	account_number, ifsc, account_holder, bank_name, callback_data, created_at, processed_at`

// Create inserts a new transaction within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, order_no, merchant_order_no, merchant_id, type, status, stage,
		amount, fee, net_amount, payment_url, callback_url, extra,
		account_number, ifsc, account_holder, bank_name, callback_data, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.OrderNo, t.MerchantOrderNo, t.MerchantID, t.Type, t.Status, t.Stage,
		t.Amount, t.Fee, t.NetAmount, t.PaymentURL, t.CallbackURL, t.Extra,
		t.AccountNumber, t.IFSC, t.AccountHolder, t.BankName, t.CallbackData,
		t.CreatedAt, t.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID. Returns nil when not found.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, transactionColumns)
	return r.scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByOrderNo fetches a transaction by system order number.
func (r *TransactionRepo) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE order_no = $1`, transactionColumns)
	return r.scanTransaction(r.pool.QueryRow(ctx, query, orderNo))
}

// GetByMerchantOrderNo fetches a transaction by merchant correlation id.
func (r *TransactionRepo) GetByMerchantOrderNo(ctx context.Context, merchantID uuid.UUID, merchantOrderNo string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE merchant_id = $1 AND merchant_order_no = $2`, transactionColumns)
	return r.scanTransaction(r.pool.QueryRow(ctx, query, merchantID, merchantOrderNo))
}

// MarkDispatched advances a payout from CREATED to DISPATCHED while still
// pending. Returns false when another actor already moved the row.
func (r *TransactionRepo) MarkDispatched(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE transactions SET stage = $1
		WHERE id = $2 AND status = $3 AND stage = $4`

	tag, err := r.pool.Exec(ctx, query,
		domain.PayoutStageDispatched, id,
		domain.TransactionStatusPending, domain.PayoutStageCreated,
	)
	if err != nil {
		return false, fmt.Errorf("mark dispatched: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetCallbackData stores a raw gateway or settlement payload for audit.
func (r *TransactionRepo) SetCallbackData(ctx context.Context, id uuid.UUID, data string) error {
	query := `UPDATE transactions SET callback_data = $1 WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, data, id)
	if err != nil {
		return fmt.Errorf("set callback data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// Finalize moves a pending transaction to a terminal status. Returns false
// when the row was no longer pending, which makes redeliveries and races
// resolve to exactly one applied settlement.
func (r *TransactionRepo) Finalize(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, callbackData *string) (bool, error) {
	query := `UPDATE transactions
		SET status = $1, callback_data = COALESCE($2, callback_data), processed_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := tx.Exec(ctx, query, status, callbackData, time.Now().UTC(), id, domain.TransactionStatusPending)
	if err != nil {
		return false, fmt.Errorf("finalize transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RejectCreatedPayout fails a payout that is still awaiting approval.
// Dispatched payouts are out of reach; their outcome belongs to the
// settlement callback.
func (r *TransactionRepo) RejectCreatedPayout(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `UPDATE transactions SET status = $1, processed_at = $2
		WHERE id = $3 AND status = $4 AND stage = $5`

	tag, err := tx.Exec(ctx, query,
		domain.TransactionStatusFailed, time.Now().UTC(), id,
		domain.TransactionStatusPending, domain.PayoutStageCreated,
	)
	if err != nil {
		return false, fmt.Errorf("reject created payout: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List fetches transactions with filtering and pagination.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.MerchantID != nil {
		conditions = append(conditions, fmt.Sprintf("merchant_id = $%d", argIdx))
		args = append(args, *params.MerchantID)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.OrderNo, &t.MerchantOrderNo, &t.MerchantID, &t.Type, &t.Status, &t.Stage,
			&t.Amount, &t.Fee, &t.NetAmount, &t.PaymentURL, &t.CallbackURL, &t.Extra,
			&t.AccountNumber, &t.IFSC, &t.AccountHolder, &t.BankName, &t.CallbackData,
			&t.CreatedAt, &t.ProcessedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// GetStats retrieves aggregated transaction statistics, optionally scoped to
// one merchant and a period lower bound.
func (r *TransactionRepo) GetStats(ctx context.Context, merchantID *uuid.UUID, periodStart *int64) (*ports.TransactionStats, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if merchantID != nil {
		conditions = append(conditions, fmt.Sprintf("merchant_id = $%d", argIdx))
		args = append(args, *merchantID)
		argIdx++
	}
	if periodStart != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *periodStart)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'SUCCESS') AS successful,
		COUNT(*) FILTER (WHERE status = 'FAILED') AS failed,
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		COALESCE(SUM(net_amount) FILTER (WHERE type = 'PAYIN' AND status = 'SUCCESS'), 0) AS payin_volume,
		COALESCE(SUM(net_amount) FILTER (WHERE type = 'PAYOUT' AND status = 'SUCCESS'), 0) AS payout_volume
		FROM transactions %s`, where)

	stats := &ports.TransactionStats{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalTransactions, &stats.Successful, &stats.Failed, &stats.Pending,
		&stats.TotalPayinVolume, &stats.TotalPayoutVolume,
	)
	if err != nil {
		return nil, fmt.Errorf("get transaction stats: %w", err)
	}
	return stats, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID, &t.OrderNo, &t.MerchantOrderNo, &t.MerchantID, &t.Type, &t.Status, &t.Stage,
		&t.Amount, &t.Fee, &t.NetAmount, &t.PaymentURL, &t.CallbackURL, &t.Extra,
		&t.AccountNumber, &t.IFSC, &t.AccountHolder, &t.BankName, &t.CallbackData,
		&t.CreatedAt, &t.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return &t, nil
}
