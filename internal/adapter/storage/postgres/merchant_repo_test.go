package postgres

import (
	"context"
	"testing"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerchantRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM merchants WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMerchantRepo_CreditAvailable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	merchantID := uuid.New()
	amount := decimal.RequireFromString("455.00")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE merchants SET balance = balance \\+").
		WithArgs(amount, merchantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.CreditAvailable(ctx, tx, merchantID, amount))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMerchantRepo_FreezeForPayout(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	merchantID := uuid.New()
	total := decimal.RequireFromString("416.00")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE merchants").
		WithArgs(total, merchantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	frozen, err := repo.FreezeForPayout(ctx, tx, merchantID, total)

	require.NoError(t, err)
	assert.True(t, frozen)
}

func TestMerchantRepo_FreezeForPayout_InsufficientBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	merchantID := uuid.New()
	total := decimal.RequireFromString("99999.00")

	mock.ExpectBegin()
	// The balance guard in the WHERE clause matched no row.
	mock.ExpectExec("UPDATE merchants").
		WithArgs(total, merchantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	frozen, err := repo.FreezeForPayout(ctx, tx, merchantID, total)

	require.NoError(t, err)
	assert.False(t, frozen)
}

func TestMerchantRepo_ResolveFreeze_Rejected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	merchantID := uuid.New()
	total := decimal.RequireFromString("416.00")

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE merchants").
		WithArgs(total, merchantID, true).
		WillReturnRows(pgxmock.NewRows([]string{"clamped"}).AddRow(false))

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	clamped, err := repo.ResolveFreeze(ctx, tx, merchantID, total, domain.PayoutOutcomeRejected)

	require.NoError(t, err)
	assert.False(t, clamped)
}

func TestMerchantRepo_ResolveFreeze_Confirmed_Clamped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	merchantID := uuid.New()
	total := decimal.RequireFromString("416.00")

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE merchants").
		WithArgs(total, merchantID, false).
		WillReturnRows(pgxmock.NewRows([]string{"clamped"}).AddRow(true))

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	clamped, err := repo.ResolveFreeze(ctx, tx, merchantID, total, domain.PayoutOutcomeConfirmed)

	require.NoError(t, err)
	assert.True(t, clamped, "prior frozen below total must be reported")
}
