package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// CallbackService implements ports.CallbackService. Settlement notifications
// are applied exactly once: redeliveries of an already-terminal transaction
// are acknowledged without touching the ledger, and the status flip plus the
// ledger adjustment commit as a single database transaction guarded by
// status = PENDING.
type CallbackService struct {
	txRepo           ports.TransactionRepository
	merchantRepo     ports.MerchantRepository
	transactor       ports.DBTransactor
	sigSvc           ports.SignatureService
	merchantNotifier ports.MerchantNotifier
	masterPayoutKey  string
	log              zerolog.Logger
}

// NewCallbackService creates a new CallbackService. masterPayoutKey is the
// platform secret under which payouts were dispatched upstream.
func NewCallbackService(
	txRepo ports.TransactionRepository,
	merchantRepo ports.MerchantRepository,
	transactor ports.DBTransactor,
	sigSvc ports.SignatureService,
	merchantNotifier ports.MerchantNotifier,
	masterPayoutKey string,
	log zerolog.Logger,
) *CallbackService {
	return &CallbackService{
		txRepo:           txRepo,
		merchantRepo:     merchantRepo,
		transactor:       transactor,
		sigSvc:           sigSvc,
		merchantNotifier: merchantNotifier,
		masterPayoutKey:  masterPayoutKey,
		log:              log,
	}
}

// ProcessPayinCallback finalizes a payin from an upstream settlement
// notification. On success the merchant's available balance is credited with
// the net amount; a failed payin has no ledger effect.
func (s *CallbackService) ProcessPayinCallback(ctx context.Context, cb ports.PayinCallback) error {
	txn, merchant, err := s.lookup(ctx, cb.OrderNo)
	if err != nil {
		return err
	}
	if txn.IsTerminal() {
		// Redelivery; acknowledge without re-applying anything.
		s.log.Debug().Str("order_no", cb.OrderNo).Msg("payin callback redelivered for terminal transaction, acknowledged")
		return nil
	}

	parts := domain.PayinSignParts(
		txn.MerchantID.String(), cb.Amount, txn.MerchantOrderNo,
		merchant.APIKey, txn.CallbackURL,
	)
	if !s.sigSvc.Verify(parts, cb.Sign) {
		s.log.Warn().Str("order_no", cb.OrderNo).Msg("payin callback signature mismatch, transaction left pending")
		return apperror.ErrInvalidSignature()
	}

	status, err := mapOutcome(cb.Status)
	if err != nil {
		return err
	}

	applied, err := s.finalize(ctx, txn, status, cb.Raw, func(dbTx pgx.Tx) error {
		if status != domain.TransactionStatusSuccess {
			return nil // funds were never held
		}
		return s.merchantRepo.CreditAvailable(ctx, dbTx, txn.MerchantID, txn.NetAmount)
	})
	if err != nil || !applied {
		return err
	}

	s.log.Info().
		Str("order_no", txn.OrderNo).
		Str("merchant_id", txn.MerchantID.String()).
		Str("status", string(status)).
		Str("credited", txn.NetAmount.String()).
		Msg("payin settled")

	s.notifyMerchant(ctx, merchant, txn, status)
	return nil
}

// ProcessPayoutCallback finalizes a payout. Success releases the frozen hold
// permanently; failure returns the full held amount to available.
func (s *CallbackService) ProcessPayoutCallback(ctx context.Context, cb ports.PayoutCallback) error {
	txn, merchant, err := s.lookup(ctx, cb.OrderNo)
	if err != nil {
		return err
	}
	if txn.IsTerminal() {
		s.log.Debug().Str("order_no", cb.OrderNo).Msg("payout callback redelivered for terminal transaction, acknowledged")
		return nil
	}

	// Payouts are dispatched under the platform's master credentials, so the
	// processor signs settlements with the master payout key.
	parts := domain.PayoutSignParts(
		txn.AccountNumber, cb.Amount, txn.BankName, txn.CallbackURL,
		txn.IFSC, txn.MerchantID.String(), txn.AccountHolder, txn.OrderNo,
		s.masterPayoutKey,
	)
	if !s.sigSvc.Verify(parts, cb.Sign) {
		s.log.Warn().Str("order_no", cb.OrderNo).Msg("payout callback signature mismatch, transaction left pending")
		return apperror.ErrInvalidSignature()
	}

	status, err := mapOutcome(cb.Status)
	if err != nil {
		return err
	}

	outcome := domain.PayoutOutcomeConfirmed
	if status == domain.TransactionStatusFailed {
		outcome = domain.PayoutOutcomeRejected
	}

	applied, err := s.finalize(ctx, txn, status, cb.Raw, func(dbTx pgx.Tx) error {
		clamped, err := s.merchantRepo.ResolveFreeze(ctx, dbTx, txn.MerchantID, txn.HeldAmount(), outcome)
		if err != nil {
			return err
		}
		if clamped {
			s.log.Warn().
				Str("order_no", txn.OrderNo).
				Str("merchant_id", txn.MerchantID.String()).
				Msg("frozen balance clamped at zero during settlement, ledger drift suspected")
		}
		return nil
	})
	if err != nil || !applied {
		return err
	}

	s.log.Info().
		Str("order_no", txn.OrderNo).
		Str("merchant_id", txn.MerchantID.String()).
		Str("status", string(status)).
		Str("outcome", string(outcome)).
		Msg("payout settled")

	s.notifyMerchant(ctx, merchant, txn, status)
	return nil
}

// lookup resolves the transaction and its owning merchant.
func (s *CallbackService) lookup(ctx context.Context, orderNo string) (*domain.Transaction, *domain.Merchant, error) {
	txn, err := s.txRepo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("fetch transaction: %w", err))
	}
	if txn == nil {
		return nil, nil, apperror.ErrOrderNotFound()
	}
	merchant, err := s.merchantRepo.GetByID(ctx, txn.MerchantID)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("fetch merchant: %w", err))
	}
	if merchant == nil {
		return nil, nil, apperror.ErrNotFound("merchant")
	}
	return txn, merchant, nil
}

// finalize commits the status flip and the ledger adjustment as one database
// transaction. Returns false when the conditional update found the row no
// longer pending (a concurrent winner), which callers treat as an idempotent
// acknowledgement.
func (s *CallbackService) finalize(
	ctx context.Context,
	txn *domain.Transaction,
	status domain.TransactionStatus,
	raw string,
	ledgerOp func(dbTx pgx.Tx) error,
) (bool, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	flipped, err := s.txRepo.Finalize(ctx, dbTx, txn.ID, status, &raw)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("finalize transaction: %w", err))
	}
	if !flipped {
		s.log.Debug().Str("order_no", txn.OrderNo).Msg("settlement lost the pending-state race, acknowledged as no-op")
		return false, nil
	}

	if err := ledgerOp(dbTx); err != nil {
		return false, apperror.InternalError(fmt.Errorf("apply ledger adjustment: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return false, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	txn.Status = status
	now := time.Now().UTC()
	txn.ProcessedAt = &now
	txn.CallbackData = &raw
	return true, nil
}

// notifyMerchant fires the best-effort merchant notification. Failures never
// roll back the ledger mutation already committed.
func (s *CallbackService) notifyMerchant(ctx context.Context, merchant *domain.Merchant, txn *domain.Transaction, status domain.TransactionStatus) {
	if merchant.CallbackURL == nil || *merchant.CallbackURL == "" {
		return
	}
	txn.Status = status
	s.merchantNotifier.NotifySettlement(ctx, merchant, txn)
}

// mapOutcome translates the processor's reported outcome to a terminal
// status. Unknown values are rejected before any mutation.
func mapOutcome(reported string) (domain.TransactionStatus, error) {
	switch strings.ToLower(reported) {
	case "success", "succeeded", "paid":
		return domain.TransactionStatusSuccess, nil
	case "failed", "fail", "rejected":
		return domain.TransactionStatusFailed, nil
	default:
		return "", apperror.Validation(fmt.Sprintf("unknown settlement status %q", reported))
	}
}
