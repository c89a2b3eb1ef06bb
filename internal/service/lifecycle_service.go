package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const dedupTTL = 24 * time.Hour

// LifecycleService implements ports.PaymentService: the state machine that
// owns every payin/payout transition and the ledger adjustments tied to them.
type LifecycleService struct {
	txRepo       ports.TransactionRepository
	merchantRepo ports.MerchantRepository
	transactor   ports.DBTransactor
	orderGen     ports.OrderNoGenerator
	gateway      ports.GatewayClient
	notifier     ports.Notifier
	dedupCache   ports.DedupCache
	largePayin   decimal.Decimal
	largePayout  decimal.Decimal
	log          zerolog.Logger
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(
	txRepo ports.TransactionRepository,
	merchantRepo ports.MerchantRepository,
	transactor ports.DBTransactor,
	orderGen ports.OrderNoGenerator,
	gateway ports.GatewayClient,
	notifier ports.Notifier,
	dedupCache ports.DedupCache,
	largePayin decimal.Decimal,
	largePayout decimal.Decimal,
	log zerolog.Logger,
) *LifecycleService {
	return &LifecycleService{
		txRepo:       txRepo,
		merchantRepo: merchantRepo,
		transactor:   transactor,
		orderGen:     orderGen,
		gateway:      gateway,
		notifier:     notifier,
		dedupCache:   dedupCache,
		largePayin:   largePayin,
		largePayout:  largePayout,
		log:          log,
	}
}

// CreatePayin creates a pending payin, registers it with the upstream
// processor, and returns it with the payment URL populated. If the upstream
// call fails the pending row is still persisted (payment URL null) so the
// order can be reconciled later instead of being silently lost.
func (s *LifecycleService) CreatePayin(ctx context.Context, req ports.CreatePayinRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	merchant, err := s.merchantRepo.GetByID(ctx, req.MerchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch merchant: %w", err))
	}
	if merchant == nil || !merchant.IsActive() {
		return nil, apperror.ErrNotFound("merchant")
	}

	dedupKey := req.MerchantID.String() + ":" + req.MerchantOrderNo
	if req.MerchantOrderNo != "" {
		// Fast path; the unique constraint below remains authoritative.
		seen, err := s.dedupCache.Seen(ctx, dedupKey)
		if err != nil {
			s.log.Warn().Err(err).Str("key", dedupKey).Msg("dedup cache check failed, falling through to DB")
		} else if seen {
			return nil, apperror.ErrDuplicateOrder()
		}
		existing, err := s.txRepo.GetByMerchantOrderNo(ctx, req.MerchantID, req.MerchantOrderNo)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("check merchant order no: %w", err))
		}
		if existing != nil {
			return nil, apperror.ErrDuplicateOrder()
		}
	}

	prefix := req.OrderPrefix
	if prefix == "" {
		prefix = ports.OrderPrefixPayin
	}
	orderNo := s.orderGen.Generate(prefix)

	fee := merchant.PayinFee(req.Amount)
	txn := &domain.Transaction{
		ID:              uuid.New(),
		OrderNo:         orderNo,
		MerchantOrderNo: req.MerchantOrderNo,
		MerchantID:      req.MerchantID,
		Type:            domain.TransactionTypePayin,
		Status:          domain.TransactionStatusPending,
		Amount:          req.Amount,
		Fee:             fee,
		NetAmount:       req.Amount.Sub(fee),
		CallbackURL:     req.CallbackURL,
		Extra:           req.Extra,
		CreatedAt:       time.Now().UTC(),
	}

	result, gwErr := s.gateway.CreatePayment(ctx, ports.GatewayPaymentRequest{
		OrderNo: orderNo,
		Amount:  req.AmountStr,
		Extra:   req.Extra,
	})
	if gwErr == nil && result != nil {
		if result.PaymentURL != "" {
			txn.PaymentURL = &result.PaymentURL
		}
		if !result.Success {
			// Upstream answered 2xx but declined; keep its response for reconciliation.
			txn.CallbackData = &result.Raw
		}
	}

	if err := s.insertTransaction(ctx, txn); err != nil {
		return nil, err
	}

	if req.MerchantOrderNo != "" {
		if err := s.dedupCache.Mark(ctx, dedupKey, dedupTTL); err != nil {
			s.log.Warn().Err(err).Str("key", dedupKey).Msg("failed to mark dedup cache")
		}
	}

	if req.Amount.GreaterThanOrEqual(s.largePayin) {
		s.notifier.LargePayin(ctx, txn)
	}

	if gwErr != nil {
		s.log.Error().Err(gwErr).
			Str("order_no", orderNo).
			Str("merchant_id", req.MerchantID.String()).
			Msg("payin persisted pending without payment URL, gateway unreachable")
		return nil, apperror.ErrGatewayUnavailable(gwErr)
	}

	if result != nil && !result.Success {
		s.log.Warn().
			Str("order_no", orderNo).
			Str("merchant_id", req.MerchantID.String()).
			Str("response", result.Raw).
			Msg("payin persisted pending, upstream reported failure at creation")
		return txn, nil
	}

	s.log.Info().
		Str("order_no", orderNo).
		Str("merchant_id", req.MerchantID.String()).
		Str("amount", req.Amount.String()).
		Msg("payin created")

	return txn, nil
}

// CreatePayout freezes amount+fee out of the merchant's available balance and
// persists a pending payout awaiting admin approval. The upstream processor
// is not contacted until approval. If the freeze fails nothing is persisted.
func (s *LifecycleService) CreatePayout(ctx context.Context, req ports.CreatePayoutRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.AccountNumber == "" || req.IFSC == "" || req.AccountHolder == "" || req.BankName == "" {
		return nil, apperror.Validation("account_number, ifsc, name and bank_name are required")
	}

	merchant, err := s.merchantRepo.GetByID(ctx, req.MerchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch merchant: %w", err))
	}
	if merchant == nil || !merchant.IsActive() {
		return nil, apperror.ErrNotFound("merchant")
	}

	fee := merchant.PayoutFee(req.Amount)
	total := req.Amount.Add(fee)

	stage := domain.PayoutStageCreated
	txn := &domain.Transaction{
		ID:              uuid.New(),
		OrderNo:         s.orderGen.Generate(ports.OrderPrefixPayout),
		MerchantOrderNo: req.MerchantOrderNo,
		MerchantID:      req.MerchantID,
		Type:            domain.TransactionTypePayout,
		Status:          domain.TransactionStatusPending,
		Stage:           &stage,
		Amount:          req.Amount,
		Fee:             fee,
		NetAmount:       total,
		CallbackURL:     req.CallbackURL,
		AccountNumber:   req.AccountNumber,
		IFSC:            req.IFSC,
		AccountHolder:   req.AccountHolder,
		BankName:        req.BankName,
		CreatedAt:       time.Now().UTC(),
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	frozen, err := s.merchantRepo.FreezeForPayout(ctx, dbTx, req.MerchantID, total)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("freeze for payout: %w", err))
	}
	if !frozen {
		return nil, apperror.ErrInsufficientBalance()
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.ErrDuplicateOrder()
		}
		return nil, apperror.InternalError(fmt.Errorf("create payout: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if req.Amount.GreaterThanOrEqual(s.largePayout) {
		s.notifier.LargePayout(ctx, txn)
	}

	s.log.Info().
		Str("order_no", txn.OrderNo).
		Str("merchant_id", req.MerchantID.String()).
		Str("amount", req.Amount.String()).
		Str("held", total.String()).
		Msg("payout created, funds frozen, awaiting approval")

	return txn, nil
}

// ApprovePayout claims a payout awaiting approval and dispatches it to the
// upstream processor. The claim is a conditional update so a concurrent
// approval or rejection observes InvalidState. Regardless of the immediate
// HTTP outcome the payout stays pending; the authoritative result arrives via
// settlement callback.
func (s *LifecycleService) ApprovePayout(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if !txn.IsPayout() {
		return nil, apperror.ErrInvalidState("approval")
	}

	claimed, err := s.txRepo.MarkDispatched(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark dispatched: %w", err))
	}
	if !claimed {
		return nil, apperror.ErrInvalidState("approval")
	}
	dispatched := domain.PayoutStageDispatched
	txn.Stage = &dispatched

	result, gwErr := s.gateway.CreatePayout(ctx, ports.GatewayPayoutRequest{
		OrderNo:       txn.OrderNo,
		Amount:        txn.Amount.String(),
		AccountNumber: txn.AccountNumber,
		IFSC:          txn.IFSC,
		AccountHolder: txn.AccountHolder,
		BankName:      txn.BankName,
	})

	// Provisional audit trail only; the settlement callback is authoritative.
	provisional := ""
	switch {
	case gwErr != nil:
		provisional = fmt.Sprintf(`{"dispatch_error":%q}`, gwErr.Error())
		s.log.Warn().Err(gwErr).
			Str("order_no", txn.OrderNo).
			Msg("payout dispatch failed, transaction stays pending for reconciliation")
	case result != nil:
		provisional = result.Raw
	}
	if provisional != "" {
		if err := s.txRepo.SetCallbackData(ctx, transactionID, provisional); err != nil {
			s.log.Warn().Err(err).Str("order_no", txn.OrderNo).Msg("failed to store provisional gateway response")
		}
		txn.CallbackData = &provisional
	}

	s.log.Info().
		Str("order_no", txn.OrderNo).
		Bool("dispatch_ok", gwErr == nil).
		Msg("payout approved and dispatched")

	return txn, nil
}

// RejectPayout fails a payout still awaiting approval and returns the full
// held amount to the merchant's available balance. The transition and the
// refund commit as one database transaction.
func (s *LifecycleService) RejectPayout(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if !txn.IsPayout() {
		return nil, apperror.ErrInvalidState("rejection")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	rejected, err := s.txRepo.RejectCreatedPayout(ctx, dbTx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reject payout: %w", err))
	}
	if !rejected {
		return nil, apperror.ErrInvalidState("rejection")
	}

	clamped, err := s.merchantRepo.ResolveFreeze(ctx, dbTx, txn.MerchantID, txn.HeldAmount(), domain.PayoutOutcomeRejected)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve freeze: %w", err))
	}
	if clamped {
		s.log.Warn().
			Str("order_no", txn.OrderNo).
			Str("merchant_id", txn.MerchantID.String()).
			Msg("frozen balance clamped at zero during reject, ledger drift suspected")
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	txn.Status = domain.TransactionStatusFailed
	now := time.Now().UTC()
	txn.ProcessedAt = &now

	s.log.Info().
		Str("order_no", txn.OrderNo).
		Str("merchant_id", txn.MerchantID.String()).
		Str("refunded", txn.HeldAmount().String()).
		Msg("payout rejected, held funds returned")

	return txn, nil
}

// insertTransaction persists a transaction in its own database transaction.
func (s *LifecycleService) insertTransaction(ctx context.Context, txn *domain.Transaction) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrDuplicateOrder()
		}
		return apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505), e.g. an order number collision.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
