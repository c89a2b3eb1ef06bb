package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentLinkService implements ports.PaymentLinkService. A paid link is
// bound to exactly one payin transaction: every payment of a link carries the
// same LINK-<code> merchant order number, so the payin uniqueness constraint
// admits one transaction and concurrent payments fail with DuplicateOrder.
type PaymentLinkService struct {
	linkRepo   ports.PaymentLinkRepository
	paymentSvc ports.PaymentService
	log        zerolog.Logger
}

// NewPaymentLinkService creates a new PaymentLinkService.
func NewPaymentLinkService(linkRepo ports.PaymentLinkRepository, paymentSvc ports.PaymentService, log zerolog.Logger) *PaymentLinkService {
	return &PaymentLinkService{linkRepo: linkRepo, paymentSvc: paymentSvc, log: log}
}

// CreateLink creates a shareable payment link.
func (s *PaymentLinkService) CreateLink(ctx context.Context, req ports.CreateLinkRequest) (*domain.PaymentLink, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	link := &domain.PaymentLink{
		ID:          uuid.New(),
		Code:        newLinkCode(),
		MerchantID:  req.MerchantID,
		Amount:      req.Amount,
		Description: req.Description,
		ExpiresAt:   req.ExpiresAt,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payment link: %w", err))
	}

	s.log.Info().
		Str("code", link.Code).
		Str("merchant_id", req.MerchantID.String()).
		Str("amount", req.Amount.String()).
		Msg("payment link created")

	return link, nil
}

// PayLink creates the single payin transaction for the link. The LINK-<code>
// merchant order number makes creation exactly-once; a second concurrent
// payment fails with DuplicateOrder at the create step. MarkPaid then records
// the winning order number on the link.
func (s *PaymentLinkService) PayLink(ctx context.Context, code string) (*domain.Transaction, error) {
	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch payment link: %w", err))
	}
	if link == nil {
		return nil, apperror.ErrNotFound("payment link")
	}
	if link.IsExpired(time.Now().UTC()) {
		return nil, apperror.ErrLinkExpired()
	}
	if link.IsPaid() {
		return nil, apperror.ErrDuplicateOrder()
	}

	txn, err := s.paymentSvc.CreatePayin(ctx, ports.CreatePayinRequest{
		MerchantID:      link.MerchantID,
		Amount:          link.Amount,
		AmountStr:       link.Amount.String(),
		MerchantOrderNo: "LINK-" + link.Code,
		OrderPrefix:     ports.OrderPrefixPaymentLink,
	})
	if err != nil {
		return nil, err
	}

	claimed, err := s.linkRepo.MarkPaid(ctx, link.ID, txn.OrderNo)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark link paid: %w", err))
	}
	if !claimed {
		// Backstop only: the unique merchant order number fails the loser at
		// the create step before it can reach here.
		s.log.Warn().Str("code", code).Str("order_no", txn.OrderNo).Msg("payment link already claimed by a concurrent payin")
		return nil, apperror.ErrDuplicateOrder()
	}

	return txn, nil
}

// newLinkCode returns a random 12-hex-char shareable code.
func newLinkCode() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
