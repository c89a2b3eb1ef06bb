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
	"github.com/shopspring/decimal"
)

// MerchantService implements ports.MerchantManagementService.
type MerchantService struct {
	merchantRepo ports.MerchantRepository
	log          zerolog.Logger
}

// NewMerchantService creates a new MerchantService.
func NewMerchantService(merchantRepo ports.MerchantRepository, log zerolog.Logger) *MerchantService {
	return &MerchantService{merchantRepo: merchantRepo, log: log}
}

// CreateMerchant onboards a merchant with freshly generated signing keys and
// a zeroed ledger. The plaintext keys are returned once on the created
// merchant and never shown again.
func (s *MerchantService) CreateMerchant(ctx context.Context, name string, payinFeePercent, payoutFeePercent decimal.Decimal, callbackURL *string) (*domain.Merchant, error) {
	if err := validateFeePercent(payinFeePercent); err != nil {
		return nil, err
	}
	if err := validateFeePercent(payoutFeePercent); err != nil {
		return nil, err
	}

	apiKey, err := generateRandomHex(32)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate api key: %w", err))
	}
	payoutKey, err := generateRandomHex(32)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate payout key: %w", err))
	}

	now := time.Now().UTC()
	merchant := &domain.Merchant{
		ID:               uuid.New(),
		Name:             name,
		APIKey:           apiKey,
		PayoutKey:        payoutKey,
		CallbackURL:      callbackURL,
		PayinFeePercent:  payinFeePercent,
		PayoutFeePercent: payoutFeePercent,
		Balance:          decimal.Zero,
		FrozenBalance:    decimal.Zero,
		Status:           domain.MerchantStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create merchant: %w", err))
	}

	s.log.Info().
		Str("merchant_id", merchant.ID.String()).
		Str("name", name).
		Msg("merchant created")

	return merchant, nil
}

// UpdateFeeSchedule changes the merchant's fee percentages. Fees apply to
// transactions created after the change; existing transactions keep the fee
// captured at creation.
func (s *MerchantService) UpdateFeeSchedule(ctx context.Context, merchantID uuid.UUID, payinFeePercent, payoutFeePercent decimal.Decimal) (*domain.Merchant, error) {
	if err := validateFeePercent(payinFeePercent); err != nil {
		return nil, err
	}
	if err := validateFeePercent(payoutFeePercent); err != nil {
		return nil, err
	}

	merchant, err := s.getMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	merchant.PayinFeePercent = payinFeePercent
	merchant.PayoutFeePercent = payoutFeePercent
	merchant.UpdatedAt = time.Now().UTC()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update merchant: %w", err))
	}

	s.log.Info().
		Str("merchant_id", merchantID.String()).
		Str("payin_fee_percent", payinFeePercent.String()).
		Str("payout_fee_percent", payoutFeePercent.String()).
		Msg("merchant fee schedule updated")

	return merchant, nil
}

// RotateKeys replaces both signing secrets. In-flight transactions verify
// callbacks against values captured at creation, so only the merchant's own
// request signing is affected immediately.
func (s *MerchantService) RotateKeys(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error) {
	merchant, err := s.getMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	apiKey, err := generateRandomHex(32)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate api key: %w", err))
	}
	payoutKey, err := generateRandomHex(32)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate payout key: %w", err))
	}

	merchant.APIKey = apiKey
	merchant.PayoutKey = payoutKey
	merchant.UpdatedAt = time.Now().UTC()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update merchant: %w", err))
	}

	s.log.Info().Str("merchant_id", merchantID.String()).Msg("merchant signing keys rotated")
	return merchant, nil
}

func (s *MerchantService) getMerchant(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	return merchant, nil
}

// validateFeePercent rejects schedules outside [0, 100).
func validateFeePercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return apperror.Validation(fmt.Sprintf("fee percent %s out of range", pct.String()))
	}
	return nil
}

// generateRandomHex returns n random bytes hex-encoded (2n chars).
func generateRandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
