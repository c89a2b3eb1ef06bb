package service

import (
	"context"
	"testing"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMerchantService_CreateMerchant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMerchantRepository(ctrl)
	svc := NewMerchantService(repo, zerolog.Nop())

	var created *domain.Merchant
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *domain.Merchant) error {
			created = m
			return nil
		})

	cb := "https://merchant.example/cb"
	merchant, err := svc.CreateMerchant(context.Background(), "Acme Store", dec("2.5"), dec("4"), &cb)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Acme Store", merchant.Name)
	assert.Len(t, merchant.APIKey, 64)
	assert.Len(t, merchant.PayoutKey, 64)
	assert.NotEqual(t, merchant.APIKey, merchant.PayoutKey)
	assert.True(t, merchant.Balance.IsZero())
	assert.True(t, merchant.FrozenBalance.IsZero())
	assert.Equal(t, domain.MerchantStatusActive, merchant.Status)
}

func TestMerchantService_CreateMerchant_InvalidFee(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewMerchantService(mocks.NewMockMerchantRepository(ctrl), zerolog.Nop())

	_, err := svc.CreateMerchant(context.Background(), "Acme", dec("-1"), dec("4"), nil)
	requireAppCode(t, err, "VAL_001")

	_, err = svc.CreateMerchant(context.Background(), "Acme", dec("2.5"), dec("100"), nil)
	requireAppCode(t, err, "VAL_001")
}

func TestMerchantService_UpdateFeeSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMerchantRepository(ctrl)
	svc := NewMerchantService(repo, zerolog.Nop())

	merchant := activeMerchant()
	repo.EXPECT().GetByID(gomock.Any(), merchant.ID).Return(merchant, nil)
	repo.EXPECT().Update(gomock.Any(), merchant).Return(nil)

	got, err := svc.UpdateFeeSchedule(context.Background(), merchant.ID, dec("3"), dec("5"))

	require.NoError(t, err)
	assert.True(t, got.PayinFeePercent.Equal(dec("3")))
	assert.True(t, got.PayoutFeePercent.Equal(dec("5")))
}

func TestMerchantService_UpdateFeeSchedule_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMerchantRepository(ctrl)
	svc := NewMerchantService(repo, zerolog.Nop())

	merchant := activeMerchant()
	repo.EXPECT().GetByID(gomock.Any(), merchant.ID).Return(nil, nil)

	_, err := svc.UpdateFeeSchedule(context.Background(), merchant.ID, dec("3"), dec("5"))
	requireAppCode(t, err, "PAY_004")
}

func TestMerchantService_RotateKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockMerchantRepository(ctrl)
	svc := NewMerchantService(repo, zerolog.Nop())

	merchant := activeMerchant()
	oldAPIKey := merchant.APIKey
	oldPayoutKey := merchant.PayoutKey

	repo.EXPECT().GetByID(gomock.Any(), merchant.ID).Return(merchant, nil)
	repo.EXPECT().Update(gomock.Any(), merchant).Return(nil)

	got, err := svc.RotateKeys(context.Background(), merchant.ID)

	require.NoError(t, err)
	assert.NotEqual(t, oldAPIKey, got.APIKey)
	assert.NotEqual(t, oldPayoutKey, got.PayoutKey)
	assert.Len(t, got.APIKey, 64)
	assert.Len(t, got.PayoutKey, 64)
}
