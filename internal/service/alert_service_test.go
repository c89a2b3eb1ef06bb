package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAlertService_LargePayin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockAlertRepository(ctrl)
	svc := NewAlertService(repo, zerolog.Nop())

	txn := &domain.Transaction{ID: uuid.New(), OrderNo: "PI1", MerchantID: uuid.New(), Amount: dec("75000.00")}

	var created *domain.Alert
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *domain.Alert) error {
			created = a
			return nil
		})

	svc.LargePayin(context.Background(), txn)

	require.NotNil(t, created)
	assert.Equal(t, domain.AlertKindLargePayin, created.Kind)
	require.NotNil(t, created.OrderNo)
	assert.Equal(t, "PI1", *created.OrderNo)
	require.NotNil(t, created.MerchantID)
	assert.Equal(t, txn.MerchantID, *created.MerchantID)
}

func TestAlertService_GatewayDegraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockAlertRepository(ctrl)
	svc := NewAlertService(repo, zerolog.Nop())

	var created *domain.Alert
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *domain.Alert) error {
			created = a
			return nil
		})

	svc.GatewayDegraded(context.Background(), "connection refused")

	require.NotNil(t, created)
	assert.Equal(t, domain.AlertKindGatewayDegraded, created.Kind)
	assert.Contains(t, created.Message, "connection refused")
	assert.Nil(t, created.MerchantID)
}

func TestAlertService_PersistFailure_DoesNotPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockAlertRepository(ctrl)
	svc := NewAlertService(repo, zerolog.Nop())

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	// Alert persistence is best-effort; the caller never sees the failure.
	svc.LargePayout(context.Background(), &domain.Transaction{ID: uuid.New(), OrderNo: "PO1", MerchantID: uuid.New(), Amount: dec("90000.00")})
}

func TestAlertService_Acknowledge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockAlertRepository(ctrl)
	svc := NewAlertService(repo, zerolog.Nop())

	id := uuid.New()
	repo.EXPECT().Acknowledge(gomock.Any(), id).Return(nil)

	require.NoError(t, svc.Acknowledge(context.Background(), id))
}
