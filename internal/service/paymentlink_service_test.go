package service

import (
	"context"
	"testing"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"
	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports/mocks"
	"github.com/hypersoftss/elopaygateway-sub002/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type linkTestDeps struct {
	svc        *PaymentLinkService
	linkRepo   *mocks.MockPaymentLinkRepository
	paymentSvc *mocks.MockPaymentService
	ctrl       *gomock.Controller
}

func setupLinkService(t *testing.T) *linkTestDeps {
	ctrl := gomock.NewController(t)
	d := &linkTestDeps{
		linkRepo:   mocks.NewMockPaymentLinkRepository(ctrl),
		paymentSvc: mocks.NewMockPaymentService(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewPaymentLinkService(d.linkRepo, d.paymentSvc, zerolog.Nop())
	return d
}

func TestPaymentLinkService_CreateLink(t *testing.T) {
	d := setupLinkService(t)
	defer d.ctrl.Finish()

	merchantID := uuid.New()
	d.linkRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	link, err := d.svc.CreateLink(context.Background(), ports.CreateLinkRequest{
		MerchantID:  merchantID,
		Amount:      dec("250.00"),
		Description: "Invoice #42",
	})

	require.NoError(t, err)
	assert.Len(t, link.Code, 12)
	assert.Equal(t, merchantID, link.MerchantID)
	assert.False(t, link.IsPaid())
}

func TestPaymentLinkService_CreateLink_InvalidAmount(t *testing.T) {
	d := setupLinkService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.CreateLink(context.Background(), ports.CreateLinkRequest{
		MerchantID: uuid.New(),
		Amount:     dec("0"),
	})
	requireAppCode(t, err, "PAY_002")
}

func TestPaymentLinkService_PayLink_CreatesPayin(t *testing.T) {
	d := setupLinkService(t)
	defer d.ctrl.Finish()

	link := &domain.PaymentLink{
		ID:         uuid.New(),
		Code:       "a1b2c3d4e5f6",
		MerchantID: uuid.New(),
		Amount:     dec("250.00"),
	}
	created := &domain.Transaction{ID: uuid.New(), OrderNo: "PL1"}

	d.linkRepo.EXPECT().GetByCode(gomock.Any(), "a1b2c3d4e5f6").Return(link, nil)
	d.paymentSvc.EXPECT().CreatePayin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.CreatePayinRequest) (*domain.Transaction, error) {
			assert.Equal(t, link.MerchantID, req.MerchantID)
			assert.Equal(t, "LINK-a1b2c3d4e5f6", req.MerchantOrderNo)
			assert.Equal(t, ports.OrderPrefixPaymentLink, req.OrderPrefix)
			assert.True(t, req.Amount.Equal(dec("250.00")))
			return created, nil
		})
	d.linkRepo.EXPECT().MarkPaid(gomock.Any(), link.ID, "PL1").Return(true, nil)

	txn, err := d.svc.PayLink(context.Background(), "a1b2c3d4e5f6")

	require.NoError(t, err)
	assert.Equal(t, "PL1", txn.OrderNo)
}

func TestPaymentLinkService_PayLink_Expired(t *testing.T) {
	d := setupLinkService(t)
	defer d.ctrl.Finish()

	past := time.Now().Add(-time.Hour)
	link := &domain.PaymentLink{ID: uuid.New(), Code: "c", MerchantID: uuid.New(), Amount: dec("10.00"), ExpiresAt: &past}
	d.linkRepo.EXPECT().GetByCode(gomock.Any(), "c").Return(link, nil)

	_, err := d.svc.PayLink(context.Background(), "c")
	requireAppCode(t, err, "PAY_007")
}

func TestPaymentLinkService_PayLink_AlreadyPaid(t *testing.T) {
	d := setupLinkService(t)
	defer d.ctrl.Finish()

	orderNo := "PL0"
	link := &domain.PaymentLink{ID: uuid.New(), Code: "c", MerchantID: uuid.New(), Amount: dec("10.00"), PaidOrderNo: &orderNo}
	d.linkRepo.EXPECT().GetByCode(gomock.Any(), "c").Return(link, nil)

	_, err := d.svc.PayLink(context.Background(), "c")
	requireAppCode(t, err, "PAY_003")
}

func TestPaymentLinkService_PayLink_NotFound(t *testing.T) {
	d := setupLinkService(t)
	defer d.ctrl.Finish()

	d.linkRepo.EXPECT().GetByCode(gomock.Any(), "missing").Return(nil, nil)

	_, err := d.svc.PayLink(context.Background(), "missing")
	requireAppCode(t, err, "PAY_004")
}

func TestPaymentLinkService_PayLink_ConcurrentCreateLoses(t *testing.T) {
	d := setupLinkService(t)
	defer d.ctrl.Finish()

	link := &domain.PaymentLink{ID: uuid.New(), Code: "c", MerchantID: uuid.New(), Amount: dec("10.00")}

	// The loser of a concurrent payment fails at the create step on the shared
	// LINK-c merchant order number; MarkPaid is never reached.
	d.linkRepo.EXPECT().GetByCode(gomock.Any(), "c").Return(link, nil)
	d.paymentSvc.EXPECT().CreatePayin(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrDuplicateOrder())

	_, err := d.svc.PayLink(context.Background(), "c")
	requireAppCode(t, err, "PAY_003")
}

func TestPaymentLinkService_PayLink_ConcurrentClaim(t *testing.T) {
	d := setupLinkService(t)
	defer d.ctrl.Finish()

	link := &domain.PaymentLink{ID: uuid.New(), Code: "c", MerchantID: uuid.New(), Amount: dec("10.00")}
	created := &domain.Transaction{ID: uuid.New(), OrderNo: "PL2"}

	d.linkRepo.EXPECT().GetByCode(gomock.Any(), "c").Return(link, nil)
	d.paymentSvc.EXPECT().CreatePayin(gomock.Any(), gomock.Any()).Return(created, nil)
	d.linkRepo.EXPECT().MarkPaid(gomock.Any(), link.ID, "PL2").Return(false, nil)

	_, err := d.svc.PayLink(context.Background(), "c")
	requireAppCode(t, err, "PAY_003")
}
