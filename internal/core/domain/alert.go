package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlertKind classifies administrative alerts.
type AlertKind string

const (
	AlertKindLargePayin      AlertKind = "LARGE_PAYIN"
	AlertKindLargePayout     AlertKind = "LARGE_PAYOUT"
	AlertKindGatewayDegraded AlertKind = "GATEWAY_DEGRADED"
)

// Alert is an administrative notification raised when a threshold is crossed.
type Alert struct {
	ID             uuid.UUID  `json:"id"`
	Kind           AlertKind  `json:"kind"`
	Message        string     `json:"message"`
	MerchantID     *uuid.UUID `json:"merchant_id,omitempty"`
	OrderNo        *string    `json:"order_no,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}
