package service

import (
	"testing"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"

	"github.com/stretchr/testify/assert"
)

func TestOrderNoService_Generate(t *testing.T) {
	fixed := time.UnixMilli(1708092000123)
	svc := &OrderNoService{now: func() time.Time { return fixed }}

	orderNo := svc.Generate(ports.OrderPrefixPayin)

	assert.Regexp(t, "^PI1708092000123[0-9]{6}$", orderNo)
}

func TestOrderNoService_Generate_Prefixes(t *testing.T) {
	svc := NewOrderNoService()

	assert.Regexp(t, "^PI[0-9]+$", svc.Generate(ports.OrderPrefixPayin))
	assert.Regexp(t, "^PO[0-9]+$", svc.Generate(ports.OrderPrefixPayout))
	assert.Regexp(t, "^PL[0-9]+$", svc.Generate(ports.OrderPrefixPaymentLink))
}

func TestOrderNoService_Generate_Uniqueness(t *testing.T) {
	svc := NewOrderNoService()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		orderNo := svc.Generate(ports.OrderPrefixPayin)
		assert.False(t, seen[orderNo], "duplicate order number %s", orderNo)
		seen[orderNo] = true
	}
}
