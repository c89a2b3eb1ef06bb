package service

import (
	"context"
	"time"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/ports"

	"github.com/rs/zerolog"
)

// degradedAfterFailures is how many consecutive probe failures mark the
// upstream gateway degraded. A single failed probe is noise.
const degradedAfterFailures = 3

// GatewayHealthMonitor periodically probes the upstream processor and raises
// a GATEWAY_DEGRADED alert after consecutive failures. It alerts once per
// outage and re-arms when a probe succeeds again.
type GatewayHealthMonitor struct {
	gateway  ports.GatewayClient
	notifier ports.Notifier
	interval time.Duration
	log      zerolog.Logger
}

// NewGatewayHealthMonitor creates a new GatewayHealthMonitor.
func NewGatewayHealthMonitor(gateway ports.GatewayClient, notifier ports.Notifier, interval time.Duration, log zerolog.Logger) *GatewayHealthMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &GatewayHealthMonitor{
		gateway:  gateway,
		notifier: notifier,
		interval: interval,
		log:      log,
	}
}

// Run blocks probing the gateway until ctx is cancelled. Call it in its own
// goroutine.
func (m *GatewayHealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	failures := 0
	alerted := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := m.gateway.HealthCheck(ctx)
			if err == nil {
				if failures > 0 {
					m.log.Info().Int("failures", failures).Msg("upstream gateway recovered")
				}
				failures = 0
				alerted = false
				continue
			}

			failures++
			m.log.Warn().Err(err).Int("consecutive_failures", failures).Msg("upstream gateway probe failed")

			if failures >= degradedAfterFailures && !alerted {
				m.notifier.GatewayDegraded(ctx, err.Error())
				alerted = true
			}
		}
	}
}
