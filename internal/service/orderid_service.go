package service

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// OrderNoService implements ports.OrderNoGenerator: a millisecond timestamp
// plus a random six-digit suffix under a class prefix. No global sequence is
// kept; the storage unique constraint is the authority and a collision
// surfaces as DuplicateOrder for the caller to retry.
type OrderNoService struct {
	now func() time.Time
}

// NewOrderNoService creates a new order number generator.
func NewOrderNoService() *OrderNoService {
	return &OrderNoService{now: time.Now}
}

// Generate returns a fresh order number such as "PI1708092000123042517".
func (s *OrderNoService) Generate(prefix string) string {
	return fmt.Sprintf("%s%d%06d", prefix, s.now().UnixMilli(), rand.IntN(1_000_000))
}
