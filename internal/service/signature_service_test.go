package service

import (
	"strings"
	"testing"

	"github.com/hypersoftss/elopaygateway-sub002/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestDigestSignatureService_Sign_KnownDigest(t *testing.T) {
	svc := NewDigestSignatureService()

	// md5("abc") is a fixed reference value.
	sign := svc.Sign([]string{"a", "b", "c"})
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", sign)
}

func TestDigestSignatureService_Sign_Format(t *testing.T) {
	svc := NewDigestSignatureService()

	parts := domain.PayinSignParts("m-1", "100.50", "ORD-1", "secret", "https://merchant.example/cb")
	sign := svc.Sign(parts)

	assert.Len(t, sign, 32)
	assert.Equal(t, strings.ToLower(sign), sign)
	assert.Regexp(t, "^[0-9a-f]{32}$", sign)
}

func TestDigestSignatureService_Verify(t *testing.T) {
	svc := NewDigestSignatureService()
	parts := domain.PayinSignParts("m-1", "100.50", "ORD-1", "secret", "https://merchant.example/cb")
	sign := svc.Sign(parts)

	assert.True(t, svc.Verify(parts, sign))
	assert.True(t, svc.Verify(parts, strings.ToUpper(sign)), "uppercase candidate must verify")
	assert.False(t, svc.Verify(parts, sign[:31]+"0"))
	assert.False(t, svc.Verify(parts, ""))
}

func TestDigestSignatureService_Verify_FieldOrderMatters(t *testing.T) {
	svc := NewDigestSignatureService()
	parts := domain.PayinSignParts("m-1", "100.50", "ORD-1", "secret", "https://merchant.example/cb")
	sign := svc.Sign(parts)

	swapped := domain.PayinSignParts("m-1", "ORD-1", "100.50", "secret", "https://merchant.example/cb")
	assert.False(t, svc.Verify(swapped, sign))
}

func TestDigestSignatureService_Verify_AmountStringExactness(t *testing.T) {
	svc := NewDigestSignatureService()

	// "100.50" and "100.5" are the same number but different byte strings;
	// the digest must distinguish them.
	sign := svc.Sign(domain.PayinSignParts("m-1", "100.50", "ORD-1", "secret", "cb"))
	assert.False(t, svc.Verify(domain.PayinSignParts("m-1", "100.5", "ORD-1", "secret", "cb"), sign))
}

func TestDigestSignatureService_PayoutParts(t *testing.T) {
	svc := NewDigestSignatureService()
	parts := domain.PayoutSignParts("1234567890", "400.00", "HDFC", "https://merchant.example/cb", "HDFC0001", "m-1", "Jane Roe", "PO170001", "payout-secret")
	sign := svc.Sign(parts)

	assert.True(t, svc.Verify(parts, sign))

	wrongKey := domain.PayoutSignParts("1234567890", "400.00", "HDFC", "https://merchant.example/cb", "HDFC0001", "m-1", "Jane Roe", "PO170001", "other-secret")
	assert.False(t, svc.Verify(wrongKey, sign))
}
