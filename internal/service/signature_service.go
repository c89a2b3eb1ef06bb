package service

import (
	"crypto/md5" //nolint:gosec // wire contract with the upstream processor
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// DigestSignatureService implements ports.SignatureService as a keyed MD5
// digest over the concatenated field list. The secret occupies a fixed
// position inside the part list (see domain.PayinSignParts/PayoutSignParts),
// so field order is the entirety of the contract.
type DigestSignatureService struct{}

// NewDigestSignatureService creates a new digest signature service.
func NewDigestSignatureService() *DigestSignatureService {
	return &DigestSignatureService{}
}

// Sign concatenates parts in order and returns the lowercase hex MD5 digest.
// Parts are joined without separators; amounts must be the exact decimal
// strings the caller supplied so signer and verifier byte-match.
func (s *DigestSignatureService) Sign(parts []string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ""))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// Verify checks candidate against the recomputed digest using a
// constant-time comparison. Case of the candidate hex is ignored.
func (s *DigestSignatureService) Verify(parts []string, candidate string) bool {
	expected := s.Sign(parts)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(candidate))) == 1
}
