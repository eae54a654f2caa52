package phonepe

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// ErrMissingSaltConfig means the deployment has no salt key or salt index
// configured. This is an operator problem, not an untrusted request, and is
// therefore distinct from a checksum mismatch.
var ErrMissingSaltConfig = errors.New("phonepe: salt key or salt index not configured")

const checksumSeparator = "###"

// Signer computes PhonePe X-VERIFY checksums over request and response bodies
// using the merchant's pre-shared salt key and salt index.
type Signer struct {
	saltKey   string
	saltIndex string
}

func NewSigner(saltKey, saltIndex string) (*Signer, error) {
	if saltKey == "" || saltIndex == "" {
		return nil, ErrMissingSaltConfig
	}
	return &Signer{saltKey: saltKey, saltIndex: saltIndex}, nil
}

// Checksum returns hex(SHA256(payload + saltKey)) + "###" + saltIndex.
func (s *Signer) Checksum(payload string) string {
	sum := sha256.Sum256([]byte(payload + s.saltKey))
	return hex.EncodeToString(sum[:]) + checksumSeparator + s.saltIndex
}

// Verify reports whether the X-VERIFY value supplied with a webhook matches the
// checksum of the raw (still base64-encoded) body. Comparison is constant-time.
func (s *Signer) Verify(body, xVerify string) bool {
	expected := s.Checksum(body)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(xVerify)) == 1
}
