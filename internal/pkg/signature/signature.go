package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
)

// Verifier authenticates raw webhook bodies.
type Verifier interface {
	Sign(body []byte) string
	Verify(body []byte, signature string) error
}

// HMACVerifier implements Verifier using HMAC-SHA256 over the raw body,
// hex encoded, matching what the payment provider sends in the
// signature header.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier builds HMACVerifier with the provided shared secret.
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Sign computes the signature for the given body.
func (v *HMACVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the provided signature against the body in constant time.
func (v *HMACVerifier) Verify(body []byte, signature string) error {
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return domainErrors.ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return domainErrors.ErrInvalidSignature
	}
	return nil
}
