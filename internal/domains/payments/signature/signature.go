// Package signature authenticates inbound crypto-provider webhooks. Both
// Coinbase Commerce and NOWPayments sign the raw request body with
// HMAC-SHA256 over a shared secret, hex encoded.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Compute returns the lowercase hex HMAC-SHA256 of payload under secret.
func Compute(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the provided signature against the expected HMAC using a
// constant-time comparison. Missing signature or secret always fails.
func Verify(payload []byte, provided, secret string) bool {
	provided = strings.TrimSpace(provided)
	if provided == "" || secret == "" {
		return false
	}
	expected := Compute(payload, secret)
	return hmac.Equal([]byte(strings.ToLower(provided)), []byte(expected))
}
