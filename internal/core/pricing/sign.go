package pricing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignBody computes the hex HMAC-SHA256 signature of a request body.
// The pricing system verifies it against the shared secret tied to the API
// key; a mismatch is rejected before any variant is created.
func SignBody(secret, body []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature verifies a body signature using constant-time comparison.
// Constant-time comparison prevents timing attacks. Used by tests standing in
// for the pricing system.
func VerifySignature(secret, body []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	h := hmac.New(sha256.New, secret)
	h.Write(body)
	return hmac.Equal(expected, h.Sum(nil))
}
