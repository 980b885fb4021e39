package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Header is the request header carrying the vendor signature
const Header = "X-Webhook-Signature"

// Prefix optionally prepended by the vendor to the hex digest
const Prefix = "sha256="

var (
	ErrMissingSignature = errors.New("signature header is required")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Sign computes the hex-encoded HMAC-SHA256 of the raw body with the
// shared secret. Used by tests and by tooling that replays callbacks.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

/* Verify recomputes the body signature and compares it to the supplied one.
 * The comparison is constant-time; a plain string equality would leak the
 * matching prefix length through timing.
 */
func Verify(secret string, body []byte, provided string) error {
	if secret == "" {
		// no secret configured: validation trivially passes
		return nil
	}
	if provided == "" {
		return ErrMissingSignature
	}

	provided = strings.TrimPrefix(provided, Prefix)
	providedMAC, err := hex.DecodeString(provided)
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(providedMAC, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}
