package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignHex computes a hex-encoded HMAC-SHA256 over the exact raw payload bytes.
func SignHex(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHex compares a hex HMAC-SHA256 signature in constant time. The
// comparison runs over the decoded MACs, so case differences in the hex
// encoding do not matter.
func VerifyHex(secret string, payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := hmac.New(sha256.New, []byte(secret))
	expected.Write(payload)

	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(expected.Sum(nil), got)
}

// VerifyPrefixedHex verifies a "sha256="-prefixed hex HMAC, the GitHub-style
// encoding some providers use.
func VerifyPrefixedHex(secret string, payload []byte, signature string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(signature, prefix) {
		return false
	}
	return VerifyHex(secret, payload, strings.TrimPrefix(signature, prefix))
}
