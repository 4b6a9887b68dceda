package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayload computes the hex HMAC-SHA256 signature the webhook providers
// put in the X-Webhook-Signature header.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature checks a webhook body against its signature header
// in constant time. An empty signature never verifies.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := SignPayload(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
