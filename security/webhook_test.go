package security

import "testing"

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"events":[{"id":"evt_1","type":"user.created"}]}`)

	sig := SignPayload(secret, body)
	if !VerifyWebhookSignature(secret, body, sig) {
		t.Error("Expected valid signature to verify")
	}

	if VerifyWebhookSignature(secret, body, "deadbeef") {
		t.Error("Expected wrong signature to fail")
	}

	if VerifyWebhookSignature(secret, body, "") {
		t.Error("Expected empty signature to fail")
	}

	if VerifyWebhookSignature("other-secret", body, sig) {
		t.Error("Expected signature under a different secret to fail")
	}

	if VerifyWebhookSignature(secret, []byte(`{"tampered":true}`), sig) {
		t.Error("Expected tampered body to fail")
	}
}
