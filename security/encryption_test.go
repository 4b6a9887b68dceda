package security

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	InitializeEncryption("test-secret")

	plaintext := "billing-api-token-123"
	encrypted, err := Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if encrypted == plaintext {
		t.Error("Expected ciphertext to differ from plaintext")
	}

	decrypted, err := Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}

	if decrypted != plaintext {
		t.Errorf("Expected %q, got %q", plaintext, decrypted)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	InitializeEncryption("test-secret")

	if _, err := Decrypt("bm90LWEtcmVhbC1jaXBoZXJ0ZXh0"); err == nil {
		t.Error("Expected error decrypting garbage")
	}
}

func TestEncryptRequiresInitialization(t *testing.T) {
	encryptionKey = nil
	defer InitializeEncryption("test-secret")

	if _, err := Encrypt("x"); err == nil {
		t.Error("Expected error without initialized key")
	}
}
