package utils

import (
	"encoding/base64"
	"testing"
)

type testPayload struct {
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	cipher, err := NewSolutionCipher(key)
	if err != nil {
		t.Fatalf("NewSolutionCipher failed: %v", err)
	}

	original := testPayload{Code: "def solve():\n    return 42", Timestamp: "2026-01-02T15:04:05Z"}
	encrypted, err := cipher.Encrypt(original)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if encrypted == original.Code {
		t.Fatal("ciphertext equals plaintext")
	}

	var decrypted testPayload
	if err := cipher.Decrypt(encrypted, &decrypted); err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if decrypted != original {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", decrypted, original)
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	key, _ := GenerateKey()
	cipher, err := NewSolutionCipher(key)
	if err != nil {
		t.Fatalf("NewSolutionCipher failed: %v", err)
	}

	payload := testPayload{Code: "x = 1"}
	a, _ := cipher.Encrypt(payload)
	b, _ := cipher.Encrypt(payload)
	if a == b {
		t.Fatal("two encryptions of the same payload produced identical ciphertexts")
	}
}

func TestNewSolutionCipherRejectsBadKeys(t *testing.T) {
	if _, err := NewSolutionCipher("not base64!!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	short := base64.StdEncoding.EncodeToString([]byte("tooshort"))
	if _, err := NewSolutionCipher(short); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	key, _ := GenerateKey()
	cipher, _ := NewSolutionCipher(key)

	encrypted, err := cipher.Encrypt(testPayload{Code: "secret"})
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(encrypted)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	var out testPayload
	if err := cipher.Decrypt(tampered, &out); err == nil {
		t.Fatal("expected error for tampered ciphertext")
	}
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	keyA, _ := GenerateKey()
	keyB, _ := GenerateKey()
	cipherA, _ := NewSolutionCipher(keyA)
	cipherB, _ := NewSolutionCipher(keyB)

	encrypted, err := cipherA.Encrypt(testPayload{Code: "secret"})
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	var out testPayload
	if err := cipherB.Decrypt(encrypted, &out); err == nil {
		t.Fatal("expected error when decrypting with a different key")
	}
}
