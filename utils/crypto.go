package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
)

// SolutionCipher encrypts code solution payloads at rest. The key is supplied
// externally (SOLUTION_KEY, base64-encoded 32 bytes) so that ciphertexts stay
// recoverable across process restarts; rotating the key invalidates existing
// ciphertexts, which is acceptable for solution history.
type SolutionCipher struct {
	aead cipher.AEAD
}

// NewSolutionCipher builds a cipher from a base64-encoded 256-bit key.
func NewSolutionCipher(encodedKey string) (*SolutionCipher, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode solution key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("solution key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &SolutionCipher{aead: aead}, nil
}

// GenerateKey returns a fresh base64-encoded key. Used by tests and dev setups.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Encrypt marshals payload to JSON, seals it and returns the base64 ciphertext
// with the nonce prepended.
func (s *SolutionCipher) Encrypt(payload interface{}) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt, unmarshalling the plaintext into out.
func (s *SolutionCipher) Decrypt(encoded string, out interface{}) error {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(sealed) < s.aead.NonceSize() {
		return fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("failed to decrypt: %w", err)
	}
	return json.Unmarshal(plaintext, out)
}
