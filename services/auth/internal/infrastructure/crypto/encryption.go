package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidPayload is returned by Decrypt when the payload is not "ivhex:cipherhex".
var ErrInvalidPayload = errors.New("invalid encrypted payload format")

// EncryptionService encrypts short secrets stored in the database.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(payload string) (string, error)
}

// AESEncryptionService uses AES-256 in CTR mode with a random 16 byte IV.
type AESEncryptionService struct {
	key []byte
}

// NewAESEncryptionService expects a 32 byte key as 64 hex characters.
func NewAESEncryptionService(hexKey string) (*AESEncryptionService, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.New("invalid encryption key format")
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}
	return &AESEncryptionService{key: key}, nil
}

// Encrypt returns "ivhex:cipherhex".
func (s *AESEncryptionService) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, []byte(plaintext))

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

func (s *AESEncryptionService) Decrypt(payload string) (string, error) {
	ivHex, cipherHex, ok := strings.Cut(payload, ":")
	if !ok {
		return "", ErrInvalidPayload
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrInvalidPayload
	}

	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ciphertext)

	return string(plaintext), nil
}
