package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"golang.org/x/crypto/bcrypt"
)

const userIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateUserID returns a 12 character alphanumeric id.
func GenerateUserID() (string, error) {
	return gonanoid.Generate(userIDAlphabet, 12)
}

var verificationCodeSpan = big.NewInt(900000)

// GenerateVerificationCode returns a 6 digit code drawn uniformly from
// [100000, 999999].
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, verificationCodeSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", 100000+n.Int64()), nil
}

// GenerateResetToken returns 32 random bytes as 64 hex characters.
func GenerateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateToken produces the token string for kind.
func GenerateToken(kind entity.TokenKind) (string, error) {
	switch kind {
	case entity.TokenKindEmailVerification:
		return GenerateVerificationCode()
	case entity.TokenKindPasswordReset:
		return GenerateResetToken()
	default:
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
}

// HashPassword hashes password with bcrypt. cost is raised to the floor.
func HashPassword(password string, cost int) (string, error) {
	if cost < constants.MinPasswordHashCost {
		cost = constants.MinPasswordHashCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func stringPtr(s string) *string {
	return &s
}
