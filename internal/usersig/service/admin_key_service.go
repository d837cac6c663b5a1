package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/speakwell/rtcauth/internal/errors"
)

// adminKeyPrefix marks generated keys so they are recognizable in logs and vaults.
const adminKeyPrefix = "rtca_"

// adminKeyService implements AdminKeyService using Argon2id.
type adminKeyService struct {
	hasher *pwdhash.PasswordHasher
}

// GenerateKey creates a 32-byte random admin key and its hash.
func (s *adminKeyService) GenerateKey() (string, string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate admin key")
	}

	plainKey := adminKeyPrefix + base64.RawURLEncoding.EncodeToString(randomBytes)

	hashedKey, err := s.HashKey(plainKey)
	if err != nil {
		return "", "", err
	}

	return plainKey, hashedKey, nil
}

// HashKey hashes an admin key.
func (s *adminKeyService) HashKey(plainKey string) (string, error) {
	if plainKey == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "admin key is empty")
	}
	hashedKey, err := s.hasher.Hash([]byte(plainKey))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash admin key")
	}
	return hashedKey, nil
}

// CompareKey verifies plainKey against hashedKey in constant time.
func (s *adminKeyService) CompareKey(plainKey string, hashedKey string) bool {
	if plainKey == "" || hashedKey == "" {
		return false
	}
	ok, err := s.hasher.Verify([]byte(plainKey), hashedKey)
	if err != nil {
		return false
	}
	return ok
}

// NewAdminKeyService creates an AdminKeyService with the Moderate Argon2id policy.
func NewAdminKeyService() AdminKeyService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &adminKeyService{
		hasher: hasher,
	}
}
