package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/hkdf"

	apperrors "github.com/speakwell/rtcauth/internal/errors"
	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

const fingerprintInfo = "usersig-fingerprint-v1"

type fingerprinter struct {
	key []byte
}

// NewFingerprinter derives a dedicated fingerprint key from the signing secret with
// HKDF-SHA256, so the audit trail never holds material that verifies as a UserSig.
func NewFingerprinter(secret []byte) (Fingerprinter, error) {
	if len(secret) == 0 {
		return nil, usersigDomain.ErrMissingSecret
	}

	reader := hkdf.New(sha256.New, secret, nil, []byte(fingerprintInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive fingerprint key")
	}

	return &fingerprinter{key: key}, nil
}

// Fingerprint returns hex(HMAC-SHA256(derivedKey, token)).
func (f *fingerprinter) Fingerprint(token string) string {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
