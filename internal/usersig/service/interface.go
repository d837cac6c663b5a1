// Package service implements the TRTC UserSig credential signer and the supporting
// cryptographic services: token decoding and verification, audit fingerprints,
// shared secret resolution through a KMS keeper, and admin key hashing.
package service

import (
	"context"

	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

// UserSigSigner issues and verifies UserSig credentials.
// Implementations read the current time from an injected clock so that issuance is
// deterministic for a fixed clock value.
type UserSigSigner interface {
	// Issue signs a new credential and returns the encoded token together with the
	// record it carries. Fails with a configuration error when the application id or
	// secret is absent, and with ErrInvalidInput for a blank identifier or out of
	// range validity.
	Issue(
		input *usersigDomain.IssueInput,
		options usersigDomain.IssueOptions,
	) (token string, credential *usersigDomain.Credential, err error)

	// Verify recomputes the signature of a decoded credential with the shared secret and
	// checks the application id and validity window. Returns nil when a compliant
	// verifier would accept the credential.
	Verify(credential *usersigDomain.Credential, sdkAppID uint64, secret []byte) error
}

// Fingerprinter derives stable, non-reversible identifiers for issued tokens.
type Fingerprinter interface {
	// Fingerprint returns a hex encoded keyed hash of the token.
	Fingerprint(token string) string
}

// SecretResolver resolves the shared signing key from its configured source.
type SecretResolver interface {
	// Resolve returns the plaintext signing key. Returns ErrMissingSecret when no
	// source is configured.
	Resolve(ctx context.Context) ([]byte, error)
}

// Keeper is the subset of *secrets.Keeper used to decrypt and encrypt the signing key.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// AdminKeyService generates and checks admin API keys.
type AdminKeyService interface {
	// GenerateKey creates a random admin key and its Argon2id hash.
	GenerateKey() (plainKey string, hashedKey string, err error)

	// HashKey hashes an operator supplied admin key.
	HashKey(plainKey string) (string, error)

	// CompareKey reports whether plainKey matches hashedKey.
	CompareKey(plainKey string, hashedKey string) bool
}
