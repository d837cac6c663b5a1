package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	apperrors "github.com/speakwell/rtcauth/internal/errors"
	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// OpenKeeper opens a gocloud.dev keeper for keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func OpenKeeper(ctx context.Context, keyURI string) (Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

type secretResolver struct {
	plaintext  string
	ciphertext string
	keyURI     string
	openKeeper func(ctx context.Context, keyURI string) (Keeper, error)
}

// NewSecretResolver creates a resolver for the signing key. A base64 ciphertext with a
// key URI takes precedence over the plaintext value.
func NewSecretResolver(plaintext, ciphertext, keyURI string) SecretResolver {
	return &secretResolver{
		plaintext:  plaintext,
		ciphertext: ciphertext,
		keyURI:     keyURI,
		openKeeper: OpenKeeper,
	}
}

// Resolve returns the signing key, decrypting it through the keeper when configured.
func (r *secretResolver) Resolve(ctx context.Context) ([]byte, error) {
	if r.keyURI == "" || r.ciphertext == "" {
		if r.plaintext == "" {
			return nil, usersigDomain.ErrMissingSecret
		}
		return []byte(r.plaintext), nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(r.ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured, "sdk secret key ciphertext is not valid base64")
	}

	keeper, err := r.openKeeper(ctx, r.keyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = keeper.Close()
	}()

	secret, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt sdk secret key")
	}
	if len(secret) == 0 {
		return nil, usersigDomain.ErrMissingSecret
	}

	return secret, nil
}

// EncryptSecretKey encrypts plaintext with the keeper at keyURI and returns the base64
// ciphertext expected by TENCENT_SDK_SECRET_KEY_CIPHERTEXT.
func EncryptSecretKey(ctx context.Context, keyURI string, plaintext []byte) (string, error) {
	if len(plaintext) == 0 {
		return "", usersigDomain.ErrMissingSecret
	}

	keeper, err := OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = keeper.Close()
	}()

	ciphertext, err := keeper.Encrypt(ctx, plaintext)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encrypt sdk secret key")
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
