package commands

import (
	"context"
	"fmt"
	"io"

	usersigService "github.com/speakwell/rtcauth/internal/usersig/service"
)

// RunEncryptSDKSecret encrypts the SDK secret key through a gocloud.dev keeper and prints
// the environment variables that make the service decrypt it at startup.
//
// Supported key URIs: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://.
// Use base64key:// for local development only.
func RunEncryptSDKSecret(ctx context.Context, w io.Writer, keyURI, secret string) error {
	if keyURI == "" {
		return fmt.Errorf(
			"--key-uri is required\n\nFor local development, use:\n  --key-uri=\"base64key://<32-byte-base64-key>\"\n\nFor production, use a cloud KMS key:\n  --key-uri=\"gcpkms://projects/.../cryptoKeys/...\"\n  --key-uri=\"awskms:///alias/...\"",
		)
	}
	if secret == "" {
		return fmt.Errorf("--secret is required (or set TENCENT_SDK_SECRET_KEY)")
	}

	ciphertext, err := usersigService.EncryptSecretKey(ctx, keyURI, []byte(secret))
	if err != nil {
		return fmt.Errorf("failed to encrypt sdk secret key: %w", err)
	}

	_, _ = fmt.Fprintln(w, "# SDK secret key configuration (KMS mode)")
	_, _ = fmt.Fprintln(w, "# Copy these environment variables and remove TENCENT_SDK_SECRET_KEY")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "KMS_KEY_URI=\"%s\"\n", keyURI)
	_, _ = fmt.Fprintf(w, "TENCENT_SDK_SECRET_KEY_CIPHERTEXT=\"%s\"\n", ciphertext)
	return nil
}
