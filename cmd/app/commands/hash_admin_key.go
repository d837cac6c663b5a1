package commands

import (
	"fmt"
	"io"

	usersigService "github.com/speakwell/rtcauth/internal/usersig/service"
)

// RunHashAdminKey prints the ADMIN_API_KEY_HASH for plainKey, generating a new key when
// plainKey is empty. The hash is single-quoted since PHC strings contain '$'.
func RunHashAdminKey(
	adminKeyService usersigService.AdminKeyService,
	w io.Writer,
	plainKey string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	generated := plainKey == ""

	var hashedKey string
	var err error
	if generated {
		plainKey, hashedKey, err = adminKeyService.GenerateKey()
	} else {
		hashedKey, err = adminKeyService.HashKey(plainKey)
	}
	if err != nil {
		return fmt.Errorf("failed to hash admin key: %w", err)
	}

	if format == "json" {
		result := map[string]string{"admin_api_key_hash": hashedKey}
		if generated {
			result["admin_api_key"] = plainKey
		}
		return writeJSON(w, result)
	}

	if generated {
		_, _ = fmt.Fprintln(w, "# Admin key (store it securely, it cannot be recovered from the hash)")
		_, _ = fmt.Fprintf(w, "# %s\n", plainKey)
		_, _ = fmt.Fprintln(w)
	}
	_, _ = fmt.Fprintf(w, "ADMIN_API_KEY_HASH='%s'\n", hashedKey)
	return nil
}
