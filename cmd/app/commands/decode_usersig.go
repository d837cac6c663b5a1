package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
	"github.com/speakwell/rtcauth/internal/usersig/http/dto"
	usersigService "github.com/speakwell/rtcauth/internal/usersig/service"
	usersigUseCase "github.com/speakwell/rtcauth/internal/usersig/usecase"
)

// decodeResult is the JSON shape of decode-usersig. Valid is only set when verifying.
type decodeResult struct {
	Compressed bool                    `json:"compressed"`
	Credential *dto.CredentialResponse `json:"credential"`
	Valid      *bool                   `json:"valid,omitempty"`
	Reason     string                  `json:"reason,omitempty"`
}

// RunDecodeUserSig prints the record carried by a UserSig. When verifier is non-nil the
// token is also checked against the configured credentials.
func RunDecodeUserSig(
	ctx context.Context,
	verifier usersigUseCase.UserSigUseCase,
	w io.Writer,
	token string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	token = strings.TrimSpace(token)

	var output *usersigDomain.VerifyUserSigOutput
	if verifier != nil {
		var err error
		output, err = verifier.Verify(ctx, token)
		if err != nil {
			return fmt.Errorf("failed to verify usersig: %w", err)
		}
		if output.Credential == nil {
			return fmt.Errorf("failed to decode usersig: %s", output.Reason)
		}
	} else {
		credential, compressed, err := usersigService.DecodeUserSig(token)
		if err != nil {
			return fmt.Errorf("failed to decode usersig: %w", err)
		}
		output = &usersigDomain.VerifyUserSigOutput{Credential: credential, Compressed: compressed}
	}

	response := dto.MapVerifyOutputToResponse(output)
	result := decodeResult{
		Compressed: response.Compressed,
		Credential: response.Credential,
	}
	if verifier != nil {
		result.Valid = &response.Valid
		result.Reason = response.Reason
	}

	if format == "json" {
		return writeJSON(w, result)
	}

	c := result.Credential
	_, _ = fmt.Fprintf(w, "Version:    %s\n", c.Version)
	_, _ = fmt.Fprintf(w, "SDKAppID:   %d\n", c.SDKAppID)
	_, _ = fmt.Fprintf(w, "UserID:     %s\n", c.UserID)
	_, _ = fmt.Fprintf(w, "IssuedAt:   %s\n", c.IssuedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "ExpiresAt:  %s (%ds)\n", c.ExpiresAt.Format(time.RFC3339), c.Expire)
	_, _ = fmt.Fprintf(w, "UserBuf:    %t\n", c.HasUserBuf)
	_, _ = fmt.Fprintf(w, "Compressed: %t\n", result.Compressed)
	if result.Valid != nil {
		if *result.Valid {
			_, _ = fmt.Fprintln(w, "Valid:      true")
		} else {
			_, _ = fmt.Fprintf(w, "Valid:      false (%s)\n", result.Reason)
		}
	}
	return nil
}
