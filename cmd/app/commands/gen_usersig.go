package commands

import (
	"fmt"
	"io"
	"time"

	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
	"github.com/speakwell/rtcauth/internal/usersig/http/dto"
	usersigService "github.com/speakwell/rtcauth/internal/usersig/service"
)

// GenUserSigParams holds the inputs of an offline signing run.
type GenUserSigParams struct {
	SDKAppID uint64
	Secret   []byte
	UserID   string
	Expire   time.Duration
	Compress bool
	Format   string
}

// RunGenUserSig signs a UserSig with the configured credentials without going through the
// API. Offline issuances are not recorded in the audit trail.
func RunGenUserSig(signer usersigService.UserSigSigner, w io.Writer, params GenUserSigParams) error {
	if err := validateFormat(params.Format); err != nil {
		return err
	}

	token, credential, err := signer.Issue(
		&usersigDomain.IssueInput{
			SDKAppID:   params.SDKAppID,
			Secret:     params.Secret,
			Identifier: params.UserID,
			Expire:     params.Expire,
		},
		usersigDomain.IssueOptions{Compress: params.Compress},
	)
	if err != nil {
		return fmt.Errorf("failed to generate usersig: %w", err)
	}

	if params.Format == "json" {
		return writeJSON(w, dto.MapIssueOutputToResponse(&usersigDomain.IssueUserSigOutput{
			SDKAppID:   credential.SDKAppID,
			Identifier: credential.Identifier,
			UserSig:    token,
			Expire:     credential.Expire,
			IssuedAt:   credential.IssuedAt(),
			ExpiresAt:  credential.ExpiresAt(),
		}))
	}

	_, _ = fmt.Fprintf(w, "# UserSig for %s (sdkAppId=%d, expires %s)\n",
		credential.Identifier, credential.SDKAppID, credential.ExpiresAt().Format(time.RFC3339))
	_, _ = fmt.Fprintln(w, token)
	return nil
}
