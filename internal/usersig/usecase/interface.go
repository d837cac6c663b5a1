// Package usecase defines the business operations of the UserSig credential service.
package usecase

import (
	"context"
	"time"

	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

// IssuanceRepository defines persistence operations for the issuance audit trail.
// Implementations must support transaction-aware operations via context propagation.
type IssuanceRepository interface {
	// Create stores a new issuance record.
	Create(ctx context.Context, issuance *usersigDomain.Issuance) error

	// List retrieves issuances ordered by created_at descending with pagination.
	List(ctx context.Context, offset, limit int) ([]*usersigDomain.Issuance, error)

	// DeleteOlderThan removes issuances created before olderThan. With dryRun it only
	// counts matching rows.
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// UserSigUseCase defines the credential operations exposed to transports.
type UserSigUseCase interface {
	// Issue signs a UserSig for an end user. A zero Expire selects the configured default.
	//
	// When the issuance audit trail is enabled the issuance is recorded before the token is
	// returned; a recording failure is returned as an error and no token is handed out.
	//
	// Returns ErrMisconfigured when the application id or secret is absent and
	// ErrInvalidInput for a blank identifier or out of range validity.
	Issue(ctx context.Context, input *usersigDomain.IssueUserSigInput) (*usersigDomain.IssueUserSigOutput, error)

	// IssueAgent signs a UserSig for the configured conversation agent identifier.
	IssueAgent(ctx context.Context, requestID string, expire time.Duration) (*usersigDomain.IssueUserSigOutput, error)

	// Verify decodes a token and checks it against the configured credentials. A token a
	// verifier would reject is reported with Valid=false and a reason, not as an error.
	Verify(ctx context.Context, token string) (*usersigDomain.VerifyUserSigOutput, error)

	// HealthCheck signs and round-trips a short lived credential to prove the configuration
	// produces tokens a verifier accepts. It never records an issuance.
	HealthCheck(ctx context.Context) (*usersigDomain.HealthReport, error)

	// ListIssuances returns recorded issuances, newest first.
	// Returns ErrIssuanceLogDisabled when the audit trail is not enabled.
	ListIssuances(ctx context.Context, offset, limit int) ([]*usersigDomain.Issuance, error)

	// CleanIssuances deletes issuances older than the given number of days.
	// Use dryRun=true to preview the count without deleting.
	CleanIssuances(ctx context.Context, days int, dryRun bool) (int64, error)
}
