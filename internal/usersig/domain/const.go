package domain

import "time"

// Version is the credential format version understood by TRTC verifiers.
const Version = "2.0"

const (
	// DefaultExpire is the validity applied when a caller does not request one.
	DefaultExpire = 24 * time.Hour
	// MaxExpire bounds the validity of a single credential.
	MaxExpire = 7 * 24 * time.Hour

	// HealthcheckIdentifier is the subject signed by the credential self-check.
	HealthcheckIdentifier = "healthcheck"
	// HealthcheckExpire is the validity of the self-check credential.
	HealthcheckExpire = 60 * time.Second

	// MaxIdentifierLength is the longest subject identifier TRTC accepts, in bytes.
	MaxIdentifierLength = 32
)

// IssuanceKind classifies who a credential was issued for.
type IssuanceKind string

const (
	// KindUser marks credentials issued to end users (browser clients).
	KindUser IssuanceKind = "user"
	// KindAgent marks credentials issued to automated conversation agents.
	KindAgent IssuanceKind = "agent"
)
