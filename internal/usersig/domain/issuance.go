package domain

import (
	"time"

	"github.com/google/uuid"
)

// Issuance is an audit record of a credential handed out by the service.
// The token itself is never stored; Fingerprint identifies it.
type Issuance struct {
	ID            uuid.UUID
	RequestID     string
	SDKAppID      uint64
	Identifier    string
	Kind          IssuanceKind
	Expire        int64
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Fingerprint   string
	Compressed    bool
	CallerSubject string
	CreatedAt     time.Time
}

// IssueUserSigInput contains the parameters for issuing a UserSig to an end user.
type IssueUserSigInput struct {
	Identifier    string
	Expire        time.Duration
	UserBuf       []byte
	RequestID     string
	CallerSubject string
}

// IssueUserSigOutput contains an issued UserSig and the values it encodes.
type IssueUserSigOutput struct {
	SDKAppID   uint64
	Identifier string
	UserSig    string
	Expire     int64
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// VerifyUserSigOutput reports the outcome of verifying a UserSig against the
// configured credentials. Credential is nil when the token could not be decoded.
type VerifyUserSigOutput struct {
	Credential *Credential
	Compressed bool
	Valid      bool
	Reason     string
}

// HealthReport describes whether the service can issue credentials a verifier will accept.
type HealthReport struct {
	OK       bool
	Env      HealthEnv
	Checks   HealthChecks
	Messages []string
}

// HealthEnv summarizes the credential configuration without revealing secrets.
type HealthEnv struct {
	SDKAppID          uint64
	HasSDKSecretKey   bool
	SecretSource      string
	HasCloudSecretID  bool
	Region            string
	CompressUserSigs  bool
	IssuanceLogActive bool
}

// HealthChecks holds the individual self-check results.
type HealthChecks struct {
	UserSigOK     bool
	UserSigLength int
	RoundTripOK   bool
}
