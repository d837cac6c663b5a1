// Package domain defines the TRTC UserSig credential model and its invariants.
package domain

import (
	"time"
)

// Credential is the signed record carried inside a UserSig.
//
// The JSON field names and the numeric typing of SDKAppID, Expire and Time are fixed
// by the remote verifier; any deviation invalidates the token.
type Credential struct {
	Version    string `json:"TLS.ver"`
	SDKAppID   uint64 `json:"TLS.sdkappid"`
	Identifier string `json:"TLS.identifier"`
	Expire     int64  `json:"TLS.expire"`
	Time       int64  `json:"TLS.time"`
	Signature  string `json:"TLS.sig"`
	UserBuf    string `json:"TLS.userbuf,omitempty"`
}

// IssuedAt returns the signing time.
func (c *Credential) IssuedAt() time.Time {
	return time.Unix(c.Time, 0).UTC()
}

// ExpiresAt returns the first instant at which the credential is no longer accepted.
func (c *Credential) ExpiresAt() time.Time {
	return time.Unix(c.Time+c.Expire, 0).UTC()
}

// ExpiredAt reports whether the credential is no longer valid at now.
func (c *Credential) ExpiredAt(now time.Time) bool {
	return now.Unix() >= c.Time+c.Expire
}

// IssueInput holds the parameters of a single signing operation.
type IssueInput struct {
	SDKAppID   uint64
	Secret     []byte
	Identifier string
	Expire     time.Duration
	// UserBuf is an optional opaque buffer bound into the signature (privilege maps).
	UserBuf []byte
}

// IssueOptions selects the token encoding.
type IssueOptions struct {
	// Compress zlib-compresses the serialized record before base64 encoding.
	Compress bool
}
