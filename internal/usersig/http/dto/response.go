package dto

import (
	"time"

	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

// IssueUserSigResponse contains an issued UserSig. Field names match what TRTC web
// clients expect.
type IssueUserSigResponse struct {
	SDKAppID  uint64    `json:"sdkAppId"`
	UserID    string    `json:"userId"`
	UserSig   string    `json:"userSig"`
	Expire    int64     `json:"expire"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MapIssueOutputToResponse converts use case output to an API response.
func MapIssueOutputToResponse(output *usersigDomain.IssueUserSigOutput) IssueUserSigResponse {
	return IssueUserSigResponse{
		SDKAppID:  output.SDKAppID,
		UserID:    output.Identifier,
		UserSig:   output.UserSig,
		Expire:    output.Expire,
		IssuedAt:  output.IssuedAt,
		ExpiresAt: output.ExpiresAt,
	}
}

// CredentialResponse describes a decoded credential. The signature is omitted.
type CredentialResponse struct {
	Version    string    `json:"version"`
	SDKAppID   uint64    `json:"sdkAppId"`
	UserID     string    `json:"userId"`
	Time       int64     `json:"time"`
	Expire     int64     `json:"expire"`
	IssuedAt   time.Time `json:"issuedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	HasUserBuf bool      `json:"hasUserBuf"`
}

// VerifyUserSigResponse reports the outcome of a verification.
type VerifyUserSigResponse struct {
	Valid      bool                `json:"valid"`
	Reason     string              `json:"reason,omitempty"`
	Compressed bool                `json:"compressed"`
	Credential *CredentialResponse `json:"credential,omitempty"`
}

// MapVerifyOutputToResponse converts a verification report to an API response.
func MapVerifyOutputToResponse(output *usersigDomain.VerifyUserSigOutput) VerifyUserSigResponse {
	response := VerifyUserSigResponse{
		Valid:      output.Valid,
		Reason:     output.Reason,
		Compressed: output.Compressed,
	}
	if c := output.Credential; c != nil {
		response.Credential = &CredentialResponse{
			Version:    c.Version,
			SDKAppID:   c.SDKAppID,
			UserID:     c.Identifier,
			Time:       c.Time,
			Expire:     c.Expire,
			IssuedAt:   c.IssuedAt(),
			ExpiresAt:  c.ExpiresAt(),
			HasUserBuf: c.UserBuf != "",
		}
	}
	return response
}

// HealthEnvResponse summarizes credential configuration without secrets.
type HealthEnvResponse struct {
	SDKAppID          uint64 `json:"sdkAppId"`
	HasSDKSecretKey   bool   `json:"hasSdkSecretKey"`
	SecretSource      string `json:"secretSource"`
	HasSecretID       bool   `json:"hasSecretId"`
	Region            string `json:"region"`
	CompressUserSigs  bool   `json:"compressUserSigs"`
	IssuanceLogActive bool   `json:"issuanceLogActive"`
}

// HealthChecksResponse holds individual self-check results.
type HealthChecksResponse struct {
	UserSigOK     bool `json:"userSigOk"`
	UserSigLength int  `json:"userSigLength"`
	RoundTripOK   bool `json:"roundTripOk"`
}

// HealthResponse is the credential self-check report.
type HealthResponse struct {
	OK       bool                 `json:"ok"`
	Env      HealthEnvResponse    `json:"env"`
	Checks   HealthChecksResponse `json:"checks"`
	Messages []string             `json:"messages"`
}

// MapHealthReportToResponse converts a health report to an API response.
func MapHealthReportToResponse(report *usersigDomain.HealthReport) HealthResponse {
	messages := report.Messages
	if messages == nil {
		messages = []string{}
	}
	return HealthResponse{
		OK: report.OK,
		Env: HealthEnvResponse{
			SDKAppID:          report.Env.SDKAppID,
			HasSDKSecretKey:   report.Env.HasSDKSecretKey,
			SecretSource:      report.Env.SecretSource,
			HasSecretID:       report.Env.HasCloudSecretID,
			Region:            report.Env.Region,
			CompressUserSigs:  report.Env.CompressUserSigs,
			IssuanceLogActive: report.Env.IssuanceLogActive,
		},
		Checks: HealthChecksResponse{
			UserSigOK:     report.Checks.UserSigOK,
			UserSigLength: report.Checks.UserSigLength,
			RoundTripOK:   report.Checks.RoundTripOK,
		},
		Messages: messages,
	}
}

// IssuanceResponse represents an audit trail entry.
type IssuanceResponse struct {
	ID            string    `json:"id"`
	RequestID     string    `json:"requestId,omitempty"`
	SDKAppID      uint64    `json:"sdkAppId"`
	UserID        string    `json:"userId"`
	Kind          string    `json:"kind"`
	Expire        int64     `json:"expire"`
	IssuedAt      time.Time `json:"issuedAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
	Fingerprint   string    `json:"fingerprint"`
	Compressed    bool      `json:"compressed"`
	CallerSubject string    `json:"callerSubject,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ListIssuancesResponse is a page of audit trail entries.
type ListIssuancesResponse struct {
	Data []IssuanceResponse `json:"data"`
}

// MapIssuancesToListResponse converts domain issuances to a list API response.
func MapIssuancesToListResponse(issuances []*usersigDomain.Issuance) ListIssuancesResponse {
	data := make([]IssuanceResponse, 0, len(issuances))
	for _, i := range issuances {
		data = append(data, IssuanceResponse{
			ID:            i.ID.String(),
			RequestID:     i.RequestID,
			SDKAppID:      i.SDKAppID,
			UserID:        i.Identifier,
			Kind:          string(i.Kind),
			Expire:        i.Expire,
			IssuedAt:      i.IssuedAt,
			ExpiresAt:     i.ExpiresAt,
			Fingerprint:   i.Fingerprint,
			Compressed:    i.Compressed,
			CallerSubject: i.CallerSubject,
			CreatedAt:     i.CreatedAt,
		})
	}
	return ListIssuancesResponse{Data: data}
}
