// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"
	"time"

	validation "github.com/jellydator/validation"

	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
	customValidation "github.com/speakwell/rtcauth/internal/validation"
)

// maxExpireSeconds mirrors usersigDomain.MaxExpire for request validation.
const maxExpireSeconds = int64(usersigDomain.MaxExpire / time.Second)

// IssueUserSigRequest contains the parameters for issuing a UserSig to an end user.
// Expire is in seconds; zero selects the configured default.
type IssueUserSigRequest struct {
	UserID  string `json:"userId"`
	Expire  int64  `json:"expire"`
	UserBuf string `json:"userBuf,omitempty"`
}

// Validate checks if the issue request is valid.
func (r *IssueUserSigRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			customValidation.MaxBytes(usersigDomain.MaxIdentifierLength),
		),
		validation.Field(&r.Expire,
			validation.Min(int64(0)),
			validation.Max(maxExpireSeconds),
		),
		validation.Field(&r.UserBuf,
			customValidation.Base64,
		),
	)
}

// ToInput converts a validated request into use case input.
func (r *IssueUserSigRequest) ToInput(requestID, callerSubject string) *usersigDomain.IssueUserSigInput {
	input := &usersigDomain.IssueUserSigInput{
		Identifier:    r.UserID,
		Expire:        time.Duration(r.Expire) * time.Second,
		RequestID:     requestID,
		CallerSubject: callerSubject,
	}
	if r.UserBuf != "" {
		// Validate already rejected malformed base64.
		input.UserBuf, _ = base64.StdEncoding.DecodeString(r.UserBuf)
	}
	return input
}

// IssueAgentUserSigRequest contains the parameters for issuing the agent UserSig.
type IssueAgentUserSigRequest struct {
	Expire int64 `json:"expire"`
}

// Validate checks if the agent issue request is valid.
func (r *IssueAgentUserSigRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Expire,
			validation.Min(int64(0)),
			validation.Max(maxExpireSeconds),
		),
	)
}

// VerifyUserSigRequest contains a token to inspect.
type VerifyUserSigRequest struct {
	UserSig string `json:"userSig"`
}

// Validate checks if the verify request is valid.
func (r *VerifyUserSigRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserSig,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 4096),
		),
	)
}
