package domain

import (
	"github.com/speakwell/rtcauth/internal/errors"
)

// Credential issuance and verification errors.
var (
	// ErrMissingAppID indicates the TRTC application id is not configured.
	ErrMissingAppID = errors.Wrap(errors.ErrMisconfigured, "sdk app id is not configured")

	// ErrMissingSecret indicates the shared signing key is not configured.
	ErrMissingSecret = errors.Wrap(errors.ErrMisconfigured, "sdk secret key is not configured")

	// ErrInvalidIdentifier indicates the subject identifier is blank.
	ErrInvalidIdentifier = errors.Wrap(errors.ErrInvalidInput, "identifier must not be blank")

	// ErrInvalidExpire indicates the requested validity is outside (0, MaxExpire] or
	// not a whole number of seconds.
	ErrInvalidExpire = errors.Wrap(
		errors.ErrInvalidInput,
		"expire must be a whole number of seconds between 1 second and 7 days",
	)

	// ErrMalformedToken indicates a token could not be decoded into a credential.
	ErrMalformedToken = errors.Wrap(errors.ErrInvalidInput, "malformed usersig")

	// ErrSignatureMismatch indicates the embedded signature does not match the shared secret.
	ErrSignatureMismatch = errors.Wrap(errors.ErrUnauthorized, "usersig signature mismatch")

	// ErrTokenExpired indicates the credential validity window has elapsed.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "usersig expired")

	// ErrAppIDMismatch indicates the credential was issued for another application.
	ErrAppIDMismatch = errors.Wrap(errors.ErrUnauthorized, "usersig issued for another sdk app id")

	// ErrIssuanceLogDisabled indicates an operation needs the issuance audit trail.
	ErrIssuanceLogDisabled = errors.Wrap(errors.ErrNotFound, "issuance log is not enabled")
)
