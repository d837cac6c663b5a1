package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

type userSigSigner struct {
	now func() time.Time
}

// NewUserSigSigner creates a signer that reads the current time from now.
// A nil clock defaults to time.Now.
func NewUserSigSigner(now func() time.Time) UserSigSigner {
	if now == nil {
		now = time.Now
	}
	return &userSigSigner{now: now}
}

// Issue builds the credential record, signs its canonical string with HMAC-SHA256 and
// encodes it as a URL safe token.
func (s *userSigSigner) Issue(
	input *usersigDomain.IssueInput,
	options usersigDomain.IssueOptions,
) (string, *usersigDomain.Credential, error) {
	if err := validateIssueInput(input); err != nil {
		return "", nil, err
	}

	credential := &usersigDomain.Credential{
		Version:    usersigDomain.Version,
		SDKAppID:   input.SDKAppID,
		Identifier: input.Identifier,
		Expire:     int64(input.Expire / time.Second),
		Time:       s.now().Unix(),
	}
	if len(input.UserBuf) > 0 {
		credential.UserBuf = base64.StdEncoding.EncodeToString(input.UserBuf)
	}
	credential.Signature = computeSignature(input.Secret, CanonicalString(credential))

	token, err := EncodeUserSig(credential, options.Compress)
	if err != nil {
		return "", nil, err
	}

	return token, credential, nil
}

// Verify checks the application id, the signature and the validity window, in that order.
func (s *userSigSigner) Verify(credential *usersigDomain.Credential, sdkAppID uint64, secret []byte) error {
	if sdkAppID == 0 {
		return usersigDomain.ErrMissingAppID
	}
	if len(secret) == 0 {
		return usersigDomain.ErrMissingSecret
	}
	if credential.SDKAppID != sdkAppID {
		return usersigDomain.ErrAppIDMismatch
	}

	expected := computeSignature(secret, CanonicalString(credential))
	if !hmac.Equal([]byte(expected), []byte(credential.Signature)) {
		return usersigDomain.ErrSignatureMismatch
	}

	if credential.ExpiredAt(s.now()) {
		return usersigDomain.ErrTokenExpired
	}

	return nil
}

// CanonicalString renders the exact text the verifier hashes. Field order and the
// trailing newline on every line are significant. The userbuf line is only present
// when the credential carries a user buffer.
func CanonicalString(credential *usersigDomain.Credential) string {
	var b strings.Builder
	b.Grow(96 + len(credential.Identifier) + len(credential.UserBuf))

	b.WriteString("TLS.identifier:")
	b.WriteString(credential.Identifier)
	b.WriteString("\nTLS.sdkappid:")
	b.WriteString(strconv.FormatUint(credential.SDKAppID, 10))
	b.WriteString("\nTLS.time:")
	b.WriteString(strconv.FormatInt(credential.Time, 10))
	b.WriteString("\nTLS.expire:")
	b.WriteString(strconv.FormatInt(credential.Expire, 10))
	b.WriteString("\n")
	if credential.UserBuf != "" {
		b.WriteString("TLS.userbuf:")
		b.WriteString(credential.UserBuf)
		b.WriteString("\n")
	}

	return b.String()
}

// computeSignature returns base64(HMAC-SHA256(secret, canonical)) using the standard alphabet.
func computeSignature(secret []byte, canonical string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(canonical))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func validateIssueInput(input *usersigDomain.IssueInput) error {
	if input.SDKAppID == 0 {
		return usersigDomain.ErrMissingAppID
	}
	if len(input.Secret) == 0 {
		return usersigDomain.ErrMissingSecret
	}
	if strings.TrimSpace(input.Identifier) == "" {
		return usersigDomain.ErrInvalidIdentifier
	}
	if input.Expire < time.Second || input.Expire > usersigDomain.MaxExpire || input.Expire%time.Second != 0 {
		return usersigDomain.ErrInvalidExpire
	}
	return nil
}
