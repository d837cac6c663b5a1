package service

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/speakwell/rtcauth/internal/errors"
	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

// maxDecodedSize caps inflated token payloads.
const maxDecodedSize = 64 << 10

var (
	escaper   = strings.NewReplacer("+", "*", "/", "-", "=", "_")
	unescaper = strings.NewReplacer("*", "+", "-", "/", "_", "=")
)

// EncodeUserSig serializes the credential to compact JSON, optionally zlib-compresses
// it, and applies base64 with the verifier's URL safe substitutions.
func EncodeUserSig(credential *usersigDomain.Credential, compress bool) (string, error) {
	payload, err := json.Marshal(credential)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal usersig")
	}

	if compress {
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(payload); err != nil {
			return "", apperrors.Wrap(err, "failed to compress usersig")
		}
		if err := w.Close(); err != nil {
			return "", apperrors.Wrap(err, "failed to compress usersig")
		}
		payload = buf.Bytes()
	}

	return escaper.Replace(base64.StdEncoding.EncodeToString(payload)), nil
}

// DecodeUserSig reverses EncodeUserSig. Compressed and uncompressed tokens are both
// accepted; the second return value reports which one was given.
func DecodeUserSig(token string) (*usersigDomain.Credential, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false, usersigDomain.ErrMalformedToken
	}

	raw, err := base64.StdEncoding.DecodeString(unescaper.Replace(token))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", usersigDomain.ErrMalformedToken, err)
	}

	compressed := hasZlibHeader(raw)
	if compressed {
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", usersigDomain.ErrMalformedToken, err)
		}
		defer func() {
			_ = zr.Close()
		}()

		raw, err = io.ReadAll(io.LimitReader(zr, maxDecodedSize))
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", usersigDomain.ErrMalformedToken, err)
		}
	}

	var credential usersigDomain.Credential
	if err := json.Unmarshal(raw, &credential); err != nil {
		return nil, false, fmt.Errorf("%w: %v", usersigDomain.ErrMalformedToken, err)
	}

	if credential.Version == "" || credential.Identifier == "" || credential.Signature == "" {
		return nil, false, fmt.Errorf("%w: missing required fields", usersigDomain.ErrMalformedToken)
	}

	return &credential, compressed, nil
}

// hasZlibHeader reports whether b starts with a valid RFC 1950 header. A JSON object
// starts with '{' which never satisfies the CM=8 check.
func hasZlibHeader(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	if b[0]&0x0f != 8 {
		return false
	}
	return (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}
