package service

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

func TestDecodeUserSig_WorkedToken(t *testing.T) {
	credential, compressed, err := DecodeUserSig(workedToken)
	require.NoError(t, err)

	assert.False(t, compressed)
	assert.Equal(t, &usersigDomain.Credential{
		Version:    "2.0",
		SDKAppID:   testAppID,
		Identifier: "user-42",
		Expire:     86400,
		Time:       1700000000,
		Signature:  workedSignature,
	}, credential)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	signer := NewUserSigSigner(fixedClock(1700000000))

	for _, compress := range []bool{true, false} {
		token, credential, err := signer.Issue(workedInput(), usersigDomain.IssueOptions{Compress: compress})
		require.NoError(t, err)

		decoded, compressed, err := DecodeUserSig(token)
		require.NoError(t, err)
		assert.Equal(t, compress, compressed)
		assert.Equal(t, credential, decoded)
	}
}

func TestEncodeUserSig_Compressed(t *testing.T) {
	credential, _, err := DecodeUserSig(workedToken)
	require.NoError(t, err)

	token, err := EncodeUserSig(credential, true)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(strings.NewReplacer("*", "+", "-", "/", "_", "=").Replace(token))
	require.NoError(t, err)

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	var inflated bytes.Buffer
	_, err = inflated.ReadFrom(zr)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"TLS.ver":"2.0","TLS.sdkappid":1400000000,"TLS.identifier":"user-42",`+
			`"TLS.expire":86400,"TLS.time":1700000000,"TLS.sig":"`+workedSignature+`"}`,
		inflated.String(),
	)
}

func TestDecodeUserSig_Malformed(t *testing.T) {
	encode := func(s string) string {
		return strings.NewReplacer("+", "*", "/", "-", "=", "_").Replace(base64.StdEncoding.EncodeToString([]byte(s)))
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not base64", token: "%%%"},
		{name: "not json", token: encode("hello world")},
		{name: "string app id", token: encode(`{"TLS.ver":"2.0","TLS.sdkappid":"1400000000","TLS.identifier":"a","TLS.expire":1,"TLS.time":1,"TLS.sig":"x"}`)},
		{name: "missing signature", token: encode(`{"TLS.ver":"2.0","TLS.sdkappid":1,"TLS.identifier":"a","TLS.expire":1,"TLS.time":1}`)},
		{name: "truncated zlib", token: encode("\x78\x9c\x01\x02")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			credential, _, err := DecodeUserSig(tt.token)
			assert.Nil(t, credential)
			assert.ErrorIs(t, err, usersigDomain.ErrMalformedToken)
		})
	}
}

func TestHasZlibHeader(t *testing.T) {
	assert.True(t, hasZlibHeader([]byte{0x78, 0x9c}))
	assert.True(t, hasZlibHeader([]byte{0x78, 0x01}))
	assert.True(t, hasZlibHeader([]byte{0x78, 0xda}))
	assert.False(t, hasZlibHeader([]byte("{\"")))
	assert.False(t, hasZlibHeader([]byte{0x78}))
}
