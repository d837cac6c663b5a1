package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
	usersigMocks "github.com/speakwell/rtcauth/internal/usersig/usecase/mocks"
)

func TestRunDecodeUserSig(t *testing.T) {
	ctx := context.Background()

	t.Run("decode-text", func(t *testing.T) {
		var out bytes.Buffer
		err := RunDecodeUserSig(ctx, nil, &out, workedExampleToken+"\n", "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "SDKAppID:   1400000000")
		assert.Contains(t, out.String(), "UserID:     user-42")
		assert.Contains(t, out.String(), "2023-11-15T22:13:20Z (86400s)")
		assert.Contains(t, out.String(), "Compressed: false")
		assert.NotContains(t, out.String(), "Valid:")
	})

	t.Run("decode-json", func(t *testing.T) {
		var out bytes.Buffer
		err := RunDecodeUserSig(ctx, nil, &out, workedExampleToken, "json")

		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.NotContains(t, result, "valid")
		credential := result["credential"].(map[string]any)
		assert.Equal(t, "user-42", credential["userId"])
		assert.Equal(t, "2.0", credential["version"])
	})

	t.Run("decode-malformed", func(t *testing.T) {
		err := RunDecodeUserSig(ctx, nil, &bytes.Buffer{}, "not-a-token", "text")

		require.Error(t, err)
		assert.ErrorIs(t, err, usersigDomain.ErrMalformedToken)
	})

	t.Run("verify-expired", func(t *testing.T) {
		mockUseCase := &usersigMocks.MockUserSigUseCase{}
		mockUseCase.On("Verify", ctx, workedExampleToken).Return(&usersigDomain.VerifyUserSigOutput{
			Credential: &usersigDomain.Credential{
				Version:    usersigDomain.Version,
				SDKAppID:   1400000000,
				Identifier: "user-42",
				Expire:     86400,
				Time:       1700000000,
			},
			Valid:  false,
			Reason: "expired",
		}, nil).Once()

		var out bytes.Buffer
		err := RunDecodeUserSig(ctx, mockUseCase, &out, workedExampleToken, "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Valid:      false (expired)")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("verify-json", func(t *testing.T) {
		mockUseCase := &usersigMocks.MockUserSigUseCase{}
		mockUseCase.On("Verify", ctx, workedExampleToken).Return(&usersigDomain.VerifyUserSigOutput{
			Credential: &usersigDomain.Credential{Identifier: "user-42"},
			Valid:      true,
		}, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunDecodeUserSig(ctx, mockUseCase, &out, workedExampleToken, "json"))

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, true, result["valid"])
	})

	t.Run("verify-malformed", func(t *testing.T) {
		mockUseCase := &usersigMocks.MockUserSigUseCase{}
		mockUseCase.On("Verify", ctx, "garbage").Return(&usersigDomain.VerifyUserSigOutput{
			Valid:  false,
			Reason: "malformed",
		}, nil).Once()

		err := RunDecodeUserSig(ctx, mockUseCase, &bytes.Buffer{}, "garbage", "text")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed")
	})

	t.Run("verify-misconfigured", func(t *testing.T) {
		mockUseCase := &usersigMocks.MockUserSigUseCase{}
		mockUseCase.On("Verify", ctx, workedExampleToken).Return(nil, usersigDomain.ErrMissingAppID).Once()

		err := RunDecodeUserSig(ctx, mockUseCase, &bytes.Buffer{}, workedExampleToken, "text")

		require.Error(t, err)
		assert.ErrorIs(t, err, usersigDomain.ErrMissingAppID)
	})
}
