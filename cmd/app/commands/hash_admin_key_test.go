package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAdminKeyService struct {
	mock.Mock
}

func (m *mockAdminKeyService) GenerateKey() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockAdminKeyService) HashKey(plainKey string) (string, error) {
	args := m.Called(plainKey)
	return args.String(0), args.Error(1)
}

func (m *mockAdminKeyService) CompareKey(plainKey string, hashedKey string) bool {
	args := m.Called(plainKey, hashedKey)
	return args.Bool(0)
}

func TestRunHashAdminKey(t *testing.T) {
	const hash = "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"

	t.Run("generate-text", func(t *testing.T) {
		service := &mockAdminKeyService{}
		service.On("GenerateKey").Return("rtca_generated", hash, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunHashAdminKey(service, &out, "", "text"))

		assert.Contains(t, out.String(), "# rtca_generated")
		assert.Contains(t, out.String(), "ADMIN_API_KEY_HASH='"+hash+"'")
		service.AssertExpectations(t)
	})

	t.Run("hash-given-key-json", func(t *testing.T) {
		service := &mockAdminKeyService{}
		service.On("HashKey", "my-key").Return(hash, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunHashAdminKey(service, &out, "my-key", "json"))

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, hash, result["admin_api_key_hash"])
		assert.NotContains(t, result, "admin_api_key")
		service.AssertExpectations(t)
	})

	t.Run("hash-error", func(t *testing.T) {
		service := &mockAdminKeyService{}
		service.On("GenerateKey").Return("", "", errors.New("entropy exhausted")).Once()

		err := RunHashAdminKey(service, &bytes.Buffer{}, "", "text")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to hash admin key")
	})
}
