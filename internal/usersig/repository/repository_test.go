package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

var issuanceColumns = []string{
	"id", "request_id", "sdk_app_id", "identifier", "kind", "expire_seconds", "issued_at",
	"expires_at", "fingerprint", "compressed", "caller_subject", "created_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func newTestIssuance() *usersigDomain.Issuance {
	issuedAt := time.Unix(1700000000, 0).UTC()
	return &usersigDomain.Issuance{
		ID:            uuid.Must(uuid.NewV7()),
		RequestID:     "req-1",
		SDKAppID:      1400000000,
		Identifier:    "user-42",
		Kind:          usersigDomain.KindUser,
		Expire:        86400,
		IssuedAt:      issuedAt,
		ExpiresAt:     issuedAt.Add(24 * time.Hour),
		Fingerprint:   "ab12",
		Compressed:    true,
		CallerSubject: "sub-1",
		CreatedAt:     issuedAt,
	}
}
