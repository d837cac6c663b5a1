package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/speakwell/rtcauth/internal/database"
	apperrors "github.com/speakwell/rtcauth/internal/errors"
	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

// MySQLIssuanceRepository implements Issuance persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLIssuanceRepository struct {
	db *sql.DB
}

// Create inserts a new Issuance using BINARY(16) for the id.
func (m *MySQLIssuanceRepository) Create(ctx context.Context, issuance *usersigDomain.Issuance) error {
	querier := database.GetTx(ctx, m.db)

	id, err := issuance.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal issuance id")
	}

	query := `INSERT INTO usersig_issuances (id, request_id, sdk_app_id, identifier, kind, expire_seconds,
			  issued_at, expires_at, fingerprint, compressed, caller_subject, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		issuance.RequestID,
		issuance.SDKAppID,
		issuance.Identifier,
		string(issuance.Kind),
		issuance.Expire,
		issuance.IssuedAt,
		issuance.ExpiresAt,
		issuance.Fingerprint,
		issuance.Compressed,
		issuance.CallerSubject,
		issuance.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create issuance")
	}

	return nil
}

// List retrieves issuances ordered by created_at descending (newest first) with pagination.
func (m *MySQLIssuanceRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*usersigDomain.Issuance, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, request_id, sdk_app_id, identifier, kind, expire_seconds, issued_at,
			  expires_at, fingerprint, compressed, caller_subject, created_at
			  FROM usersig_issuances
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list issuances")
	}
	defer func() {
		_ = rows.Close()
	}()

	issuances := make([]*usersigDomain.Issuance, 0)
	for rows.Next() {
		var issuance usersigDomain.Issuance
		var idBinary []byte
		var kind string

		err := rows.Scan(
			&idBinary,
			&issuance.RequestID,
			&issuance.SDKAppID,
			&issuance.Identifier,
			&kind,
			&issuance.Expire,
			&issuance.IssuedAt,
			&issuance.ExpiresAt,
			&issuance.Fingerprint,
			&issuance.Compressed,
			&issuance.CallerSubject,
			&issuance.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan issuance")
		}

		id, err := uuid.FromBytes(idBinary)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal issuance id")
		}
		issuance.ID = id
		issuance.Kind = usersigDomain.IssuanceKind(kind)
		issuances = append(issuances, &issuance)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate issuances")
	}

	return issuances, nil
}

// DeleteOlderThan removes issuances created before olderThan. When dryRun is true it
// returns the matching count via SELECT COUNT(*) without deleting.
func (m *MySQLIssuanceRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM usersig_issuances WHERE created_at < ?`
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count issuances")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM usersig_issuances WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete issuances")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

// NewMySQLIssuanceRepository creates a new MySQL Issuance repository.
func NewMySQLIssuanceRepository(db *sql.DB) *MySQLIssuanceRepository {
	return &MySQLIssuanceRepository{db: db}
}
