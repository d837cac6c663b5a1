// Package repository implements persistence of the UserSig issuance audit trail.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/speakwell/rtcauth/internal/database"
	apperrors "github.com/speakwell/rtcauth/internal/errors"
	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

// PostgreSQLIssuanceRepository implements Issuance persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLIssuanceRepository struct {
	db *sql.DB
}

// Create inserts a new Issuance. Only the token fingerprint is stored, never the token.
func (p *PostgreSQLIssuanceRepository) Create(ctx context.Context, issuance *usersigDomain.Issuance) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO usersig_issuances (id, request_id, sdk_app_id, identifier, kind, expire_seconds,
			  issued_at, expires_at, fingerprint, compressed, caller_subject, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
		issuance.ID,
		issuance.RequestID,
		int64(issuance.SDKAppID),
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
// Returns an empty slice if none are found.
func (p *PostgreSQLIssuanceRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*usersigDomain.Issuance, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, request_id, sdk_app_id, identifier, kind, expire_seconds, issued_at,
			  expires_at, fingerprint, compressed, caller_subject, created_at
			  FROM usersig_issuances
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1 OFFSET $2`

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
		var sdkAppID int64
		var kind string

		err := rows.Scan(
			&issuance.ID,
			&issuance.RequestID,
			&sdkAppID,
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

		issuance.SDKAppID = uint64(sdkAppID)
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
func (p *PostgreSQLIssuanceRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM usersig_issuances WHERE created_at < $1`
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count issuances")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM usersig_issuances WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete issuances")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}

	return count, nil
}

// NewPostgreSQLIssuanceRepository creates a new PostgreSQL Issuance repository.
func NewPostgreSQLIssuanceRepository(db *sql.DB) *PostgreSQLIssuanceRepository {
	return &PostgreSQLIssuanceRepository{db: db}
}
