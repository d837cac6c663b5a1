package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	usersigUseCase "github.com/speakwell/rtcauth/internal/usersig/usecase"
)

// RunCleanIssuances deletes issuance records older than the given number of days.
// With dryRun it only reports how many records would be deleted.
//
// Requirements: ISSUANCE_LOG_ENABLED=true and a migrated database.
func RunCleanIssuances(
	ctx context.Context,
	useCase usersigUseCase.UserSigUseCase,
	logger *slog.Logger,
	w io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("cleaning issuances",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := useCase.CleanIssuances(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete issuances: %w", err)
	}

	if format == "json" {
		if err := writeJSON(w, map[string]any{
			"count":   count,
			"days":    days,
			"dry_run": dryRun,
		}); err != nil {
			return err
		}
	} else if dryRun {
		_, _ = fmt.Fprintf(w, "Dry-run mode: Would delete %d issuance(s) older than %d day(s)\n", count, days)
	} else {
		_, _ = fmt.Fprintf(w, "Successfully deleted %d issuance(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}
