package usecase

import (
	"context"
	"time"

	"github.com/speakwell/rtcauth/internal/metrics"
	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
)

const metricsDomain = "usersig"

// userSigUseCaseWithMetrics decorates UserSigUseCase with metrics instrumentation.
type userSigUseCaseWithMetrics struct {
	next    UserSigUseCase
	metrics metrics.BusinessMetrics
}

// NewUserSigUseCaseWithMetrics wraps a UserSigUseCase with metrics recording.
func NewUserSigUseCaseWithMetrics(useCase UserSigUseCase, m metrics.BusinessMetrics) UserSigUseCase {
	return &userSigUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *userSigUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	u.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Issue records metrics for end user issuance, including the granted validity.
func (u *userSigUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *usersigDomain.IssueUserSigInput,
) (*usersigDomain.IssueUserSigOutput, error) {
	start := time.Now()
	output, err := u.next.Issue(ctx, input)
	u.record(ctx, "usersig_issue", start, err)
	if err == nil {
		u.metrics.RecordIssuance(ctx, string(usersigDomain.KindUser), time.Duration(output.Expire)*time.Second)
	}
	return output, err
}

// IssueAgent records metrics for agent issuance.
func (u *userSigUseCaseWithMetrics) IssueAgent(
	ctx context.Context,
	requestID string,
	expire time.Duration,
) (*usersigDomain.IssueUserSigOutput, error) {
	start := time.Now()
	output, err := u.next.IssueAgent(ctx, requestID, expire)
	u.record(ctx, "usersig_issue_agent", start, err)
	if err == nil {
		u.metrics.RecordIssuance(ctx, string(usersigDomain.KindAgent), time.Duration(output.Expire)*time.Second)
	}
	return output, err
}

// Verify records metrics for verification. A rejected token counts as "invalid".
func (u *userSigUseCaseWithMetrics) Verify(
	ctx context.Context,
	token string,
) (*usersigDomain.VerifyUserSigOutput, error) {
	start := time.Now()
	output, err := u.next.Verify(ctx, token)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case !output.Valid:
		status = "invalid"
	}

	u.metrics.RecordOperation(ctx, metricsDomain, "usersig_verify", status)
	u.metrics.RecordDuration(ctx, metricsDomain, "usersig_verify", time.Since(start), status)

	return output, err
}

// HealthCheck records metrics for the credential self-check. A failed check counts as "unhealthy".
func (u *userSigUseCaseWithMetrics) HealthCheck(ctx context.Context) (*usersigDomain.HealthReport, error) {
	start := time.Now()
	report, err := u.next.HealthCheck(ctx)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case !report.OK:
		status = "unhealthy"
	}

	u.metrics.RecordOperation(ctx, metricsDomain, "usersig_health", status)
	u.metrics.RecordDuration(ctx, metricsDomain, "usersig_health", time.Since(start), status)

	return report, err
}

// ListIssuances records metrics for issuance listing.
func (u *userSigUseCaseWithMetrics) ListIssuances(
	ctx context.Context,
	offset, limit int,
) ([]*usersigDomain.Issuance, error) {
	start := time.Now()
	issuances, err := u.next.ListIssuances(ctx, offset, limit)
	u.record(ctx, "issuance_list", start, err)
	return issuances, err
}

// CleanIssuances records metrics for issuance cleanup.
func (u *userSigUseCaseWithMetrics) CleanIssuances(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := u.next.CleanIssuances(ctx, days, dryRun)
	u.record(ctx, "issuance_clean", start, err)
	return count, err
}
