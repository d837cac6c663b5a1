package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/speakwell/rtcauth/internal/database"
	apperrors "github.com/speakwell/rtcauth/internal/errors"
	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
	usersigService "github.com/speakwell/rtcauth/internal/usersig/service"
)

// Verification failure reasons reported by Verify.
const (
	ReasonMalformed         = "malformed"
	ReasonAppIDMismatch     = "app_id_mismatch"
	ReasonSignatureMismatch = "signature_mismatch"
	ReasonExpired           = "expired"
)

// Settings carries the credential configuration resolved at startup.
type Settings struct {
	SDKAppID         uint64
	Secret           []byte
	SecretSource     string
	AgentUserID      string
	DefaultExpire    time.Duration
	Compress         bool
	Region           string
	HasCloudSecretID bool
}

// userSigUseCase implements UserSigUseCase.
type userSigUseCase struct {
	settings      Settings
	txManager     database.TxManager
	signer        usersigService.UserSigSigner
	fingerprinter usersigService.Fingerprinter
	issuanceRepo  IssuanceRepository
}

// Issue signs a UserSig for an end user.
func (u *userSigUseCase) Issue(
	ctx context.Context,
	input *usersigDomain.IssueUserSigInput,
) (*usersigDomain.IssueUserSigOutput, error) {
	expire := input.Expire
	if expire == 0 {
		expire = u.settings.DefaultExpire
	}

	return u.issue(ctx, &issueRequest{
		identifier:    input.Identifier,
		expire:        expire,
		userBuf:       input.UserBuf,
		kind:          usersigDomain.KindUser,
		requestID:     input.RequestID,
		callerSubject: input.CallerSubject,
	})
}

// IssueAgent signs a UserSig for the conversation agent.
func (u *userSigUseCase) IssueAgent(
	ctx context.Context,
	requestID string,
	expire time.Duration,
) (*usersigDomain.IssueUserSigOutput, error) {
	if expire == 0 {
		expire = u.settings.DefaultExpire
	}

	return u.issue(ctx, &issueRequest{
		identifier: u.settings.AgentUserID,
		expire:     expire,
		kind:       usersigDomain.KindAgent,
		requestID:  requestID,
	})
}

type issueRequest struct {
	identifier    string
	expire        time.Duration
	userBuf       []byte
	kind          usersigDomain.IssuanceKind
	requestID     string
	callerSubject string
}

func (u *userSigUseCase) issue(ctx context.Context, req *issueRequest) (*usersigDomain.IssueUserSigOutput, error) {
	token, credential, err := u.signer.Issue(
		&usersigDomain.IssueInput{
			SDKAppID:   u.settings.SDKAppID,
			Secret:     u.settings.Secret,
			Identifier: req.identifier,
			Expire:     req.expire,
			UserBuf:    req.userBuf,
		},
		usersigDomain.IssueOptions{Compress: u.settings.Compress},
	)
	if err != nil {
		return nil, err
	}

	if u.issuanceRepo != nil {
		issuance := &usersigDomain.Issuance{
			ID:            uuid.Must(uuid.NewV7()),
			RequestID:     req.requestID,
			SDKAppID:      credential.SDKAppID,
			Identifier:    credential.Identifier,
			Kind:          req.kind,
			Expire:        credential.Expire,
			IssuedAt:      credential.IssuedAt(),
			ExpiresAt:     credential.ExpiresAt(),
			Fingerprint:   u.fingerprint(token),
			Compressed:    u.settings.Compress,
			CallerSubject: req.callerSubject,
			CreatedAt:     time.Now().UTC(),
		}
		err := u.withTx(ctx, func(ctx context.Context) error {
			return u.issuanceRepo.Create(ctx, issuance)
		})
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to record issuance")
		}
	}

	return &usersigDomain.IssueUserSigOutput{
		SDKAppID:   credential.SDKAppID,
		Identifier: credential.Identifier,
		UserSig:    token,
		Expire:     credential.Expire,
		IssuedAt:   credential.IssuedAt(),
		ExpiresAt:  credential.ExpiresAt(),
	}, nil
}

// withTx runs fn inside a transaction, or directly when no transaction manager is set.
func (u *userSigUseCase) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if u.txManager == nil {
		return fn(ctx)
	}
	return u.txManager.WithTx(ctx, fn)
}

func (u *userSigUseCase) fingerprint(token string) string {
	if u.fingerprinter == nil {
		return ""
	}
	return u.fingerprinter.Fingerprint(token)
}

// Verify decodes a token and checks it against the configured credentials.
func (u *userSigUseCase) Verify(ctx context.Context, token string) (*usersigDomain.VerifyUserSigOutput, error) {
	if u.settings.SDKAppID == 0 {
		return nil, usersigDomain.ErrMissingAppID
	}
	if len(u.settings.Secret) == 0 {
		return nil, usersigDomain.ErrMissingSecret
	}

	credential, compressed, err := usersigService.DecodeUserSig(token)
	if err != nil {
		return &usersigDomain.VerifyUserSigOutput{Reason: ReasonMalformed}, nil
	}

	output := &usersigDomain.VerifyUserSigOutput{
		Credential: credential,
		Compressed: compressed,
	}

	err = u.signer.Verify(credential, u.settings.SDKAppID, u.settings.Secret)
	switch {
	case err == nil:
		output.Valid = true
	case errors.Is(err, usersigDomain.ErrAppIDMismatch):
		output.Reason = ReasonAppIDMismatch
	case errors.Is(err, usersigDomain.ErrSignatureMismatch):
		output.Reason = ReasonSignatureMismatch
	case errors.Is(err, usersigDomain.ErrTokenExpired):
		output.Reason = ReasonExpired
	default:
		return nil, err
	}

	return output, nil
}

// HealthCheck signs HealthcheckIdentifier for HealthcheckExpire and verifies the result.
func (u *userSigUseCase) HealthCheck(ctx context.Context) (*usersigDomain.HealthReport, error) {
	report := &usersigDomain.HealthReport{
		Env: usersigDomain.HealthEnv{
			SDKAppID:          u.settings.SDKAppID,
			HasSDKSecretKey:   len(u.settings.Secret) > 0,
			SecretSource:      u.settings.SecretSource,
			HasCloudSecretID:  u.settings.HasCloudSecretID,
			Region:            u.settings.Region,
			CompressUserSigs:  u.settings.Compress,
			IssuanceLogActive: u.issuanceRepo != nil,
		},
		Messages: []string{},
	}

	if report.Env.SDKAppID == 0 {
		report.Messages = append(report.Messages, "TENCENT_SDK_APP_ID is not configured")
	}
	if !report.Env.HasSDKSecretKey {
		report.Messages = append(report.Messages, "TENCENT_SDK_SECRET_KEY is not configured")
	}
	if len(report.Messages) > 0 {
		return report, nil
	}

	token, credential, err := u.signer.Issue(
		&usersigDomain.IssueInput{
			SDKAppID:   u.settings.SDKAppID,
			Secret:     u.settings.Secret,
			Identifier: usersigDomain.HealthcheckIdentifier,
			Expire:     usersigDomain.HealthcheckExpire,
		},
		usersigDomain.IssueOptions{Compress: u.settings.Compress},
	)
	if err != nil {
		report.Messages = append(report.Messages, "usersig generation failed: "+err.Error())
		return report, nil
	}
	report.Checks.UserSigOK = token != ""
	report.Checks.UserSigLength = len(token)

	decoded, _, err := usersigService.DecodeUserSig(token)
	if err != nil {
		report.Messages = append(report.Messages, "usersig decode failed: "+err.Error())
		return report, nil
	}
	if *decoded != *credential {
		report.Messages = append(report.Messages, "usersig round trip altered the credential")
		return report, nil
	}
	if err := u.signer.Verify(decoded, u.settings.SDKAppID, u.settings.Secret); err != nil {
		report.Messages = append(report.Messages, "usersig verification failed: "+err.Error())
		return report, nil
	}

	report.Checks.RoundTripOK = true
	report.OK = report.Checks.UserSigOK && report.Checks.RoundTripOK
	return report, nil
}

// ListIssuances returns recorded issuances, newest first.
func (u *userSigUseCase) ListIssuances(
	ctx context.Context,
	offset, limit int,
) ([]*usersigDomain.Issuance, error) {
	if u.issuanceRepo == nil {
		return nil, usersigDomain.ErrIssuanceLogDisabled
	}

	issuances, err := u.issuanceRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list issuances")
	}

	return issuances, nil
}

// CleanIssuances deletes issuances created more than days ago.
func (u *userSigUseCase) CleanIssuances(ctx context.Context, days int, dryRun bool) (int64, error) {
	if u.issuanceRepo == nil {
		return 0, usersigDomain.ErrIssuanceLogDisabled
	}
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be non-negative")
	}

	// Calculate the cutoff timestamp (days ago from now in UTC)
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var count int64
	err := u.withTx(ctx, func(ctx context.Context) error {
		var err error
		count, err = u.issuanceRepo.DeleteOlderThan(ctx, cutoff, dryRun)
		return err
	})
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to clean issuances")
	}

	return count, nil
}

// NewUserSigUseCase creates a UserSigUseCase. txManager, fingerprinter and issuanceRepo
// may be nil when the issuance audit trail is disabled.
func NewUserSigUseCase(
	settings Settings,
	txManager database.TxManager,
	signer usersigService.UserSigSigner,
	fingerprinter usersigService.Fingerprinter,
	issuanceRepo IssuanceRepository,
) UserSigUseCase {
	if settings.DefaultExpire == 0 {
		settings.DefaultExpire = usersigDomain.DefaultExpire
	}
	if settings.AgentUserID == "" {
		settings.AgentUserID = "robot_id"
	}

	return &userSigUseCase{
		settings:      settings,
		txManager:     txManager,
		signer:        signer,
		fingerprinter: fingerprinter,
		issuanceRepo:  issuanceRepo,
	}
}
