package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/speakwell/rtcauth/internal/database"
	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
	usersigHTTP "github.com/speakwell/rtcauth/internal/usersig/http"
	usersigRepository "github.com/speakwell/rtcauth/internal/usersig/repository"
	usersigService "github.com/speakwell/rtcauth/internal/usersig/service"
	usersigUseCase "github.com/speakwell/rtcauth/internal/usersig/usecase"
)

// secretResolveTimeout bounds the KMS round trip performed at startup.
const secretResolveTimeout = 30 * time.Second

// UserSigSigner returns the UserSig signer using the wall clock.
func (c *Container) UserSigSigner() usersigService.UserSigSigner {
	c.userSigSignerInit.Do(func() {
		c.userSigSigner = usersigService.NewUserSigSigner(nil)
	})
	return c.userSigSigner
}

// SecretResolver returns the resolver for the SDK secret key.
func (c *Container) SecretResolver() usersigService.SecretResolver {
	c.secretResolverInit.Do(func() {
		c.secretResolver = usersigService.NewSecretResolver(
			c.config.SDKSecretKey,
			c.config.SDKSecretKeyCiphertext,
			c.config.KMSKeyURI,
		)
	})
	return c.secretResolver
}

// AdminKeyService returns the admin key service.
func (c *Container) AdminKeyService() usersigService.AdminKeyService {
	c.adminKeyServiceInit.Do(func() {
		c.adminKeyService = usersigService.NewAdminKeyService()
	})
	return c.adminKeyService
}

// SDKSecret returns the resolved SDK secret key. A missing key is not an error: the service
// still starts and reports the gap through the credential health check.
func (c *Container) SDKSecret() ([]byte, error) {
	var err error
	c.sdkSecretInit.Do(func() {
		c.sdkSecret, err = c.initSDKSecret()
		if err != nil {
			c.initErrors["sdkSecret"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sdkSecret"]; exists {
		return nil, storedErr
	}
	return c.sdkSecret, nil
}

// IssuanceRepository returns the issuance repository for the configured database driver.
func (c *Container) IssuanceRepository() (usersigUseCase.IssuanceRepository, error) {
	var err error
	c.issuanceRepositoryInit.Do(func() {
		c.issuanceRepository, err = c.initIssuanceRepository()
		if err != nil {
			c.initErrors["issuanceRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["issuanceRepository"]; exists {
		return nil, storedErr
	}
	return c.issuanceRepository, nil
}

// UserSigUseCase returns the UserSig use case decorated with business metrics.
func (c *Container) UserSigUseCase() (usersigUseCase.UserSigUseCase, error) {
	var err error
	c.userSigUseCaseInit.Do(func() {
		c.userSigUseCase, err = c.initUserSigUseCase()
		if err != nil {
			c.initErrors["userSigUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userSigUseCase"]; exists {
		return nil, storedErr
	}
	return c.userSigUseCase, nil
}

// UserSigHandler returns the HTTP handler for UserSig operations.
func (c *Container) UserSigHandler() (*usersigHTTP.UserSigHandler, error) {
	var err error
	c.userSigHandlerInit.Do(func() {
		c.userSigHandler, err = c.initUserSigHandler()
		if err != nil {
			c.initErrors["userSigHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userSigHandler"]; exists {
		return nil, storedErr
	}
	return c.userSigHandler, nil
}

// initSDKSecret resolves the SDK secret key from its configured source.
func (c *Container) initSDKSecret() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), secretResolveTimeout)
	defer cancel()

	secret, err := c.SecretResolver().Resolve(ctx)
	if errors.Is(err, usersigDomain.ErrMissingSecret) {
		c.Logger().Warn("sdk secret key is not configured - usersig issuance will fail")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sdk secret key: %w", err)
	}

	c.Logger().Info("sdk secret key resolved", slog.String("source", c.config.SecretSource()))
	return secret, nil
}

// initIssuanceRepository creates the issuance repository for the configured driver.
func (c *Container) initIssuanceRepository() (usersigUseCase.IssuanceRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for issuance repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return usersigRepository.NewMySQLIssuanceRepository(db), nil
	case "postgres":
		return usersigRepository.NewPostgreSQLIssuanceRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initUserSigUseCase wires the use case. The audit trail dependencies stay nil interfaces
// unless the issuance log is enabled.
func (c *Container) initUserSigUseCase() (usersigUseCase.UserSigUseCase, error) {
	secret, err := c.SDKSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to get sdk secret for usersig use case: %w", err)
	}

	var (
		txManager     database.TxManager
		issuanceRepo  usersigUseCase.IssuanceRepository
		fingerprinter usersigService.Fingerprinter
	)
	if c.config.IssuanceLogEnabled {
		txManager, err = c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for usersig use case: %w", err)
		}

		issuanceRepo, err = c.IssuanceRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get issuance repository for usersig use case: %w", err)
		}

		if len(secret) > 0 {
			fingerprinter, err = usersigService.NewFingerprinter(secret)
			if err != nil {
				return nil, fmt.Errorf("failed to create fingerprinter: %w", err)
			}
		}
	}

	useCase := usersigUseCase.NewUserSigUseCase(
		c.userSigSettings(secret),
		txManager,
		c.UserSigSigner(),
		fingerprinter,
		issuanceRepo,
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for usersig use case: %w", err)
	}

	return usersigUseCase.NewUserSigUseCaseWithMetrics(useCase, businessMetrics), nil
}

// userSigSettings maps configuration to use case settings.
func (c *Container) userSigSettings(secret []byte) usersigUseCase.Settings {
	return usersigUseCase.Settings{
		SDKAppID:         c.config.SDKAppID,
		Secret:           secret,
		SecretSource:     c.config.SecretSource(),
		AgentUserID:      c.config.AgentUserID,
		DefaultExpire:    c.config.UserSigDefaultExpire,
		Compress:         c.config.UserSigCompress,
		Region:           c.config.Region,
		HasCloudSecretID: c.config.CloudSecretID != "",
	}
}

// initUserSigHandler creates the UserSig HTTP handler.
func (c *Container) initUserSigHandler() (*usersigHTTP.UserSigHandler, error) {
	useCase, err := c.UserSigUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get usersig use case for usersig handler: %w", err)
	}

	return usersigHTTP.NewUserSigHandler(useCase, c.config.AuthAllowAnyUserID, c.Logger()), nil
}
