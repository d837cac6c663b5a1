package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, uint64(0), cfg.SDKAppID)
				assert.Empty(t, cfg.SDKSecretKey)
				assert.Equal(t, "robot_id", cfg.AgentUserID)
				assert.Equal(t, "ap-singapore", cfg.Region)
				assert.Equal(t, 86400*time.Second, cfg.UserSigDefaultExpire)
				assert.True(t, cfg.UserSigCompress)
				assert.False(t, cfg.IssuanceLogEnabled)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.True(t, cfg.RateLimitEnabled)
				assert.Equal(t, 5.0, cfg.RateLimitRequestsPerSec)
				assert.Equal(t, 10, cfg.RateLimitBurst)
				assert.False(t, cfg.CORSEnabled)
				assert.True(t, cfg.MetricsEnabled)
				assert.Equal(t, "rtcauth", cfg.MetricsNamespace)
				assert.Equal(t, 8081, cfg.MetricsPort)
				assert.Equal(t, "none", cfg.SecretSource())
			},
		},
		{
			name: "load custom server configuration",
			envVars: map[string]string{
				"SERVER_HOST": "localhost",
				"SERVER_PORT": "9090",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.ServerHost)
				assert.Equal(t, 9090, cfg.ServerPort)
			},
		},
		{
			name: "load trtc credentials",
			envVars: map[string]string{
				"TENCENT_SDK_APP_ID":     "1400000000",
				"TENCENT_SDK_SECRET_KEY": "s3cr3t",
				"TENCENT_AGENT_ID":       "examiner",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, uint64(1400000000), cfg.SDKAppID)
				assert.Equal(t, "s3cr3t", cfg.SDKSecretKey)
				assert.Equal(t, "examiner", cfg.AgentUserID)
				assert.Equal(t, "env", cfg.SecretSource())
			},
		},
		{
			name: "fall back to legacy secret key variable",
			envVars: map[string]string{
				"TENCENT_SECRET_KEY": "legacy",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "legacy", cfg.SDKSecretKey)
			},
		},
		{
			name: "kms ciphertext takes precedence",
			envVars: map[string]string{
				"TENCENT_SDK_SECRET_KEY":            "plain",
				"TENCENT_SDK_SECRET_KEY_CIPHERTEXT": "Y2lwaGVy",
				"KMS_KEY_URI":                       "base64key://",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "kms", cfg.SecretSource())
			},
		},
		{
			name: "negative app id is treated as absent",
			envVars: map[string]string{
				"TENCENT_SDK_APP_ID": "-1",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, uint64(0), cfg.SDKAppID)
			},
		},
		{
			name: "load usersig and auth configuration",
			envVars: map[string]string{
				"USERSIG_DEFAULT_EXPIRE_SECONDS": "3600",
				"USERSIG_COMPRESS":               "false",
				"AUTH_JWT_SECRET":                "jwt-secret",
				"AUTH_ALLOW_ANY_USER_ID":         "true",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, time.Hour, cfg.UserSigDefaultExpire)
				assert.False(t, cfg.UserSigCompress)
				assert.Equal(t, "jwt-secret", cfg.AuthJWTSecret)
				assert.True(t, cfg.AuthAllowAnyUserID)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"ISSUANCE_LOG_ENABLED":    "true",
				"DB_DRIVER":               "mysql",
				"DB_CONNECTION_STRING":    "user:password@tcp(localhost:3306)/testdb",
				"DB_MAX_OPEN_CONNECTIONS": "50",
				"DB_MAX_IDLE_CONNECTIONS": "10",
				"DB_CONN_MAX_LIFETIME":    "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IssuanceLogEnabled)
				assert.Equal(t, "mysql", cfg.DBDriver)
				assert.Equal(t, "user:password@tcp(localhost:3306)/testdb", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10, cfg.DBMaxIdleConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			cfg := Load()

			tt.validate(t, cfg)
		})
	}
}

func TestGetGinMode(t *testing.T) {
	assert.Equal(t, "debug", (&Config{LogLevel: "debug"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: "info"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: "bogus"}).GetGinMode())
}
