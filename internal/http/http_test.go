package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/speakwell/rtcauth/internal/config"
	"github.com/speakwell/rtcauth/internal/metrics"
	usersigDomain "github.com/speakwell/rtcauth/internal/usersig/domain"
	usersigHTTP "github.com/speakwell/rtcauth/internal/usersig/http"
	"github.com/speakwell/rtcauth/internal/usersig/usecase/mocks"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubAdminKeyService accepts exactly one plaintext key.
type stubAdminKeyService struct {
	validKey string
}

func (s *stubAdminKeyService) GenerateKey() (string, string, error) { return "", "", nil }

func (s *stubAdminKeyService) HashKey(plainKey string) (string, error) { return plainKey, nil }

func (s *stubAdminKeyService) CompareKey(plainKey string, hashedKey string) bool {
	return plainKey == s.validKey
}

type routerOptions struct {
	cfg             *config.Config
	metricsProvider *metrics.Provider
}

func newTestRouter(t *testing.T, opts routerOptions) (http.Handler, *mocks.MockUserSigUseCase) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := opts.cfg
	if cfg == nil {
		cfg = &config.Config{}
	}

	mockUseCase := &mocks.MockUserSigUseCase{}
	handler := usersigHTTP.NewUserSigHandler(mockUseCase, cfg.AuthAllowAnyUserID, discardLogger())

	server := NewServer(nil, "localhost", 8080, discardLogger())
	server.SetupRouter(ctx, cfg, handler, &stubAdminKeyService{validKey: "rtca_admin"}, opts.metricsProvider)

	return server.GetHandler(), mockUseCase
}

func serve(handler http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	server := NewServer(nil, "localhost", 8080, discardLogger())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	t.Run("ready without database", func(t *testing.T) {
		server := NewServer(nil, "localhost", 8080, discardLogger())

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready","components":{"database":"disabled"}}`, w.Body.String())
	})

	t.Run("ready with healthy database", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		dbMock.ExpectPing()

		server := NewServer(db, "localhost", 8080, discardLogger())

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready","components":{"database":"ok"}}`, w.Body.String())
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("not ready when ping fails", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		dbMock.ExpectPing().WillReturnError(errors.New("connection refused"))

		server := NewServer(db, "localhost", 8080, discardLogger())

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"not_ready","components":{"database":"error"}}`, w.Body.String())
	})
}

func TestCustomLoggerMiddleware(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/v1/usersig", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := serve(router, http.MethodGet, "/v1/usersig?userId=user-42", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), `"path":"/v1/usersig"`)
	assert.Contains(t, buf.String(), `"status":200`)
	assert.NotContains(t, buf.String(), "user-42")
}

func TestRouter_RequestIDHeader(t *testing.T) {
	handler, _ := newTestRouter(t, routerOptions{})

	w := serve(handler, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	requestID, err := uuid.Parse(w.Header().Get("X-Request-Id"))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), requestID.Version())
}

func TestRouter_IssueUserSig(t *testing.T) {
	handler, mockUseCase := newTestRouter(t, routerOptions{})

	issuedAt := time.Unix(1700000000, 0).UTC()
	mockUseCase.On("Issue", mock.Anything, mock.MatchedBy(func(in *usersigDomain.IssueUserSigInput) bool {
		// The request id generated by the router is passed through for the audit trail.
		_, err := uuid.Parse(in.RequestID)
		return in.Identifier == "user-42" && err == nil
	})).Return(&usersigDomain.IssueUserSigOutput{
		SDKAppID:   1400000000,
		Identifier: "user-42",
		UserSig:    "token",
		Expire:     86400,
		IssuedAt:   issuedAt,
		ExpiresAt:  issuedAt.Add(24 * time.Hour),
	}, nil).Once()

	w := serve(handler, http.MethodPost, "/v1/usersig", `{"userId":"user-42"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "token", body["userSig"])
	mockUseCase.AssertExpectations(t)
}

func TestRouter_CallerAuthRequired(t *testing.T) {
	handler, mockUseCase := newTestRouter(t, routerOptions{
		cfg: &config.Config{AuthJWTSecret: "jwt-secret"},
	})

	w := serve(handler, http.MethodPost, "/v1/usersig", `{"userId":"user-42"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(handler, http.MethodPost, "/v1/usersig/agent", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	mockUseCase.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestRouter_UserSigHealthIsPublic(t *testing.T) {
	handler, mockUseCase := newTestRouter(t, routerOptions{
		cfg: &config.Config{AuthJWTSecret: "jwt-secret"},
	})

	mockUseCase.On("HealthCheck", mock.Anything).
		Return(&usersigDomain.HealthReport{OK: true}, nil).Once()

	w := serve(handler, http.MethodGet, "/v1/usersig/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestRouter_RateLimited(t *testing.T) {
	handler, mockUseCase := newTestRouter(t, routerOptions{
		cfg: &config.Config{RateLimitEnabled: true, RateLimitRequestsPerSec: 0.5, RateLimitBurst: 1},
	})

	mockUseCase.On("IssueAgent", mock.Anything, mock.Anything, time.Duration(0)).
		Return(&usersigDomain.IssueUserSigOutput{Identifier: "robot_id"}, nil).Once()

	assert.Equal(t, http.StatusOK, serve(handler, http.MethodPost, "/v1/usersig/agent", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(handler, http.MethodPost, "/v1/usersig/agent", "", nil).Code)
}

func TestRouter_AdminRoutes(t *testing.T) {
	t.Run("not registered without key hash", func(t *testing.T) {
		handler, _ := newTestRouter(t, routerOptions{})

		w := serve(handler, http.MethodGet, "/v1/admin/issuances", "", map[string]string{
			usersigHTTP.AdminKeyHeader: "rtca_admin",
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects wrong key", func(t *testing.T) {
		handler, _ := newTestRouter(t, routerOptions{cfg: &config.Config{AdminAPIKeyHash: "hash"}})

		w := serve(handler, http.MethodGet, "/v1/admin/issuances", "", map[string]string{
			usersigHTTP.AdminKeyHeader: "rtca_wrong",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("verify with valid key", func(t *testing.T) {
		handler, mockUseCase := newTestRouter(t, routerOptions{cfg: &config.Config{AdminAPIKeyHash: "hash"}})

		mockUseCase.On("Verify", mock.Anything, "token").
			Return(&usersigDomain.VerifyUserSigOutput{Valid: false, Reason: "expired"}, nil).Once()

		w := serve(handler, http.MethodPost, "/v1/admin/usersig/verify", `{"userSig":"token"}`, map[string]string{
			usersigHTTP.AdminKeyHeader: "rtca_admin",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"valid":false,"reason":"expired","compressed":false}`, w.Body.String())
	})
}

func TestRouter_NotFoundEndpoint(t *testing.T) {
	handler, _ := newTestRouter(t, routerOptions{})

	assert.Equal(t, http.StatusNotFound, serve(handler, http.MethodGet, "/nonexistent", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(handler, http.MethodGet, "/metrics", "", nil).Code)
}

func TestRouter_HTTPMetrics(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	handler, _ := newTestRouter(t, routerOptions{
		cfg:             &config.Config{MetricsNamespace: "test_app"},
		metricsProvider: provider,
	})

	serve(handler, http.MethodGet, "/health", "", nil)

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "test_app_http_requests_total")
}

func TestServer_StartWithoutRouter(t *testing.T) {
	server := NewServer(nil, "localhost", 0, discardLogger())

	assert.Error(t, server.Start(context.Background()))
}

func TestServer_ShutdownGracefully(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := NewServer(nil, "127.0.0.1", 0, discardLogger())
	server.SetupRouter(ctx, &config.Config{}, usersigHTTP.NewUserSigHandler(
		&mocks.MockUserSigUseCase{}, false, discardLogger(),
	), &stubAdminKeyService{}, nil)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	assert.NoError(t, server.Shutdown(shutdownCtx))
	assert.NoError(t, <-errChan)
}

func TestMetricsServer_Endpoints(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 8081, discardLogger(), provider)
	require.NotNil(t, metricsServer)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}
