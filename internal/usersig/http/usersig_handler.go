// Package http provides the HTTP handlers and middleware of the UserSig credential service.
package http

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/speakwell/rtcauth/internal/errors"
	"github.com/speakwell/rtcauth/internal/httputil"
	"github.com/speakwell/rtcauth/internal/usersig/http/dto"
	usersigUseCase "github.com/speakwell/rtcauth/internal/usersig/usecase"
	customValidation "github.com/speakwell/rtcauth/internal/validation"
)

// UserSigHandler handles HTTP requests for UserSig issuance and inspection.
type UserSigHandler struct {
	useCase        usersigUseCase.UserSigUseCase
	allowAnyUserID bool
	logger         *slog.Logger
}

// NewUserSigHandler creates a new UserSig handler. When allowAnyUserID is false an
// authenticated caller may only obtain credentials for its own subject.
func NewUserSigHandler(
	useCase usersigUseCase.UserSigUseCase,
	allowAnyUserID bool,
	logger *slog.Logger,
) *UserSigHandler {
	return &UserSigHandler{
		useCase:        useCase,
		allowAnyUserID: allowAnyUserID,
		logger:         logger,
	}
}

// IssueHandler issues a UserSig for an end user.
// POST /v1/usersig - Body {userId, expire?, userBuf?}.
func (h *UserSigHandler) IssueHandler(c *gin.Context) {
	var req dto.IssueUserSigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	h.issue(c, &req)
}

// IssueQueryHandler issues a UserSig from query parameters.
// GET /v1/usersig?userId=&expire= - Kept for clients that fetch credentials with a plain GET.
func (h *UserSigHandler) IssueQueryHandler(c *gin.Context) {
	req := dto.IssueUserSigRequest{
		UserID: c.Query("userId"),
	}

	if raw := c.Query("expire"); raw != "" {
		expire, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httputil.HandleBadRequestGin(c,
				fmt.Errorf("invalid expire parameter: must be an integer number of seconds"),
				h.logger)
			return
		}
		req.Expire = expire
	}

	h.issue(c, &req)
}

func (h *UserSigHandler) issue(c *gin.Context, req *dto.IssueUserSigRequest) {
	caller, authenticated := GetCaller(c.Request.Context())
	callerID := callerIdentifier(caller)
	if authenticated {
		if req.UserID == "" {
			req.UserID = callerID
		} else {
			req.UserID = callerIdentifier(req.UserID)
		}
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if authenticated && !h.allowAnyUserID && req.UserID != callerID {
		h.logger.Warn("caller requested usersig for another user",
			slog.String("caller", caller),
			slog.String("user_id", req.UserID))
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
		return
	}

	output, err := h.useCase.Issue(c.Request.Context(), req.ToInput(requestid.Get(c), caller))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIssueOutputToResponse(output))
}

// callerIdentifier maps a JWT subject to a TRTC user id. Supabase subjects are UUIDs,
// whose 36-byte text form exceeds MaxIdentifierLength, so they become their 32 hex
// digits. Other subjects are returned unchanged.
func callerIdentifier(subject string) string {
	if len(subject) != 36 {
		return subject
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		return subject
	}
	return hex.EncodeToString(id[:])
}

// IssueAgentHandler issues a UserSig for the conversation agent identifier.
// POST /v1/usersig/agent - Optional body {expire}.
func (h *UserSigHandler) IssueAgentHandler(c *gin.Context) {
	var req dto.IssueAgentUserSigRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.useCase.IssueAgent(
		c.Request.Context(),
		requestid.Get(c),
		time.Duration(req.Expire)*time.Second,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIssueOutputToResponse(output))
}

// HealthHandler reports whether the configured credentials produce acceptable tokens.
// GET /v1/usersig/health - Always 200; the "ok" field carries the verdict.
func (h *UserSigHandler) HealthHandler(c *gin.Context) {
	report, err := h.useCase.HealthCheck(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapHealthReportToResponse(report))
}

// VerifyHandler decodes a UserSig and checks it against the configured credentials.
// POST /v1/admin/usersig/verify - Requires the admin key.
func (h *UserSigHandler) VerifyHandler(c *gin.Context) {
	var req dto.VerifyUserSigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.useCase.Verify(c.Request.Context(), req.UserSig)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVerifyOutputToResponse(output))
}

// ListIssuancesHandler lists recorded issuances, newest first.
// GET /v1/admin/issuances?offset=&limit= - Requires the admin key.
func (h *UserSigHandler) ListIssuancesHandler(c *gin.Context) {
	offset, limit, err := httputil.IssuancePagination.Parse(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	issuances, err := h.useCase.ListIssuances(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIssuancesToListResponse(issuances))
}
