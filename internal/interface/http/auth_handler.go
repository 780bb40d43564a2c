package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agriconnect/agriconnect/internal/domain/auth"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// AuthHandler exposes registration, login and OAuth endpoints.
type AuthHandler struct {
	svc    auth.Service
	logger *slog.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(svc auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger.With("component", "http.auth")}
}

// Register creates a new account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	user, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, authError(err, "registration_failed"))
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for tokens.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, authError(err, "login_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, authError(err, "refresh_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	user, err := h.svc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, authError(err, "profile_failed"))
		return
	}
	c.JSON(http.StatusOK, user)
}

// GoogleLogin starts the Google OAuth flow with PKCE.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, verifier, challenge, err := auth.NewOAuthState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "oauth_failed", "failed to create oauth state", err))
		return
	}
	url, err := h.svc.GoogleAuthURL(c.Request.Context(), state, challenge)
	if err != nil {
		abortWithError(c, authError(err, "oauth_failed"))
		return
	}
	setOAuthStateCookie(c, state, verifier)
	c.Redirect(http.StatusFound, url)
}

// GoogleCallback completes the OAuth flow.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	cookie, ok := readOAuthStateCookie(c)
	clearOAuthStateCookie(c)
	if !ok || cookie.State != c.Query("state") {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_state", "oauth state mismatch", nil))
		return
	}
	resp, err := h.svc.GoogleCallback(c.Request.Context(), c.Query("code"), cookie.CodeVerifier)
	if err != nil {
		abortWithError(c, authError(err, "oauth_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func authError(err error, fallbackCode string) *HTTPError {
	switch {
	case apperrors.IsCode(err, "invalid_input"), apperrors.IsCode(err, "invalid_request"):
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.IsCode(err, "email_exists"), apperrors.IsCode(err, "username_exists"):
		return NewHTTPError(http.StatusConflict, "already_exists", errMessage(err), err)
	case apperrors.IsCode(err, "invalid_credentials"), apperrors.IsCode(err, "invalid_token"):
		return NewHTTPError(http.StatusUnauthorized, "unauthorized", errMessage(err), err)
	case apperrors.IsCode(err, "user_not_found"):
		return NewHTTPError(http.StatusNotFound, "not_found", errMessage(err), err)
	case apperrors.IsCode(err, "auth_not_configured"):
		return NewHTTPError(http.StatusServiceUnavailable, "auth_not_configured", errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, fallbackCode, errMessage(err), err)
	}
}
