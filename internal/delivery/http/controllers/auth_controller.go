package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"statuspage/internal/delivery/http/helpers"
	"statuspage/internal/domain"
	"statuspage/internal/services"
)

// MagicLinkRequest is the request body for POST /auth/magic-link.
type MagicLinkRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (m MagicLinkRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(m.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	return errs
}

// VerifyRequest is the request body for POST /auth/verify.
type VerifyRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Validate implements Validator.
func (v VerifyRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(v.Email) == "" {
		errs = append(errs, "email is required")
	}
	if strings.TrimSpace(v.Token) == "" {
		errs = append(errs, "token is required")
	}
	return errs
}

// VerifyResponse is the data payload for POST /auth/verify (200).
type VerifyResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

// AuthController serves the passwordless authentication endpoints.
type AuthController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewAuthController(logger *slog.Logger, svc domain.UserService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// RequestMagicLink godoc
// @Summary Request a sign-in link
// @Description Emails a one-time sign-in link to the address. Always returns 200 for a valid address so callers cannot probe which emails are registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body MagicLinkRequest true "Email address"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/magic-link [post]
func (c *AuthController) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req MagicLinkRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RequestMagicLink(r.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "sent"})
}

// VerifyMagicLink godoc
// @Summary Verify a sign-in link
// @Description Consumes the one-time token and returns a Bearer session token. Creates the user on first sign-in.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body VerifyRequest true "Email and token from the link"
// @Success 200 {object} helpers.APIResponse "data contains token, token_type, and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (invalid or expired link)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/verify [post]
func (c *AuthController) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.VerifyMagicLink(r.Context(), req.Email, req.Token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMagicLink) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, err.Error())
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, VerifyResponse{Token: token, TokenType: "Bearer", User: user})
}
