package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"statuspage/internal/delivery/http/helpers"
	"statuspage/internal/delivery/http/middleware"
	"statuspage/internal/domain"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// InviteController serves the invitation lifecycle endpoints.
type InviteController struct {
	Logger  *slog.Logger
	Service domain.InviteService
}

func NewInviteController(logger *slog.Logger, svc domain.InviteService) *InviteController {
	return &InviteController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateInviteRequest is the request body for POST /teams/{teamID}/invites.
type CreateInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate implements Validator.
func (c CreateInviteRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(strings.TrimSpace(c.Email)) {
		errs = append(errs, "email must be a valid email address")
	}
	if !domain.Role(c.Role).IsValid() {
		errs = append(errs, "role must be one of OWNER, ADMIN, MEMBER")
	}
	return errs
}

// CreateInviteSuccessResponse is the success response envelope for POST /teams/{teamID}/invites (201).
type CreateInviteSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// CreateTeamInvite godoc
// @Summary Invite an email address to a team
// @Description Creates a pending invitation for the email at the given role and emails the invite link. The caller must be an OWNER or ADMIN of the team. Email dispatch is best-effort; the invitation exists even if the email fails and the returned invite_url can be shared manually.
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID (UUID)"
// @Param body body CreateInviteRequest true "Invitee email and role"
// @Success 201 {object} controllers.CreateInviteSuccessResponse "data contains the invitation with invite_url"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid input, already a member, or duplicate invite)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not OWNER/ADMIN)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams/{teamID}/invites [post]
func (c *InviteController) CreateTeamInvite(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")
	if teamID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing teamID")
		return
	}
	var req CreateInviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	inv, err := c.Service.CreateInvitation(r.Context(), teamID, requesterID, req.Email, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid email or role")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "team not found")
			return
		}
		if errors.Is(err, domain.ErrAlreadyMember) || errors.Is(err, domain.ErrDuplicateInvite) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// ListInvitesSuccessResponse is the success response envelope for GET /teams/{teamID}/invites (200).
type ListInvitesSuccessResponse struct {
	Data  []*domain.Invitation `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListTeamInvites godoc
// @Summary List pending invitations for a team
// @Description Returns all pending invitations for the team, newest first. The caller must be an OWNER or ADMIN of the team. Expired invitations are included; they are rejected lazily on use, not deleted.
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID (UUID)"
// @Success 200 {object} controllers.ListInvitesSuccessResponse "data is an array of invitations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not OWNER/ADMIN)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams/{teamID}/invites [get]
func (c *InviteController) ListTeamInvites(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")
	if teamID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing teamID")
		return
	}
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	invs, err := c.Service.ListInvitations(r.Context(), teamID, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invs)
}

// GetInviteResponse is the data payload for GET /invite/{token} (200).
type GetInviteResponse struct {
	Invitation *domain.Invitation `json:"invitation"`
	Team       *domain.Team       `json:"team"`
}

// GetInviteSuccessResponse is the success response envelope for GET /invite/{token} (200).
type GetInviteSuccessResponse struct {
	Data  GetInviteResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetInvite godoc
// @Summary Look up an invitation by token
// @Description Returns the invitation and its team. The invitation must not be expired and must have been issued for the email of the authenticated session.
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token (64-char hex)"
// @Success 200 {object} controllers.GetInviteSuccessResponse "data contains invitation and team"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (expired)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (email mismatch)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invite/{token} [get]
func (c *InviteController) GetInvite(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing token")
		return
	}
	requesterEmail, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	inv, team, err := c.Service.GetInvitation(r.Context(), token, requesterEmail)
	if err != nil {
		c.writeInviteLookupError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, GetInviteResponse{Invitation: inv, Team: team})
}

// AcceptInviteResponse is the data payload for POST /invite/{token} (200).
type AcceptInviteResponse struct {
	Status string       `json:"status"`
	Team   *domain.Team `json:"team"`
}

// AcceptInviteSuccessResponse is the success response envelope for POST /invite/{token} (200).
type AcceptInviteSuccessResponse struct {
	Data  AcceptInviteResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// AcceptInvite godoc
// @Summary Accept an invitation
// @Description Creates a membership for the authenticated user at the invited role and consumes the invitation. The invitation must not be expired and must have been issued for the email of the authenticated session. Accepting twice never produces a duplicate membership.
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token (64-char hex)"
// @Success 200 {object} controllers.AcceptInviteSuccessResponse "data contains status and the joined team"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (expired or already a member)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (email mismatch)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invite/{token} [post]
func (c *InviteController) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing token")
		return
	}
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	requesterEmail, ok := middleware.UserEmailFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	team, err := c.Service.AcceptInvitation(r.Context(), token, requesterID, requesterEmail)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.writeInviteLookupError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AcceptInviteResponse{Status: "accepted", Team: team})
}

// writeInviteLookupError maps the shared lookup failures (unknown token,
// expired, email mismatch) to their status codes.
func (c *InviteController) writeInviteLookupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
	case errors.Is(err, domain.ErrExpired):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrEmailMismatch):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
