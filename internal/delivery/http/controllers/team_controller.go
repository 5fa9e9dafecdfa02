package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"statuspage/internal/delivery/http/helpers"
	"statuspage/internal/delivery/http/middleware"
	"statuspage/internal/domain"
)

// TeamController serves team management endpoints.
type TeamController struct {
	Logger  *slog.Logger
	Service domain.TeamService
}

func NewTeamController(logger *slog.Logger, svc domain.TeamService) *TeamController {
	return &TeamController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateTeamRequest is the request body for POST /teams. Only name is accepted.
type CreateTeamRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (c CreateTeamRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// CreateTeamSuccessResponse is the success response envelope for POST /teams (201).
type CreateTeamSuccessResponse struct {
	Data  *domain.Team      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateTeam godoc
// @Summary Create a new team
// @Description Creates a team with a slug derived from the name. The authenticated user becomes the team OWNER.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTeamRequest true "Team data (name only)"
// @Success 201 {object} controllers.CreateTeamSuccessResponse "data contains the created team"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams [post]
func (c *TeamController) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	team, err := c.Service.CreateTeam(r.Context(), req.Name, userID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid team name")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, team)
}

// ListMyTeamsSuccessResponse is the success response envelope for GET /teams/me (200).
type ListMyTeamsSuccessResponse struct {
	Data  []*domain.TeamWithRole `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ListMyTeams godoc
// @Summary List teams of the current user
// @Description Returns the teams the authenticated user belongs to, with their role in each.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMyTeamsSuccessResponse "data is an array of teams with roles"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams/me [get]
func (c *TeamController) ListMyTeams(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	teams, err := c.Service.ListMyTeams(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if teams == nil {
		teams = []*domain.TeamWithRole{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, teams)
}

// ListTeamMembersResponse is the data payload for GET /teams/{teamID}/members (200).
type ListTeamMembersResponse struct {
	Items      []*domain.TeamMember   `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListTeamMembersSuccessResponse is the success response envelope for GET /teams/{teamID}/members (200).
type ListTeamMembersSuccessResponse struct {
	Data  ListTeamMembersResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ListTeamMembers godoc
// @Summary List members of a team
// @Description Returns a paginated list of team members with their roles. The caller must be an OWNER or ADMIN of the team. Use page and page_size query params.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListTeamMembersSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not OWNER/ADMIN)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /teams/{teamID}/members [get]
func (c *TeamController) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
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
	params := helpers.ParsePagination(r)
	members, total, err := c.Service.ListTeamMembers(r.Context(), teamID, requesterID, params)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if members == nil {
		members = []*domain.TeamMember{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListTeamMembersResponse{Items: members, Pagination: meta})
}
