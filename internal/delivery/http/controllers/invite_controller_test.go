package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"statuspage/internal/delivery/http/middleware"
	"statuspage/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeInviteService implements domain.InviteService for handler tests.
type fakeInviteService struct {
	createInv  *domain.Invitation
	createErr  error
	getInv     *domain.Invitation
	getTeam    *domain.Team
	getErr     error
	acceptTeam *domain.Team
	acceptErr  error
	listInvs   []*domain.Invitation
	listErr    error

	lastTeamID string
	lastEmail  string
	lastRole   domain.Role
	lastToken  string
}

func (f *fakeInviteService) CreateInvitation(ctx context.Context, teamID, requesterID, email string, role domain.Role) (*domain.Invitation, error) {
	f.lastTeamID, f.lastEmail, f.lastRole = teamID, email, role
	return f.createInv, f.createErr
}

func (f *fakeInviteService) GetInvitation(ctx context.Context, token, requesterEmail string) (*domain.Invitation, *domain.Team, error) {
	f.lastToken, f.lastEmail = token, requesterEmail
	return f.getInv, f.getTeam, f.getErr
}

func (f *fakeInviteService) AcceptInvitation(ctx context.Context, token, requesterID, requesterEmail string) (*domain.Team, error) {
	f.lastToken, f.lastEmail = token, requesterEmail
	return f.acceptTeam, f.acceptErr
}

func (f *fakeInviteService) ListInvitations(ctx context.Context, teamID, requesterID string) ([]*domain.Invitation, error) {
	f.lastTeamID = teamID
	return f.listInvs, f.listErr
}

// newAuthedRequest builds a request carrying an authenticated identity in its
// context, the way RequireAuth would.
func newAuthedRequest(method, target, body, userID, email string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.SetIdentity(req.Context(), userID, email))
}

func TestInviteController_CreateTeamInvite(t *testing.T) {
	validInv := &domain.Invitation{Token: "tok", TeamID: "team-1", Email: "bob@example.com", Role: domain.RoleMember, InviteURL: "https://app.example.com/invite/tok"}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "created",
			body:       `{"email":"bob@example.com","role":"MEMBER"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           `{nope`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "bad_request",
		},
		{
			name:           "bad email rejected before the service",
			body:           `{"email":"not-an-email","role":"MEMBER"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "valid email",
		},
		{
			name:           "bad role rejected before the service",
			body:           `{"email":"bob@example.com","role":"SUPERUSER"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "role must be one of",
		},
		{
			name:           "unknown field rejected",
			body:           `{"email":"bob@example.com","role":"MEMBER","surprise":true}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "bad_request",
		},
		{
			name:           "service invalid input",
			body:           `{"email":"bob@example.com","role":"MEMBER"}`,
			serviceErr:     domain.ErrInvalidInput,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid email or role",
		},
		{
			name:           "forbidden",
			body:           `{"email":"bob@example.com","role":"MEMBER"}`,
			serviceErr:     domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
		{
			name:           "team not found",
			body:           `{"email":"bob@example.com","role":"MEMBER"}`,
			serviceErr:     domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "team not found",
		},
		{
			name:           "already a member",
			body:           `{"email":"bob@example.com","role":"MEMBER"}`,
			serviceErr:     domain.ErrAlreadyMember,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "already a team member",
		},
		{
			name:           "duplicate invite",
			body:           `{"email":"bob@example.com","role":"MEMBER"}`,
			serviceErr:     domain.ErrDuplicateInvite,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "pending invitation already exists",
		},
		{
			name:           "service error",
			body:           `{"email":"bob@example.com","role":"MEMBER"}`,
			serviceErr:     errors.New("db down"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInviteService{createInv: validInv, createErr: tt.serviceErr}
			ctrl := NewInviteController(testLogger(), fake)

			req := newAuthedRequest(http.MethodPost, "/teams/team-1/invites", tt.body, "alice-id", "alice@example.com")
			req.SetPathValue("teamID", "team-1")
			rr := httptest.NewRecorder()

			ctrl.CreateTeamInvite(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.wantBodySubstr != "" {
				assert.Contains(t, rr.Body.String(), tt.wantBodySubstr, "response body")
			}
			if tt.wantStatus == http.StatusCreated {
				var resp CreateInviteSuccessResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				require.NotNil(t, resp.Data)
				assert.Equal(t, "tok", resp.Data.Token)
				assert.Equal(t, "https://app.example.com/invite/tok", resp.Data.InviteURL)
				assert.Equal(t, "team-1", fake.lastTeamID)
				assert.Equal(t, domain.RoleMember, fake.lastRole)
			}
		})
	}
}

func TestInviteController_ListTeamInvites(t *testing.T) {
	t.Run("returns invitations", func(t *testing.T) {
		fake := &fakeInviteService{listInvs: []*domain.Invitation{{Token: "tok1"}, {Token: "tok2"}}}
		ctrl := NewInviteController(testLogger(), fake)

		req := newAuthedRequest(http.MethodGet, "/teams/team-1/invites", "", "alice-id", "alice@example.com")
		req.SetPathValue("teamID", "team-1")
		rr := httptest.NewRecorder()

		ctrl.ListTeamInvites(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp ListInvitesSuccessResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Len(t, resp.Data, 2)
	})

	t.Run("forbidden for non-managers", func(t *testing.T) {
		fake := &fakeInviteService{listErr: domain.ErrForbidden}
		ctrl := NewInviteController(testLogger(), fake)

		req := newAuthedRequest(http.MethodGet, "/teams/team-1/invites", "", "mallory-id", "mallory@example.com")
		req.SetPathValue("teamID", "team-1")
		rr := httptest.NewRecorder()

		ctrl.ListTeamInvites(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestInviteController_GetInvite(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"unknown token", domain.ErrNotFound, http.StatusNotFound},
		{"expired", domain.ErrExpired, http.StatusBadRequest},
		{"email mismatch", domain.ErrEmailMismatch, http.StatusForbidden},
		{"service error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInviteService{
				getInv:  &domain.Invitation{Token: "tok", Email: "bob@example.com"},
				getTeam: &domain.Team{ID: "team-1", Name: "Acme"},
				getErr:  tt.serviceErr,
			}
			ctrl := NewInviteController(testLogger(), fake)

			req := newAuthedRequest(http.MethodGet, "/invite/tok", "", "bob-id", "bob@example.com")
			req.SetPathValue("token", "tok")
			rr := httptest.NewRecorder()

			ctrl.GetInvite(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var resp GetInviteSuccessResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "Acme", resp.Data.Team.Name)
				assert.Equal(t, "bob@example.com", fake.lastEmail, "session email is passed through")
			}
		})
	}
}

func TestInviteController_AcceptInvite(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		wantStatus     int
		wantBodySubstr string
	}{
		{"accepted", nil, http.StatusOK, `"accepted"`},
		{"unknown token", domain.ErrNotFound, http.StatusNotFound, "not found"},
		{"expired", domain.ErrExpired, http.StatusBadRequest, "expired"},
		{"email mismatch", domain.ErrEmailMismatch, http.StatusForbidden, "different email"},
		{"already member", domain.ErrAlreadyMember, http.StatusBadRequest, "already a team member"},
		{"service error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInviteService{
				acceptTeam: &domain.Team{ID: "team-1", Name: "Acme"},
				acceptErr:  tt.serviceErr,
			}
			ctrl := NewInviteController(testLogger(), fake)

			req := newAuthedRequest(http.MethodPost, "/invite/tok", "", "bob-id", "bob@example.com")
			req.SetPathValue("token", "tok")
			rr := httptest.NewRecorder()

			ctrl.AcceptInvite(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBodySubstr)
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		ctrl := NewInviteController(testLogger(), &fakeInviteService{})

		req := httptest.NewRequest(http.MethodPost, "/invite/tok", nil)
		req.SetPathValue("token", "tok")
		rr := httptest.NewRecorder()

		ctrl.AcceptInvite(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
