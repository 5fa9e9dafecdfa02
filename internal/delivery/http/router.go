package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"statuspage/internal/delivery/http/controllers"
	"statuspage/internal/delivery/http/middleware"
	"statuspage/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	authController *controllers.AuthController,
	userController *controllers.UserController,
	teamController *controllers.TeamController,
	inviteController *controllers.InviteController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// Auth (public)
	mux.HandleFunc("POST /auth/magic-link", authController.RequestMagicLink)
	mux.HandleFunc("POST /auth/verify", authController.VerifyMagicLink)

	// Users
	mux.HandleFunc("GET /users/me", requireAuth(userController.GetMe))

	// Teams
	mux.HandleFunc("POST /teams", requireAuth(teamController.CreateTeam))
	mux.HandleFunc("GET /teams/me", requireAuth(teamController.ListMyTeams))
	mux.HandleFunc("GET /teams/{teamID}/members", requireAuth(teamController.ListTeamMembers))

	// Invitations
	mux.HandleFunc("POST /teams/{teamID}/invites", requireAuth(inviteController.CreateTeamInvite))
	mux.HandleFunc("GET /teams/{teamID}/invites", requireAuth(inviteController.ListTeamInvites))
	mux.HandleFunc("GET /invite/{token}", requireAuth(inviteController.GetInvite))
	mux.HandleFunc("POST /invite/{token}", requireAuth(inviteController.AcceptInvite))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
