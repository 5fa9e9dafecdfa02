package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"statuspage/config"
	_ "statuspage/docs"
	"statuspage/internal/adapters/auth"
	"statuspage/internal/adapters/email"
	httpdelivery "statuspage/internal/delivery/http"
	"statuspage/internal/delivery/http/controllers"
	"statuspage/internal/delivery/http/middleware"
	"statuspage/internal/repository/postgres"
	"statuspage/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title           Status Page Team API
// @version         1.0
// @description     Team, membership, and invitation management for the status page service.

// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	verificationRepo := postgres.NewVerificationTokenRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)

	// Adapters
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create mailer: %v", err)
	}
	renderer := email.NewTemplateRenderer()

	// Services
	emailService := services.NewEmailService(mailer, renderer)
	userService := services.NewUserService(userRepo, verificationRepo, tokenIssuer, cfg.TokenExpiry, emailService, cfg.AppBaseURL)
	teamService := services.NewTeamService(teamRepo, membershipRepo, serviceTimeout)
	inviteService := services.NewInviteService(invitationRepo, membershipRepo, teamRepo, emailService, cfg.AppBaseURL, serviceTimeout)

	// Controllers
	authController := controllers.NewAuthController(logger, userService)
	userController := controllers.NewUserController(logger, userService)
	teamController := controllers.NewTeamController(logger, teamService)
	inviteController := controllers.NewInviteController(logger, inviteService)

	mux := httpdelivery.NewRouter(authController, userController, teamController, inviteController, tokenVerifier, logger)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server starting", "addr", addr, "env", cfg.Environment)
	if cfg.Environment == "development" {
		log.Printf("Swagger UI available at http://localhost%s/swagger/index.html", addr)
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
