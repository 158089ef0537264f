package router

import (
	"github.com/shenase/shenase/internal/application"
	"github.com/shenase/shenase/internal/container"
	pginfra "github.com/shenase/shenase/internal/infrastructure/postgres"
	handlers "github.com/shenase/shenase/internal/interface/http"
	"github.com/shenase/shenase/internal/interface/middleware"
	"github.com/shenase/shenase/internal/router/modules"
	"github.com/shenase/shenase/pkg/helpers"
)

// InitModules wires repositories, services, and handlers from the container
// singletons and registers every module with the registry. Called once
// during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	sessionRepo := pginfra.NewSessionRepository(pool)
	userRepo := pginfra.NewUserRepository(pool)

	sessions := application.NewSessionService(sessionRepo, cfg.SessionTTL(), logger)
	users := application.NewUserService(application.UserServiceParams{
		Repo:     userRepo,
		Sessions: sessions,
		Logger:   logger,

		Redis: container.GetRedis(),

		GCS:           container.GetGCS(),
		GCSBucket:     cfg.GCSBucket,
		AvatarPrefix:  cfg.AvatarPrefix,
		DefaultAvatar: cfg.DefaultAvatar,

		ES:           container.GetES(),
		ESUsersIndex: cfg.ESUsersIndex,

		VerifyTokens:   container.GetVerifyTokens(),
		VerifyEmailURL: cfg.VerifyEmailURL,
		Pub:            container.GetRabbitPub(),
		MailEnabled:    cfg.MailSendEnabled,
	})

	cookies := helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure)

	// The authentication gate runs for every API route, public ones included.
	r.Use(middleware.Auth(users, sessions, cookies, logger))

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(users, cookies, logger), logger))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(users, logger), logger))
}
