package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/shenase/shenase/internal/interface/http"
	"github.com/shenase/shenase/internal/interface/middleware"
)

// AuthModule registers login, logout, current-user, and email verification
// routes.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, Logger: logger}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/login", m.Handler.Login)
	rg.POST("/logout", m.Handler.Logout)
	rg.GET("/users/me", middleware.RequireAuth(m.Logger), m.Handler.Me)

	verify := rg.Group("/auth/verify")
	verify.POST("/init",
		middleware.RequireAuth(m.Logger),
		middleware.RequireActive(m.Logger),
		m.Handler.VerifyInit,
	)
	verify.GET("/confirm", m.Handler.VerifyConfirm)
}
