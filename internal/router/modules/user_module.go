package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenase/shenase/internal/domain/entity"
	handlers "github.com/shenase/shenase/internal/interface/http"
	"github.com/shenase/shenase/internal/interface/middleware"
)

// UserModule registers registration, profile, avatar, and the
// administrative user management routes.
type UserModule struct {
	Handler *handlers.UserHandler
	Logger  *logrus.Logger
}

func NewUserModule(h *handlers.UserHandler, logger *logrus.Logger) *UserModule {
	return &UserModule{Handler: h, Logger: logger}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", handlers.Health)

	rg.POST("/users", m.Handler.Register)
	rg.GET("/profiles/:username", m.Handler.GetProfile)

	me := rg.Group("/users/me",
		middleware.RequireAuth(m.Logger),
		middleware.RequireActive(m.Logger),
	)
	me.PUT("", m.Handler.UpdateMe)
	me.POST("/avatar", m.Handler.UploadAvatar)

	staff := rg.Group("/users",
		middleware.RequireAuth(m.Logger),
		middleware.RequireActive(m.Logger),
		middleware.RequireRoles(m.Logger, entity.RoleAdmin, entity.RoleModerator),
	)
	staff.GET("", m.Handler.List)
	staff.GET("/search", m.Handler.Search)

	admin := rg.Group("/users/:username",
		middleware.RequireAuth(m.Logger),
		middleware.RequireActive(m.Logger),
		middleware.RequireRoles(m.Logger, entity.RoleAdmin),
	)
	admin.PATCH("/role", m.Handler.UpdateRole)
	admin.PATCH("/status", m.Handler.UpdateStatus)
}
