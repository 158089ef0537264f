package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenase/shenase/internal/domain/entity"
	"github.com/shenase/shenase/pkg/apperrors"
	"github.com/shenase/shenase/pkg/response"
)

// mustIdentity fetches the identity, aborting with 500 when the
// authentication gate never ran. That is a wiring bug, not a user error.
func mustIdentity(c *gin.Context, logger *logrus.Logger) (*Identity, bool) {
	id, ok := CurrentIdentity(c)
	if !ok {
		logger.WithField("path", c.FullPath()).Error("authorization gate reached without authentication gate")
		response.Abort(c, http.StatusInternalServerError, "internal error", nil)
		return nil, false
	}
	return id, true
}

// RequireAuth rejects anonymous callers with the uniform 401.
func RequireAuth(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mustIdentity(c, logger)
		if !ok {
			return
		}
		if id.Anonymous() {
			response.Abort(c, http.StatusUnauthorized, apperrors.ErrInvalidSession.Error(), nil)
			return
		}
		c.Next()
	}
}

// RequireActive rejects authenticated callers whose account status is not
// ACTIVE. Applied before role checks, never folded into them.
func RequireActive(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mustIdentity(c, logger)
		if !ok {
			return
		}
		if id.Anonymous() {
			response.Abort(c, http.StatusUnauthorized, apperrors.ErrInvalidSession.Error(), nil)
			return
		}
		if id.User.Status != entity.UserActive {
			response.Abort(c, http.StatusBadRequest, apperrors.ErrInactiveUser.Error(), nil)
			return
		}
		c.Next()
	}
}

// RequireRoles rejects authenticated callers whose role is outside the
// allowed set.
func RequireRoles(logger *logrus.Logger, roles ...entity.Role) gin.HandlerFunc {
	allowed := make(map[entity.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		id, ok := mustIdentity(c, logger)
		if !ok {
			return
		}
		if id.Anonymous() {
			response.Abort(c, http.StatusUnauthorized, apperrors.ErrInvalidSession.Error(), nil)
			return
		}
		if _, ok := allowed[id.User.Role]; !ok {
			response.Abort(c, http.StatusForbidden, apperrors.ErrNotAuthorized.Error(), nil)
			return
		}
		c.Next()
	}
}
