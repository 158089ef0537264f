package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenase/shenase/internal/application"
	"github.com/shenase/shenase/pkg/apperrors"
	"github.com/shenase/shenase/pkg/helpers"
	"github.com/shenase/shenase/pkg/response"
)

// Auth is the authentication gate. It runs for every API request, public
// routes included, so that downstream code always finds identity
// resolved-or-anonymous rather than unresolved.
//
// No cookie: the request proceeds anonymously. A presented token is
// validated against the session store together with the client fingerprint;
// any failure is answered uniformly with 401 and the cookie is cleared.
func Auth(users *application.UserService, sessions *application.SessionService, cookies *helpers.CookieManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AccessTokenCookie)
		if err != nil || token == "" {
			setIdentity(c, &Identity{})
			c.Next()
			return
		}

		ctx := c.Request.Context()
		fingerprint := helpers.ClientFingerprint(
			c.GetHeader("User-Agent"),
			c.GetHeader("Accept-Language"),
		)

		sess, err := sessions.Validate(ctx, token, fingerprint)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidSession) {
				cookies.Clear(c)
				response.Abort(c, http.StatusUnauthorized, apperrors.ErrInvalidSession.Error(), nil)
				return
			}
			logger.WithError(err).Error("session validation failed")
			response.Abort(c, http.StatusInternalServerError, "internal error", nil)
			return
		}

		u, err := users.GetByID(ctx, sess.UserID)
		if err != nil {
			logger.WithError(err).WithField("user_id", sess.UserID).Error("identity resolution failed")
			response.Abort(c, http.StatusInternalServerError, "internal error", nil)
			return
		}
		if u == nil {
			// Session outlived its user record; treat as any invalid token.
			cookies.Clear(c)
			response.Abort(c, http.StatusUnauthorized, apperrors.ErrInvalidSession.Error(), nil)
			return
		}

		setIdentity(c, &Identity{User: u, Session: sess})
		c.Next()
	}
}
