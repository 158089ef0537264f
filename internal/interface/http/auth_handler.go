package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenase/shenase/internal/application"
	"github.com/shenase/shenase/internal/interface/middleware"
	"github.com/shenase/shenase/pkg/apperrors"
	"github.com/shenase/shenase/pkg/helpers"
	"github.com/shenase/shenase/pkg/response"
	"github.com/shenase/shenase/pkg/validation"
)

type AuthHandler struct {
	Users   *application.UserService
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewAuthHandler(users *application.UserService, cookies *helpers.CookieManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Cookies: cookies, Logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,pwd"`
}

// Login POST /api/login
// Verifies credentials, issues a fingerprint-bound session, and stores the
// access token in the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	fingerprint := helpers.ClientFingerprint(
		c.GetHeader("User-Agent"),
		c.GetHeader("Accept-Language"),
	)
	u, sess, err := h.Users.Login(c.Request.Context(), req.Username, req.Password, fingerprint)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}

	h.Cookies.SetAccessToken(c, sess.AccessToken, sess.ExpiresAt)
	response.OK(c, http.StatusOK, toUserView(u), "logged in")
}

// Logout POST /api/logout
// Deactivates the presented session and clears the cookie. Idempotent.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(helpers.AccessTokenCookie)
	if err != nil || token == "" {
		response.Fail(c, http.StatusUnauthorized, apperrors.ErrInvalidSession.Error(), nil)
		return
	}
	if err := h.Users.Logout(c.Request.Context(), token); err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.OK(c, http.StatusOK, gin.H{}, "successfully logged out")
}

// Me GET /api/users/me
func (h *AuthHandler) Me(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	response.OK(c, http.StatusOK, toUserView(id.User), "")
}

// VerifyInit POST /api/auth/verify/init
// Issues a signed verification link and enqueues the verification email.
func (h *AuthHandler) VerifyInit(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	link, already, err := h.Users.VerifyInit(c.Request.Context(), id.User.ID)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	if already {
		response.OK(c, http.StatusOK, gin.H{"already_verified": true}, "already verified")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"verification_link": link}, "verification email sent")
}

// VerifyConfirm GET /api/auth/verify/confirm?token=
func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Fail(c, http.StatusBadRequest, "missing token", nil)
		return
	}
	if err := h.Users.VerifyConfirm(c.Request.Context(), token); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"verified": true}, "email verified")
}
