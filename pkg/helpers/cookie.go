package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AccessTokenCookie is the cookie carrying the session access token.
const AccessTokenCookie = "access_token"

// CookieManager writes and clears the session cookie with consistent
// attributes: HttpOnly, SameSite=Lax, Secure per configuration.
type CookieManager struct {
	Domain string
	Secure bool
}

func NewCookieManager(domain string, secure bool) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure}
}

// SetAccessToken stores the access token with an expiry aligned to the
// session's expires_at.
func (m *CookieManager) SetAccessToken(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, token, maxAgeFrom(expiresAt), "/", m.Domain, m.Secure, true)
}

// Clear removes the access token cookie. Done on logout and whenever a
// presented token fails validation.
func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
