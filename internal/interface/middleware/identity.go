package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/shenase/shenase/internal/domain/entity"
)

// identityCtxKey marks that the authentication gate ran for this request.
// The stored Identity may still be anonymous (nil User).
const identityCtxKey = "identity"

// Identity is the request-scoped outcome of authentication: the resolved
// user and the session that authenticated it, or an anonymous identity when
// no token was presented.
type Identity struct {
	User    *entity.User
	Session *entity.Session
}

// Anonymous reports whether no caller identity was resolved.
func (id *Identity) Anonymous() bool {
	return id == nil || id.User == nil
}

func setIdentity(c *gin.Context, id *Identity) {
	c.Set(identityCtxKey, id)
}

// CurrentIdentity returns the identity attached by the authentication gate.
// The second result is false when the gate never ran, which downstream gates
// treat as a programming error rather than a user error.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityCtxKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok
}
