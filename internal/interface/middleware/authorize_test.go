package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/shenase/shenase/internal/domain/entity"
	"github.com/shenase/shenase/pkg/helpers"
)

// identityStub plants a fixed identity ahead of the gate under test,
// standing in for the authentication gate.
func identityStub(id *Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		setIdentity(c, id)
		c.Next()
	}
}

func runGate(t *testing.T, handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	chain := append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/", chain...)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func identityWith(role entity.Role, status entity.UserStatus) *Identity {
	return &Identity{
		User:    &entity.User{ID: "u1", Username: "johndoe", Role: role, Status: status},
		Session: &entity.Session{ID: "s1", UserID: "u1", Status: entity.SessionActive},
	}
}

func TestGatesWithoutAuthenticationAreInternalErrors(t *testing.T) {
	logger := helpers.NewLogger("test", "development")

	for name, gate := range map[string]gin.HandlerFunc{
		"RequireAuth":   RequireAuth(logger),
		"RequireActive": RequireActive(logger),
		"RequireRoles":  RequireRoles(logger, entity.RoleAdmin),
	} {
		t.Run(name, func(t *testing.T) {
			w := runGate(t, gate)
			require.Equal(t, http.StatusInternalServerError, w.Code)
		})
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	logger := helpers.NewLogger("test", "development")
	w := runGate(t, identityStub(&Identity{}), RequireAuth(logger))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	logger := helpers.NewLogger("test", "development")
	w := runGate(t, identityStub(identityWith(entity.RoleUser, entity.UserActive)), RequireAuth(logger))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireActiveRejectsSuspended(t *testing.T) {
	logger := helpers.NewLogger("test", "development")
	for _, status := range []entity.UserStatus{entity.UserInactive, entity.UserSuspended} {
		w := runGate(t, identityStub(identityWith(entity.RoleUser, status)), RequireActive(logger))
		require.Equal(t, http.StatusBadRequest, w.Code, "status %s", status)
	}
}

func TestRequireActivePassesActive(t *testing.T) {
	logger := helpers.NewLogger("test", "development")
	w := runGate(t, identityStub(identityWith(entity.RoleUser, entity.UserActive)), RequireActive(logger))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRejectsOutsiders(t *testing.T) {
	logger := helpers.NewLogger("test", "development")
	w := runGate(t,
		identityStub(identityWith(entity.RoleUser, entity.UserActive)),
		RequireRoles(logger, entity.RoleAdmin, entity.RoleModerator),
	)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesAllowsListedRoles(t *testing.T) {
	logger := helpers.NewLogger("test", "development")
	for _, role := range []entity.Role{entity.RoleAdmin, entity.RoleModerator} {
		w := runGate(t,
			identityStub(identityWith(role, entity.UserActive)),
			RequireRoles(logger, entity.RoleAdmin, entity.RoleModerator),
		)
		require.Equal(t, http.StatusOK, w.Code, "role %s", role)
	}
}

func TestRequireRolesRejectsAnonymous(t *testing.T) {
	logger := helpers.NewLogger("test", "development")
	w := runGate(t, identityStub(&Identity{}), RequireRoles(logger, entity.RoleAdmin))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
