// Package handlers contains the Gin HTTP handlers of the API.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenase/shenase/internal/domain/entity"
	"github.com/shenase/shenase/pkg/apperrors"
	"github.com/shenase/shenase/pkg/response"
)

// ProfileView is the wire representation of a profile.
type ProfileView struct {
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Bio         string `json:"bio,omitempty"`
	Location    string `json:"location,omitempty"`
}

// UserView is the wire representation of a user. The password hash never
// leaves the service.
type UserView struct {
	ID         string            `json:"id"`
	Username   string            `json:"username"`
	Email      string            `json:"email"`
	Role       entity.Role       `json:"role"`
	Status     entity.UserStatus `json:"status"`
	IsVerified bool              `json:"is_verified"`
	CreatedAt  time.Time         `json:"created_at"`
	Profile    *ProfileView      `json:"profile,omitempty"`
}

func toUserView(u *entity.User) UserView {
	v := UserView{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		Status:     u.Status,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
	if u.Profile != nil {
		v.Profile = &ProfileView{
			DisplayName: u.Profile.DisplayName,
			Avatar:      u.Profile.Avatar,
			Bio:         u.Profile.Bio,
			Location:    u.Profile.Location,
		}
	}
	return v
}

func toUserViews(users []*entity.User) []UserView {
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, toUserView(u))
	}
	return out
}

// fail translates a service error into a response. Errors outside the
// taxonomy are logged and answered with an opaque 500.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	if apperrors.Expected(err) {
		response.Fail(c, apperrors.HTTPStatus(err), err.Error(), nil)
		return
	}
	logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	response.Fail(c, http.StatusInternalServerError, "internal error", nil)
}
