package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenase/shenase/internal/application"
	"github.com/shenase/shenase/internal/domain/entity"
	"github.com/shenase/shenase/internal/interface/middleware"
	"github.com/shenase/shenase/pkg/response"
	"github.com/shenase/shenase/pkg/validation"
)

type UserHandler struct {
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(users *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

type registerRequest struct {
	Username    string `form:"username" binding:"required,username"`
	Email       string `form:"email" binding:"required,email"`
	Password    string `form:"password" binding:"required,pwd"`
	DisplayName string `form:"display_name" binding:"required,min=3,max=50"`
	Bio         string `form:"bio" binding:"omitempty,max=300"`
	Location    string `form:"location" binding:"omitempty,max=200"`
}

// Register POST /api/users
// Multipart registration with an optional avatar part.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Users.Register(c.Request.Context(), application.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}

	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			fail(c, h.Logger, err)
			return
		}
		defer func() { _ = f.Close() }()
		contentType := file.Header.Get("Content-Type")
		if _, err := h.Users.SaveAvatar(c.Request.Context(), u.ID, f, file.Filename, contentType); err != nil {
			fail(c, h.Logger, err)
			return
		}
		// reload so the response carries the stored avatar name
		if fresh, err := h.Users.GetByUsername(c.Request.Context(), u.Username); err == nil {
			u = fresh
		}
	}

	response.OK(c, http.StatusCreated, toUserView(u), "user created")
}

type updateMeRequest struct {
	Username    *string `json:"username" binding:"omitempty,username"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Password    *string `json:"password" binding:"omitempty,pwd"`
	DisplayName *string `json:"display_name" binding:"omitempty,min=3,max=50"`
	Bio         *string `json:"bio" binding:"omitempty,max=300"`
	Location    *string `json:"location" binding:"omitempty,max=200"`
}

// UpdateMe PUT /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	id, _ := middleware.CurrentIdentity(c)
	u, err := h.Users.Update(c.Request.Context(), id.User.ID, application.UpdateInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, toUserView(u), "user updated")
}

// UploadAvatar POST /api/users/me/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "missing file", nil)
		return
	}
	f, err := file.Open()
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	id, _ := middleware.CurrentIdentity(c)
	url, err := h.Users.SaveAvatar(c.Request.Context(), id.User.ID, f, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"file_location": url}, "avatar uploaded")
}

// GetProfile GET /api/profiles/:username
// Public profile lookup.
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	v := toUserView(u)
	// public view: identity basics and profile only
	response.OK(c, http.StatusOK, gin.H{
		"username": v.Username,
		"profile":  v.Profile,
	}, "")
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, toUserViews(users), "")
}

// Search GET /api/users/search?q=
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Fail(c, http.StatusBadRequest, "missing query", nil)
		return
	}
	hits, err := h.Users.Search(c.Request.Context(), q, 10)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, hits, "")
}

type updateRoleRequest struct {
	Role entity.Role `json:"role" binding:"required,oneof=admin moderator user"`
}

// UpdateRole PATCH /api/users/:username/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Users.UpdateRole(c.Request.Context(), c.Param("username"), req.Role)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, toUserView(u), "role updated")
}

type updateStatusRequest struct {
	Status entity.UserStatus `json:"status" binding:"required,oneof=active inactive suspended"`
}

// UpdateStatus PATCH /api/users/:username/status
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Users.UpdateStatus(c.Request.Context(), c.Param("username"), req.Status)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, toUserView(u), "status updated")
}
