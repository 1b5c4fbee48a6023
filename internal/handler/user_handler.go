package handler

import (
	"net/http"

	"github.com/fandom-project/back-end/internal/middleware"
	"github.com/fandom-project/back-end/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc      *service.UserService
	composer *service.Composer
}

// RegisterReq 注册请求体
type RegisterReq struct {
	FullName      string  `json:"full_name" binding:"required,max=45"`
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=6"`
	ProfileAvatar *string `json:"profile_avatar"`
	Bio           *string `json:"bio" binding:"omitempty,max=255"`
}

type UpdateUserReq struct {
	FullName      string  `json:"full_name" binding:"omitempty,max=45"`
	Email         string  `json:"email" binding:"omitempty,email"`
	ProfileAvatar *string `json:"profile_avatar"`
	Bio           *string `json:"bio" binding:"omitempty,max=255"`
}

type AuthReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ResetReq 重置密码请求体
type ResetReq struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func NewUserHandler(svc *service.UserService, composer *service.Composer) *UserHandler {
	return &UserHandler{svc: svc, composer: composer}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, users, "ok")
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, user, "ok")
}

// Register 注册接口
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params: "+err.Error())
		return
	}
	user, err := h.svc.Register(c.Request.Context(), service.Registration{
		FullName:      req.FullName,
		Email:         req.Email,
		Password:      req.Password,
		ProfileAvatar: req.ProfileAvatar,
		Bio:           req.Bio,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, user, "user created")
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params: "+err.Error())
		return
	}
	user, err := h.svc.Update(c.Request.Context(), id, service.ProfileUpdate{
		FullName:      req.FullName,
		Email:         req.Email,
		ProfileAvatar: req.ProfileAvatar,
		Bio:           req.Bio,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, user, "user updated")
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Authenticate 登录接口
func (h *UserHandler) Authenticate(c *gin.Context) {
	var req AuthReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	user, pair, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "authenticated")
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "password updated")
}

func (h *UserHandler) Logout(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}
	if err := h.svc.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "logged out")
}

// TokenRefresh 刷新 token
func (h *UserHandler) TokenRefresh(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, pair, "ok")
}

// Communities ?returnType=follower|follower-simple|owner|owner-simple
func (h *UserHandler) Communities(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rt, err := service.ParseReturnType(c.Query("returnType"))
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.composer.UserCommunities(c.Request.Context(), id, rt)
	if err != nil {
		respondError(c, err)
		return
	}
	if view.Simple {
		respond(c, http.StatusOK, view.IDs, "ok")
		return
	}
	respond(c, http.StatusOK, view.Communities, "ok")
}

func (h *UserHandler) Feed(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	feed, err := h.composer.Feed(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(feed) == 0 {
		respond(c, http.StatusOK, feed, "no posts from followed communities")
		return
	}
	respond(c, http.StatusOK, feed, "ok")
}
