package handler

import (
	"net/http"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/service"

	"github.com/gin-gonic/gin"
)

type MembershipHandler struct {
	members *service.MembershipManager
}

// FollowReq /api/communities/follow 请求体
type FollowReq struct {
	UserID      uint64     `json:"user_id" binding:"required"`
	CommunityID uint64     `json:"community_id" binding:"required"`
	Role        model.Role `json:"role"`
}

func NewMembershipHandler(members *service.MembershipManager) *MembershipHandler {
	return &MembershipHandler{members: members}
}

func (h *MembershipHandler) Follow(c *gin.Context) {
	var req FollowReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	m, err := h.members.AddMember(c.Request.Context(), req.UserID, req.CommunityID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, m, "joined community")
}

func (h *MembershipHandler) UpdateRole(c *gin.Context) {
	var req FollowReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Role == "" {
		badRequest(c, "invalid params")
		return
	}
	m, err := h.members.UpdateRole(c.Request.Context(), req.UserID, req.CommunityID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, m, "role updated")
}

func (h *MembershipHandler) Unfollow(c *gin.Context) {
	var req FollowReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	if err := h.members.RemoveMember(c.Request.Context(), req.UserID, req.CommunityID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
