package handler

import (
	"net/http"
	"time"

	"github.com/fandom-project/back-end/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc      *service.PostService
	composer *service.Composer
}

type CreatePostReq struct {
	UserID     uint64     `json:"user_id" binding:"required"`
	Title      string     `json:"title" binding:"required,max=255"`
	Type       string     `json:"type" binding:"required,max=45"`
	Text       string     `json:"text" binding:"max=1000"`
	CoverImage *string    `json:"cover_image"`
	EventDate  *time.Time `json:"event_date"`
}

func NewPostHandler(svc *service.PostService, composer *service.Composer) *PostHandler {
	return &PostHandler{svc: svc, composer: composer}
}

// ListByCommunity 社区帖子；没有帖子时返回空列表而不是 404
func (h *PostHandler) ListByCommunity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	posts, err := h.composer.CommunityPosts(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(posts) == 0 {
		respond(c, http.StatusOK, posts, "community has no posts")
		return
	}
	respond(c, http.StatusOK, posts, "ok")
}

// CreatePost 创建帖子接口
func (h *PostHandler) CreatePost(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params: "+err.Error())
		return
	}
	post, err := h.svc.Create(c.Request.Context(), req.UserID, communityID, service.NewPost{
		Title:      req.Title,
		Type:       req.Type,
		Text:       req.Text,
		CoverImage: req.CoverImage,
		EventDate:  req.EventDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, post, "post created")
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	communityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	postID, ok := paramID(c, "postId")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), communityID, postID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
