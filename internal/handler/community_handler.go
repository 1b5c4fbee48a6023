package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/service"

	"github.com/gin-gonic/gin"
)

// CoverUploader 对象存储（MinIO 实现见 repository/minio）
type CoverUploader interface {
	Upload(ctx context.Context, communityID uint64, fileName string, file io.Reader, size int64) (string, error)
}

const maxCoverSize = 5 << 20

type CommunityHandler struct {
	svc      *service.CommunityService
	composer *service.Composer
	covers   CoverUploader
}

type CommunityCreateReq struct {
	UserID      uint64  `json:"user_id" binding:"required"`
	CategoryID  uint64  `json:"category_id" binding:"required"`
	Name        string  `json:"name" binding:"required,max=64"`
	CoverImage  *string `json:"cover_image"`
	BannerImage *string `json:"banner_image"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

type CommunityUpdateReq struct {
	CategoryID  uint64  `json:"category_id"`
	Name        string  `json:"name" binding:"omitempty,max=64"`
	CoverImage  *string `json:"cover_image"`
	BannerImage *string `json:"banner_image"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

func NewCommunityHandler(svc *service.CommunityService, composer *service.Composer, covers CoverUploader) *CommunityHandler {
	return &CommunityHandler{svc: svc, composer: composer, covers: covers}
}

// List ?slug= 按 slug 查单个，否则按名称分页
func (h *CommunityHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if slug, ok := c.GetQuery("slug"); ok {
		view, err := h.composer.CommunityBySlug(ctx, slug)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, view, "ok")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	list, err := h.composer.Communities(ctx, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []model.CommunityView{}
	}
	respond(c, http.StatusOK, list, "ok")
}

func (h *CommunityHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.composer.Community(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, view, "ok")
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params: "+err.Error())
		return
	}
	community, err := h.svc.Create(c.Request.Context(), &model.Community{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		CoverImage:  req.CoverImage,
		BannerImage: req.BannerImage,
		Description: req.Description,
	}, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.composer.Community(c.Request.Context(), community.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, view, "community created")
}

func (h *CommunityHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CommunityUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params: "+err.Error())
		return
	}
	if _, err := h.svc.Update(c.Request.Context(), id, service.CommunityUpdate{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		CoverImage:  req.CoverImage,
		BannerImage: req.BannerImage,
		Description: req.Description,
	}); err != nil {
		respondError(c, err)
		return
	}
	view, err := h.composer.Community(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, view, "community updated")
}

func (h *CommunityHandler) Delete(c *gin.Context) {
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

func (h *CommunityHandler) Members(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	members, err := h.composer.Members(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, members, "ok")
}

// UploadCover multipart 字段 file
func (h *CommunityHandler) UploadCover(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if h.covers == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "object storage not configured"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file required")
		return
	}
	if fh.Size > maxCoverSize {
		badRequest(c, "file too large")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.composer.Community(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, "cannot read file")
		return
	}
	defer f.Close()

	url, err := h.covers.Upload(ctx, id, fh.Filename, f, fh.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.svc.SetCover(ctx, id, url); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"cover_image": url}, "cover uploaded")
}
