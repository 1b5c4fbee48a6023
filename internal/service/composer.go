package service

import (
	"context"
	"strings"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"
)

// ReturnType 用户社区视图的返回形式
type ReturnType int

const (
	ReturnOwner ReturnType = iota
	ReturnOwnerSimple
	ReturnFollower
	ReturnFollowerSimple
)

var returnTypeNames = map[string]ReturnType{
	"owner":           ReturnOwner,
	"owner-simple":    ReturnOwnerSimple,
	"follower":        ReturnFollower,
	"follower-simple": ReturnFollowerSimple,
}

// ParseReturnType 空值取 owner；未知取值返回校验错误
func ParseReturnType(s string) (ReturnType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ReturnOwner, nil
	}
	rt, ok := returnTypeNames[s]
	if !ok {
		return 0, pkg.Invalid("unknown returnType %q", s)
	}
	return rt, nil
}

func (rt ReturnType) String() string {
	for name, v := range returnTypeNames {
		if v == rt {
			return name
		}
	}
	return "unknown"
}

// Composer 读侧视图组装：联表在存储层完成，这里负责存在性判断与形状
type Composer struct {
	repos *db.Repos
}

func NewComposer(repos *db.Repos) *Composer {
	return &Composer{repos: repos}
}

func (c *Composer) Community(ctx context.Context, id uint64) (*model.CommunityView, error) {
	views, err := c.repos.Views.Communities(ctx, 0, 0, "c.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, pkg.ErrCommunityNotFound
	}
	return &views[0], nil
}

func (c *Composer) CommunityBySlug(ctx context.Context, slug string) (*model.CommunityView, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkg.Invalid("slug required")
	}
	views, err := c.repos.Views.Communities(ctx, 0, 0, "c.slug = ?", slug)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, pkg.ErrCommunityNotFound
	}
	return &views[0], nil
}

// Communities 按名称排序分页；page 从 1 开始，size 超出范围取 20
func (c *Composer) Communities(ctx context.Context, page, size int) ([]model.CommunityView, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return c.repos.Views.Communities(ctx, (page-1)*size, size, "")
}

func (c *Composer) UserCommunities(ctx context.Context, userID uint64, rt ReturnType) (*model.UserCommunities, error) {
	if _, err := c.repos.Users.FindByID(ctx, nil, userID); err != nil {
		return nil, err
	}

	var role model.Role
	var simple bool
	switch rt {
	case ReturnFollower:
	case ReturnFollowerSimple:
		simple = true
	case ReturnOwner:
		role = model.RoleOwner
	case ReturnOwnerSimple:
		role, simple = model.RoleOwner, true
	default:
		return nil, pkg.Invalid("unknown returnType %d", rt)
	}

	out := &model.UserCommunities{Simple: simple}
	if simple {
		list, err := c.repos.Members.ListByUser(ctx, nil, userID, role)
		if err != nil {
			return nil, err
		}
		out.IDs = make([]uint64, 0, len(list))
		for _, m := range list {
			out.IDs = append(out.IDs, m.CommunityID)
		}
		return out, nil
	}
	views, err := c.repos.Views.CommunitiesOfUser(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []model.CommunityView{}
	}
	out.Communities = views
	return out, nil
}

// Feed 用户以 Follower 身份所在社区的帖子，按时间倒序
func (c *Composer) Feed(ctx context.Context, userID uint64) ([]model.FeedPost, error) {
	if _, err := c.repos.Users.FindByID(ctx, nil, userID); err != nil {
		return nil, err
	}
	feed, err := c.repos.Views.Feed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if feed == nil {
		feed = []model.FeedPost{}
	}
	return feed, nil
}

// CommunityPosts 社区不存在返回 ErrCommunityNotFound；存在但没有帖子返回空切片
func (c *Composer) CommunityPosts(ctx context.Context, communityID uint64) ([]model.PostView, error) {
	if _, err := c.repos.Communities.FindByID(ctx, nil, communityID); err != nil {
		return nil, err
	}
	posts, err := c.repos.Views.CommunityPosts(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.PostView{}
	}
	return posts, nil
}

func (c *Composer) Members(ctx context.Context, communityID uint64) ([]model.MemberView, error) {
	if _, err := c.repos.Communities.FindByID(ctx, nil, communityID); err != nil {
		return nil, err
	}
	return c.repos.Views.Members(ctx, communityID)
}
