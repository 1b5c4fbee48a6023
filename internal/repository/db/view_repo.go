package db

import (
	"context"

	"github.com/fandom-project/back-end/internal/model"

	"gorm.io/gorm"
)

// ViewRepository 读侧联表查询：分类名、拥有者、作者名等在 SQL 中一次解析
type ViewRepository struct {
	DB *gorm.DB
}

func NewViewRepository(gdb *gorm.DB) *ViewRepository {
	return &ViewRepository{DB: gdb}
}

const communityViewColumns = `c.id, c.category_id, COALESCE(cat.name, '') AS category_name,
	c.name, c.slug, c.member_count, c.post_count, c.cover_image, c.banner_image, c.description,
	COALESCE(o.user_id, 0) AS owner_id, COALESCE(u.full_name, '') AS owner_name,
	c.created_at, c.updated_at`

func (r *ViewRepository) communityQuery(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("communities AS c").
		Select(communityViewColumns).
		Joins("LEFT JOIN categories AS cat ON cat.id = c.category_id").
		Joins("LEFT JOIN user_communities AS o ON o.community_id = c.id AND o.role = ?", model.RoleOwner).
		Joins("LEFT JOIN users AS u ON u.id = o.user_id")
}

// Communities 按条件查询社区视图；where 为空时返回全部
func (r *ViewRepository) Communities(ctx context.Context, offset, limit int, where string, args ...any) ([]model.CommunityView, error) {
	q := r.communityQuery(ctx)
	if where != "" {
		q = q.Where(where, args...)
	}
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	var list []model.CommunityView
	err := q.Order("c.name ASC, c.id ASC").Scan(&list).Error
	return list, err
}

// CommunitiesOfUser 用户所在社区；role 为空时不过滤角色
func (r *ViewRepository) CommunitiesOfUser(ctx context.Context, userID uint64, role model.Role) ([]model.CommunityView, error) {
	sub := r.DB.Model(&model.UserCommunity{}).Select("community_id").Where("user_id = ?", userID)
	if role != "" {
		sub = sub.Where("role = ?", role)
	}
	var list []model.CommunityView
	err := r.communityQuery(ctx).
		Where("c.id IN (?)", sub).
		Order("c.name ASC, c.id ASC").
		Scan(&list).Error
	return list, err
}

// Feed 用户以 Follower 身份关注的社区中的帖子，按创建时间倒序
func (r *ViewRepository) Feed(ctx context.Context, userID uint64) ([]model.FeedPost, error) {
	var list []model.FeedPost
	err := r.DB.WithContext(ctx).
		Table("posts AS p").
		Select(`p.id, p.user_id, COALESCE(u.full_name, '') AS author_name, p.title, p.type, p.text,
			p.cover_image, p.event_date, p.created_at, p.updated_at,
			p.community_id, c.name AS community_name, c.cover_image AS community_cover_image`).
		Joins("JOIN user_communities AS f ON f.community_id = p.community_id AND f.user_id = ? AND f.role = ?", userID, model.RoleFollower).
		Joins("JOIN communities AS c ON c.id = p.community_id").
		Joins("LEFT JOIN users AS u ON u.id = p.user_id").
		Order("p.created_at DESC, p.id DESC").
		Scan(&list).Error
	return list, err
}

// CommunityPosts 社区帖子，按创建时间倒序
func (r *ViewRepository) CommunityPosts(ctx context.Context, communityID uint64) ([]model.PostView, error) {
	var list []model.PostView
	err := r.DB.WithContext(ctx).
		Table("posts AS p").
		Select(`p.id, p.user_id, COALESCE(u.full_name, '') AS author_name, p.title, p.type, p.text,
			p.cover_image, p.event_date, p.created_at, p.updated_at`).
		Joins("LEFT JOIN users AS u ON u.id = p.user_id").
		Where("p.community_id = ?", communityID).
		Order("p.created_at DESC, p.id DESC").
		Scan(&list).Error
	return list, err
}

// Members 社区成员，拥有者在前
func (r *ViewRepository) Members(ctx context.Context, communityID uint64) ([]model.MemberView, error) {
	var list []model.MemberView
	err := r.DB.WithContext(ctx).
		Table("user_communities AS m").
		Select("m.user_id, COALESCE(u.full_name, '') AS full_name, COALESCE(u.slug, '') AS slug, m.role, m.created_at AS joined_at").
		Joins("LEFT JOIN users AS u ON u.id = m.user_id").
		Where("m.community_id = ?", communityID).
		Order("CASE WHEN m.role = 'Owner' THEN 0 ELSE 1 END, m.created_at ASC, m.id ASC").
		Scan(&list).Error
	return list, err
}
