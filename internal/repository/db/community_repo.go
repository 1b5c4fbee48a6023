package db

import (
	"context"
	"errors"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityRepository struct {
	Base[model.Community]
}

func NewCommunityRepository(gdb *gorm.DB) *CommunityRepository {
	return &CommunityRepository{Base: Base[model.Community]{DB: gdb}}
}

// Create 名称唯一索引冲突转换为 ErrDuplicateName
func (r *CommunityRepository) Create(ctx context.Context, tx *gorm.DB, c *model.Community) error {
	err := r.Base.Create(ctx, tx, c)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrDuplicateName
	}
	return err
}

func (r *CommunityRepository) Save(ctx context.Context, tx *gorm.DB, c *model.Community) error {
	err := r.Base.Update(ctx, tx, c)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrDuplicateName
	}
	return err
}

func (r *CommunityRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint64) (*model.Community, error) {
	c, err := r.First(ctx, tx, "id = ?", id)
	if err != nil {
		return nil, notFound(err, pkg.ErrCommunityNotFound, id)
	}
	return c, nil
}

// LockByID 锁定社区行，用于成员数/帖子数的修改与更新
func (r *CommunityRepository) LockByID(ctx context.Context, tx *gorm.DB, id uint64) (*model.Community, error) {
	var c model.Community
	err := r.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, pkg.ErrCommunityNotFound, id)
	}
	return &c, nil
}

func (r *CommunityRepository) FindBySlug(ctx context.Context, tx *gorm.DB, slug string) (*model.Community, error) {
	c, err := r.First(ctx, tx, "slug = ?", slug)
	if err != nil {
		return nil, notFound(err, pkg.ErrCommunityNotFound, slug)
	}
	return c, nil
}

// NameTaken 名称是否被其他社区占用
func (r *CommunityRepository) NameTaken(ctx context.Context, tx *gorm.DB, name string, exceptID uint64) (bool, error) {
	n, err := r.Count(ctx, tx, "name = ? AND id <> ?", name, exceptID)
	return n > 0, err
}

func (r *CommunityRepository) SlugTaken(ctx context.Context, tx *gorm.DB, slug string, exceptID uint64) (bool, error) {
	n, err := r.Count(ctx, tx, "slug = ? AND id <> ?", slug, exceptID)
	return n > 0, err
}

// Delete 删除社区及其成员关系与帖子
func (r *CommunityRepository) Delete(ctx context.Context, tx *gorm.DB, id uint64) error {
	q := r.conn(ctx, tx)
	if err := q.Where("community_id = ?", id).Delete(&model.UserCommunity{}).Error; err != nil {
		return err
	}
	if err := q.Where("community_id = ?", id).Delete(&model.Post{}).Error; err != nil {
		return err
	}
	return q.Delete(&model.Community{}, id).Error
}

func (r *CommunityRepository) AdjustMemberCount(ctx context.Context, tx *gorm.DB, id uint64, delta int64) error {
	return r.conn(ctx, tx).Model(&model.Community{}).
		Where("id = ?", id).
		UpdateColumn("member_count", clampedDelta("member_count", delta)).Error
}

func (r *CommunityRepository) AdjustPostCount(ctx context.Context, tx *gorm.DB, id uint64, delta int64) error {
	return r.conn(ctx, tx).Model(&model.Community{}).
		Where("id = ?", id).
		UpdateColumn("post_count", clampedDelta("post_count", delta)).Error
}

// SetCounts 对账修正
func (r *CommunityRepository) SetCounts(ctx context.Context, tx *gorm.DB, id uint64, members, posts int64) error {
	return r.conn(ctx, tx).Model(&model.Community{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"member_count": members, "post_count": posts}).Error
}
