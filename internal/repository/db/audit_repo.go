package db

import (
	"context"

	"github.com/fandom-project/back-end/internal/model"

	"gorm.io/gorm"
)

// AuditRepository 计数对账查询：分批读取缓存值，并从明细表统计真实值
type AuditRepository struct {
	DB *gorm.DB
}

func NewAuditRepository(gdb *gorm.DB) *AuditRepository {
	return &AuditRepository{DB: gdb}
}

// CategoryBatch 按 id 游标分批读取分类
func (r *AuditRepository) CategoryBatch(ctx context.Context, lastID uint64, batchSize int) ([]model.Category, uint64, error) {
	var list []model.Category
	if err := r.DB.WithContext(ctx).
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

// CommunityBatch 按 id 游标分批读取社区
func (r *AuditRepository) CommunityBatch(ctx context.Context, lastID uint64, batchSize int) ([]model.Community, uint64, error) {
	var list []model.Community
	if err := r.DB.WithContext(ctx).
		Select("id", "category_id", "member_count", "post_count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

func (r *AuditRepository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = r.DB
	}
	return tx.WithContext(ctx)
}

// RealCommunityCount 统计真实社区数；对账时在锁住分类行的同一事务内调用
func (r *AuditRepository) RealCommunityCount(ctx context.Context, tx *gorm.DB, categoryID uint64) (int64, error) {
	var n int64
	err := r.conn(ctx, tx).Model(&model.Community{}).
		Where("category_id = ?", categoryID).
		Count(&n).Error
	return n, err
}

func (r *AuditRepository) RealMemberCount(ctx context.Context, tx *gorm.DB, communityID uint64) (int64, error) {
	var n int64
	err := r.conn(ctx, tx).Model(&model.UserCommunity{}).
		Where("community_id = ?", communityID).
		Count(&n).Error
	return n, err
}

func (r *AuditRepository) RealPostCount(ctx context.Context, tx *gorm.DB, communityID uint64) (int64, error) {
	var n int64
	err := r.conn(ctx, tx).Model(&model.Post{}).
		Where("community_id = ?", communityID).
		Count(&n).Error
	return n, err
}
