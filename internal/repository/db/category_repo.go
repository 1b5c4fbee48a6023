package db

import (
	"context"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository struct {
	Base[model.Category]
}

func NewCategoryRepository(gdb *gorm.DB) *CategoryRepository {
	return &CategoryRepository{Base: Base[model.Category]{DB: gdb}}
}

func (r *CategoryRepository) List(ctx context.Context, tx *gorm.DB) ([]model.Category, error) {
	return r.FindAll(ctx, tx, "name ASC, id ASC")
}

func (r *CategoryRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint64) (*model.Category, error) {
	c, err := r.First(ctx, tx, "id = ?", id)
	if err != nil {
		return nil, notFound(err, pkg.ErrCategoryNotFound, id)
	}
	return c, nil
}

// LockByID select for update，串行化同一分类的计数修改
func (r *CategoryRepository) LockByID(ctx context.Context, tx *gorm.DB, id uint64) (*model.Category, error) {
	var c model.Category
	err := r.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, pkg.ErrCategoryNotFound, id)
	}
	return &c, nil
}

// AdjustCommunityCount 计数增减在 SQL 内完成，且不低于 0。调用方需先 LockByID
func (r *CategoryRepository) AdjustCommunityCount(ctx context.Context, tx *gorm.DB, id uint64, delta int64) error {
	return r.conn(ctx, tx).Model(&model.Category{}).
		Where("id = ?", id).
		UpdateColumn("community_count", clampedDelta("community_count", delta)).Error
}

// SetCommunityCount 对账修正
func (r *CategoryRepository) SetCommunityCount(ctx context.Context, tx *gorm.DB, id uint64, n int64) error {
	return r.conn(ctx, tx).Model(&model.Category{}).
		Where("id = ?", id).
		UpdateColumn("community_count", n).Error
}

// clampedDelta col + delta，结果小于 0 时取 0；各方言通用
func clampedDelta(col string, delta int64) clause.Expr {
	return gorm.Expr("CASE WHEN "+col+" + ? < 0 THEN 0 ELSE "+col+" + ? END", delta, delta)
}
