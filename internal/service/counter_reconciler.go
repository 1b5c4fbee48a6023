package service

import (
	"context"

	"github.com/fandom-project/back-end/internal/repository/db"

	"gorm.io/gorm"
)

// CounterReconciler 维护冗余计数：分类下的社区数、社区成员数与帖子数。
// 所有方法都在调用方的事务 tx 内执行，先锁行再用 SQL 表达式增减
type CounterReconciler struct {
	categories  *db.CategoryRepository
	communities *db.CommunityRepository
}

func NewCounterReconciler(repos *db.Repos) *CounterReconciler {
	return &CounterReconciler{categories: repos.Categories, communities: repos.Communities}
}

func (r *CounterReconciler) CommunityCreated(ctx context.Context, tx *gorm.DB, categoryID uint64) error {
	return r.adjustCategory(ctx, tx, categoryID, 1)
}

func (r *CounterReconciler) CommunityDeleted(ctx context.Context, tx *gorm.DB, categoryID uint64) error {
	return r.adjustCategory(ctx, tx, categoryID, -1)
}

// CategoryReassigned 旧分类 -1，新分类 +1；两行按 id 升序加锁，避免并发迁移互相死锁
func (r *CounterReconciler) CategoryReassigned(ctx context.Context, tx *gorm.DB, oldID, newID uint64) error {
	if oldID == newID {
		return nil
	}
	first, second := oldID, newID
	if first > second {
		first, second = second, first
	}
	if _, err := r.categories.LockByID(ctx, tx, first); err != nil {
		return err
	}
	if _, err := r.categories.LockByID(ctx, tx, second); err != nil {
		return err
	}
	if err := r.categories.AdjustCommunityCount(ctx, tx, oldID, -1); err != nil {
		return err
	}
	return r.categories.AdjustCommunityCount(ctx, tx, newID, 1)
}

func (r *CounterReconciler) MembersChanged(ctx context.Context, tx *gorm.DB, communityID uint64, delta int64) error {
	if _, err := r.communities.LockByID(ctx, tx, communityID); err != nil {
		return err
	}
	return r.communities.AdjustMemberCount(ctx, tx, communityID, delta)
}

func (r *CounterReconciler) PostsChanged(ctx context.Context, tx *gorm.DB, communityID uint64, delta int64) error {
	if _, err := r.communities.LockByID(ctx, tx, communityID); err != nil {
		return err
	}
	return r.communities.AdjustPostCount(ctx, tx, communityID, delta)
}

func (r *CounterReconciler) adjustCategory(ctx context.Context, tx *gorm.DB, categoryID uint64, delta int64) error {
	if _, err := r.categories.LockByID(ctx, tx, categoryID); err != nil {
		return err
	}
	return r.categories.AdjustCommunityCount(ctx, tx, categoryID, delta)
}
