package db

import (
	"context"
	"errors"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MembershipRepository struct {
	Base[model.UserCommunity]
}

func NewMembershipRepository(gdb *gorm.DB) *MembershipRepository {
	return &MembershipRepository{Base: Base[model.UserCommunity]{DB: gdb}}
}

// Join 插入成员关系；(user_id, community_id) 冲突视为重复加入
func (r *MembershipRepository) Join(ctx context.Context, tx *gorm.DB, m *model.UserCommunity) error {
	err := r.Base.Create(ctx, tx, m)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrDuplicateMembership
	}
	return err
}

// Find 加行锁读取，供同一事务内的角色修改/删除使用
func (r *MembershipRepository) Find(ctx context.Context, tx *gorm.DB, userID, communityID uint64) (*model.UserCommunity, error) {
	var m model.UserCommunity
	err := r.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND community_id = ?", userID, communityID).
		First(&m).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, pkg.ErrMembershipNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) IsMember(ctx context.Context, tx *gorm.DB, userID, communityID uint64) (bool, error) {
	n, err := r.Count(ctx, tx, "user_id = ? AND community_id = ?", userID, communityID)
	return n > 0, err
}

func (r *MembershipRepository) FindOwner(ctx context.Context, tx *gorm.DB, communityID uint64) (*model.UserCommunity, error) {
	m, err := r.First(ctx, tx, "community_id = ? AND role = ?", communityID, model.RoleOwner)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, pkg.ErrMembershipNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *MembershipRepository) Leave(ctx context.Context, tx *gorm.DB, m *model.UserCommunity) error {
	return r.conn(ctx, tx).Delete(&model.UserCommunity{}, m.ID).Error
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, tx *gorm.DB, m *model.UserCommunity, role model.Role) error {
	if err := r.conn(ctx, tx).Model(m).Update("role", role).Error; err != nil {
		return err
	}
	m.Role = role
	return nil
}

// ListByUser role 为空时返回全部成员关系
func (r *MembershipRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID uint64, role model.Role) ([]model.UserCommunity, error) {
	q := r.conn(ctx, tx).Where("user_id = ?", userID)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var list []model.UserCommunity
	err := q.Order("community_id ASC").Find(&list).Error
	return list, err
}

// CountOwned 用户作为拥有者的社区数
func (r *MembershipRepository) CountOwned(ctx context.Context, tx *gorm.DB, userID uint64) (int64, error) {
	return r.Count(ctx, tx, "user_id = ? AND role = ?", userID, model.RoleOwner)
}

func (r *MembershipRepository) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint64) error {
	return r.conn(ctx, tx).Where("user_id = ?", userID).Delete(&model.UserCommunity{}).Error
}
