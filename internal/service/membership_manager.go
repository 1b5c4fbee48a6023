package service

import (
	"context"
	"strings"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"

	"gorm.io/gorm"
)

// MembershipManager 成员关系的增删改，以及“建社区 + 拥有者”这一组合写入。
// 每个操作一个事务：成员行、计数、outbox 事件同时提交或同时回滚
type MembershipManager struct {
	repos    *db.Repos
	counters *CounterReconciler
	log      *pkg.Logger
}

func NewMembershipManager(repos *db.Repos, counters *CounterReconciler, log *pkg.Logger) *MembershipManager {
	return &MembershipManager{repos: repos, counters: counters, log: log.With("component", "membership")}
}

// AddMember 以 Follower（或空角色）加入社区；Owner 只能通过建社区或转让产生
func (m *MembershipManager) AddMember(ctx context.Context, userID, communityID uint64, role model.Role) (*model.UserCommunity, error) {
	if role == "" {
		role = model.RoleFollower
	}
	if !role.Valid() {
		return nil, pkg.Invalid("unknown role %q", role)
	}
	if role == model.RoleOwner {
		return nil, pkg.Invalid("a community has exactly one owner")
	}

	uc := &model.UserCommunity{UserID: userID, CommunityID: communityID, Role: role}
	err := m.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := m.requireUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := m.counters.MembersChanged(ctx, tx, communityID, 1); err != nil {
			return err
		}
		exists, err := m.repos.Members.IsMember(ctx, tx, userID, communityID)
		if err != nil {
			return err
		}
		if exists {
			return pkg.ErrDuplicateMembership
		}
		if err := m.repos.Members.Join(ctx, tx, uc); err != nil {
			return err
		}
		return m.repos.Outbox.Insert(ctx, tx, model.EventMemberAdded, communityID, map[string]any{
			"user_id": userID, "role": role,
		})
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("member added", "user_id", userID, "community_id", communityID)
	return uc, nil
}

// RemoveMember 退出社区；拥有者不能直接退出
func (m *MembershipManager) RemoveMember(ctx context.Context, userID, communityID uint64) error {
	err := m.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := m.repos.Communities.FindByID(ctx, tx, communityID); err != nil {
			return err
		}
		uc, err := m.repos.Members.Find(ctx, tx, userID, communityID)
		if err != nil {
			return err
		}
		if uc.Role == model.RoleOwner {
			return pkg.Invalid("the owner cannot leave the community")
		}
		if err := m.repos.Members.Leave(ctx, tx, uc); err != nil {
			return err
		}
		if err := m.counters.MembersChanged(ctx, tx, communityID, -1); err != nil {
			return err
		}
		return m.repos.Outbox.Insert(ctx, tx, model.EventMemberRemoved, communityID, map[string]any{"user_id": userID})
	})
	if err != nil {
		return err
	}
	m.log.Info("member removed", "user_id", userID, "community_id", communityID)
	return nil
}

// UpdateRole 修改角色。提升为 Owner 即转让：原拥有者在同一事务内降为 Follower
func (m *MembershipManager) UpdateRole(ctx context.Context, userID, communityID uint64, role model.Role) (*model.UserCommunity, error) {
	if !role.Valid() {
		return nil, pkg.Invalid("unknown role %q", role)
	}

	var uc *model.UserCommunity
	err := m.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := m.repos.Communities.LockByID(ctx, tx, communityID); err != nil {
			return err
		}
		var err error
		uc, err = m.repos.Members.Find(ctx, tx, userID, communityID)
		if err != nil {
			return err
		}
		if uc.Role == role {
			return nil
		}
		if uc.Role == model.RoleOwner {
			return pkg.Invalid("transfer ownership by promoting another member")
		}

		from := uc.Role
		if role == model.RoleOwner {
			owner, err := m.repos.Members.FindOwner(ctx, tx, communityID)
			if err != nil && !pkg.IsNotFound(err) {
				return err
			}
			if owner != nil {
				if err := m.repos.Members.UpdateRole(ctx, tx, owner, model.RoleFollower); err != nil {
					return err
				}
			}
		}
		if err := m.repos.Members.UpdateRole(ctx, tx, uc, role); err != nil {
			return err
		}
		return m.repos.Outbox.Insert(ctx, tx, model.EventRoleChanged, communityID, map[string]any{
			"user_id": userID, "from": from, "to": role,
		})
	})
	if err != nil {
		return nil, err
	}
	return uc, nil
}

// CreateCommunityWithOwner 分类计数 +1、写入社区、写入拥有者关系，全部在一个事务内
func (m *MembershipManager) CreateCommunityWithOwner(ctx context.Context, c *model.Community, ownerID uint64) (*model.Community, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, pkg.Invalid("community name required")
	}
	slug := pkg.Slugify(c.Name)
	if slug == "" {
		return nil, pkg.Invalid("community name produces an empty slug")
	}

	err := m.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := m.requireUser(ctx, tx, ownerID); err != nil {
			return err
		}
		if err := m.counters.CommunityCreated(ctx, tx, c.CategoryID); err != nil {
			return err
		}
		taken, err := m.repos.Communities.NameTaken(ctx, tx, c.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return pkg.ErrDuplicateName
		}
		if c.Slug, err = uniqueSlug(ctx, tx, m.repos.Communities, slug, 0); err != nil {
			return err
		}

		c.ID = 0
		c.MemberCount = 1
		c.PostCount = 0
		if err := m.repos.Communities.Create(ctx, tx, c); err != nil {
			return err
		}
		if err := m.repos.Members.Join(ctx, tx, &model.UserCommunity{
			UserID: ownerID, CommunityID: c.ID, Role: model.RoleOwner,
		}); err != nil {
			return err
		}
		return m.repos.Outbox.Insert(ctx, tx, model.EventCommunityCreated, c.ID, map[string]any{
			"name": c.Name, "category_id": c.CategoryID, "owner_id": ownerID,
		})
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("community created", "community_id", c.ID, "owner_id", ownerID)
	return c, nil
}

func (m *MembershipManager) requireUser(ctx context.Context, tx *gorm.DB, userID uint64) error {
	ok, err := m.repos.Users.Exists(ctx, tx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.ErrUserNotFound
	}
	return nil
}

// uniqueSlug slug 冲突时追加随机后缀
func uniqueSlug(ctx context.Context, tx *gorm.DB, communities *db.CommunityRepository, slug string, exceptID uint64) (string, error) {
	candidate := slug
	for i := 0; i < 5; i++ {
		taken, err := communities.SlugTaken(ctx, tx, candidate, exceptID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		if candidate, err = pkg.SlugWithSuffix(slug); err != nil {
			return "", err
		}
	}
	return "", pkg.ErrDuplicateName
}
