package service

import (
	"context"
	"strings"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"

	"gorm.io/gorm"
)

// CommunityUpdate 零值字段保持不变
type CommunityUpdate struct {
	CategoryID  uint64
	Name        string
	CoverImage  *string
	BannerImage *string
	Description *string
}

type CommunityService struct {
	repos    *db.Repos
	counters *CounterReconciler
	members  *MembershipManager
	log      *pkg.Logger
}

func NewCommunityService(repos *db.Repos, counters *CounterReconciler, members *MembershipManager, log *pkg.Logger) *CommunityService {
	return &CommunityService{repos: repos, counters: counters, members: members, log: log.With("component", "community")}
}

func (s *CommunityService) Create(ctx context.Context, c *model.Community, ownerID uint64) (*model.Community, error) {
	return s.members.CreateCommunityWithOwner(ctx, c, ownerID)
}

// Update 修改社区；更换分类时两个分类的计数在同一事务内迁移
func (s *CommunityService) Update(ctx context.Context, id uint64, in CommunityUpdate) (*model.Community, error) {
	in.Name = strings.TrimSpace(in.Name)

	var c *model.Community
	err := s.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if c, err = s.repos.Communities.LockByID(ctx, tx, id); err != nil {
			return err
		}

		if in.CategoryID != 0 && in.CategoryID != c.CategoryID {
			if err := s.counters.CategoryReassigned(ctx, tx, c.CategoryID, in.CategoryID); err != nil {
				return err
			}
			c.CategoryID = in.CategoryID
		}

		if in.Name != "" && in.Name != c.Name {
			taken, err := s.repos.Communities.NameTaken(ctx, tx, in.Name, c.ID)
			if err != nil {
				return err
			}
			if taken {
				return pkg.ErrDuplicateName
			}
			slug := pkg.Slugify(in.Name)
			if slug == "" {
				return pkg.Invalid("community name produces an empty slug")
			}
			if c.Slug, err = uniqueSlug(ctx, tx, s.repos.Communities, slug, c.ID); err != nil {
				return err
			}
			c.Name = in.Name
		}

		if in.CoverImage != nil {
			c.CoverImage = in.CoverImage
		}
		if in.BannerImage != nil {
			c.BannerImage = in.BannerImage
		}
		if in.Description != nil {
			c.Description = in.Description
		}
		if err := s.repos.Communities.Save(ctx, tx, c); err != nil {
			return err
		}
		return s.repos.Outbox.Insert(ctx, tx, model.EventCommunityUpdated, c.ID, map[string]any{
			"name": c.Name, "category_id": c.CategoryID,
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SetCover 封面上传完成后回写地址
func (s *CommunityService) SetCover(ctx context.Context, id uint64, url string) (*model.Community, error) {
	return s.Update(ctx, id, CommunityUpdate{CoverImage: &url})
}

// Delete 删除社区及其成员关系、帖子，分类计数 -1
func (s *CommunityService) Delete(ctx context.Context, id uint64) error {
	err := s.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		c, err := s.repos.Communities.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.counters.CommunityDeleted(ctx, tx, c.CategoryID); err != nil {
			return err
		}
		if err := s.repos.Communities.Delete(ctx, tx, c.ID); err != nil {
			return err
		}
		return s.repos.Outbox.Insert(ctx, tx, model.EventCommunityDeleted, c.ID, map[string]any{
			"category_id": c.CategoryID,
		})
	})
	if err != nil {
		return err
	}
	s.log.Info("community deleted", "community_id", id)
	return nil
}
