package service

import (
	"context"
	"strings"
	"time"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"

	"gorm.io/gorm"
)

type NewPost struct {
	Title      string
	Type       string
	Text       string
	CoverImage *string
	EventDate  *time.Time
}

type PostService struct {
	repos    *db.Repos
	counters *CounterReconciler
}

func NewPostService(repos *db.Repos, counters *CounterReconciler) *PostService {
	return &PostService{repos: repos, counters: counters}
}

// Create 发帖，社区帖子数 +1
func (s *PostService) Create(ctx context.Context, userID, communityID uint64, in NewPost) (*model.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, pkg.Invalid("title required")
	}

	post := &model.Post{
		Title:       in.Title,
		Type:        in.Type,
		Text:        in.Text,
		CoverImage:  in.CoverImage,
		EventDate:   in.EventDate,
		UserID:      userID,
		CommunityID: communityID,
	}
	err := s.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		ok, err := s.repos.Users.Exists(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return pkg.ErrUserNotFound
		}
		if err := s.counters.PostsChanged(ctx, tx, communityID, 1); err != nil {
			return err
		}
		if err := s.repos.Posts.Create(ctx, tx, post); err != nil {
			return err
		}
		return s.repos.Outbox.Insert(ctx, tx, model.EventPostCreated, communityID, map[string]any{
			"post_id": post.ID, "user_id": userID,
		})
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Delete 删帖，社区帖子数 -1
func (s *PostService) Delete(ctx context.Context, communityID, postID uint64) error {
	return s.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		post, err := s.repos.Posts.FindInCommunity(ctx, tx, communityID, postID)
		if err != nil {
			return err
		}
		if err := s.repos.Posts.Remove(ctx, tx, post.ID); err != nil {
			return err
		}
		if err := s.counters.PostsChanged(ctx, tx, communityID, -1); err != nil {
			return err
		}
		return s.repos.Outbox.Insert(ctx, tx, model.EventPostDeleted, communityID, map[string]any{"post_id": post.ID})
	})
}
