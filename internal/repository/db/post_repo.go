package db

import (
	"context"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"

	"gorm.io/gorm"
)

type PostRepository struct {
	Base[model.Post]
}

func NewPostRepository(gdb *gorm.DB) *PostRepository {
	return &PostRepository{Base: Base[model.Post]{DB: gdb}}
}

func (r *PostRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint64) (*model.Post, error) {
	p, err := r.First(ctx, tx, "id = ?", id)
	if err != nil {
		return nil, notFound(err, pkg.ErrPostNotFound, id)
	}
	return p, nil
}

// FindInCommunity 帖子必须属于指定社区
func (r *PostRepository) FindInCommunity(ctx context.Context, tx *gorm.DB, communityID, postID uint64) (*model.Post, error) {
	p, err := r.First(ctx, tx, "id = ? AND community_id = ?", postID, communityID)
	if err != nil {
		return nil, notFound(err, pkg.ErrPostNotFound, postID)
	}
	return p, nil
}

func (r *PostRepository) Remove(ctx context.Context, tx *gorm.DB, id uint64) error {
	return r.conn(ctx, tx).Delete(&model.Post{}, id).Error
}
