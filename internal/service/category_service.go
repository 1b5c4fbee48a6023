package service

import (
	"context"
	"strings"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"
)

type CategoryService struct {
	repos *db.Repos
}

func NewCategoryService(repos *db.Repos) *CategoryService {
	return &CategoryService{repos: repos}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repos.Categories.List(ctx, nil)
}

func (s *CategoryService) Get(ctx context.Context, id uint64) (*model.Category, error) {
	return s.repos.Categories.FindByID(ctx, nil, id)
}

// Create 新分类计数从 0 开始
func (s *CategoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkg.Invalid("category name required")
	}
	c := &model.Category{Name: name}
	if err := s.repos.Categories.Create(ctx, nil, c); err != nil {
		return nil, err
	}
	return c, nil
}
