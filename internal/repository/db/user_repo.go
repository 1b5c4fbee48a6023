package db

import (
	"context"
	"errors"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"

	"gorm.io/gorm"
)

type UserRepository struct {
	Base[model.User]
}

func NewUserRepository(gdb *gorm.DB) *UserRepository {
	return &UserRepository{Base: Base[model.User]{DB: gdb}}
}

func (r *UserRepository) Create(ctx context.Context, tx *gorm.DB, user *model.User) error {
	err := r.Base.Create(ctx, tx, user)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.ErrDuplicateEmail
	}
	return err
}

// List 按名字排序
func (r *UserRepository) List(ctx context.Context, tx *gorm.DB) ([]model.User, error) {
	return r.FindAll(ctx, tx, "full_name ASC, id ASC")
}

func (r *UserRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint64) (*model.User, error) {
	user, err := r.First(ctx, tx, "id = ?", id)
	if err != nil {
		return nil, notFound(err, pkg.ErrUserNotFound, id)
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error) {
	user, err := r.First(ctx, tx, "email = ?", email)
	if err != nil {
		return nil, notFound(err, pkg.ErrUserNotFound, email)
	}
	return user, nil
}

// EmailTaken 邮箱是否已被其他用户占用（exceptID=0 表示不排除）
func (r *UserRepository) EmailTaken(ctx context.Context, tx *gorm.DB, email string, exceptID uint64) (bool, error) {
	n, err := r.Count(ctx, tx, "email = ? AND id <> ?", email, exceptID)
	return n > 0, err
}

func (r *UserRepository) Exists(ctx context.Context, tx *gorm.DB, id uint64) (bool, error) {
	n, err := r.Count(ctx, tx, "id = ?", id)
	return n > 0, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, tx *gorm.DB, user *model.User, newPassword string) error {
	return r.conn(ctx, tx).Model(user).Update("password", newPassword).Error
}
