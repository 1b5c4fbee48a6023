package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/fandom-project/back-end/internal/pkg"

	"gorm.io/gorm"
)

// Store 一次请求内的工作单元入口；不持有任何跨请求状态
type Store struct {
	DB *gorm.DB
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{DB: gdb}
}

// Transaction 开启事务执行 fn，全部成功才提交，任何错误整体回滚。
// fn 返回的业务错误原样返回；存储层拒绝写入或提交失败统一包装为 ErrTransactionFailed
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var fnErr error
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(tx)
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil && pkg.IsDomain(fnErr) {
		return fnErr
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", pkg.ErrDuplicate, err)
	}
	return fmt.Errorf("%w: %w", pkg.ErrTransactionFailed, err)
}

// Base 通用仓储：FindAll / FindWhere / Create / Update / Delete。
// tx 为 nil 时在工作单元之外直接访问数据库
type Base[T any] struct {
	DB *gorm.DB
}

func (b Base[T]) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = b.DB
	}
	return tx.WithContext(ctx)
}

func (b Base[T]) FindAll(ctx context.Context, tx *gorm.DB, order string) ([]T, error) {
	var list []T
	q := b.conn(ctx, tx)
	if order != "" {
		q = q.Order(order)
	}
	err := q.Find(&list).Error
	return list, err
}

func (b Base[T]) FindWhere(ctx context.Context, tx *gorm.DB, query any, args ...any) ([]T, error) {
	var list []T
	err := b.conn(ctx, tx).Where(query, args...).Find(&list).Error
	return list, err
}

// First 未找到时返回 gorm.ErrRecordNotFound，由具体仓储转换为领域错误
func (b Base[T]) First(ctx context.Context, tx *gorm.DB, query any, args ...any) (*T, error) {
	var v T
	if err := b.conn(ctx, tx).Where(query, args...).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (b Base[T]) Count(ctx context.Context, tx *gorm.DB, query any, args ...any) (int64, error) {
	var n int64
	err := b.conn(ctx, tx).Model(new(T)).Where(query, args...).Count(&n).Error
	return n, err
}

func (b Base[T]) Create(ctx context.Context, tx *gorm.DB, entity *T) error {
	return b.conn(ctx, tx).Create(entity).Error
}

func (b Base[T]) Update(ctx context.Context, tx *gorm.DB, entity *T) error {
	return b.conn(ctx, tx).Save(entity).Error
}

func (b Base[T]) Delete(ctx context.Context, tx *gorm.DB, entity *T) error {
	return b.conn(ctx, tx).Delete(entity).Error
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// notFound 将 gorm 的未找到转换为指定领域错误
func notFound(err error, domainErr error, id any) error {
	if isRecordNotFound(err) {
		return fmt.Errorf("%w: id %v", domainErr, id)
	}
	return err
}
