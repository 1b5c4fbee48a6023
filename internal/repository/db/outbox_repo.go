package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fandom-project/back-end/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

func NewOutboxRepository(gdb *gorm.DB) *OutboxRepository {
	return &OutboxRepository{DB: gdb}
}

// Insert 在业务事务内写入事件，随业务一起提交或回滚
func (r *OutboxRepository) Insert(ctx context.Context, tx *gorm.DB, event string, aggregateID uint64, data map[string]any) error {
	body := map[string]any{
		"event":      event,
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"id":         aggregateID,
	}
	for k, v := range data {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	if tx == nil {
		tx = r.DB
	}
	return tx.WithContext(ctx).Create(&model.DomainOutbox{
		EventType:   event,
		AggregateID: aggregateID,
		Payload:     string(payload),
		Status:      model.OutboxPending,
	}).Error
}

// List 待投递事件，按 id 顺序
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.DomainOutbox, error) {
	var list []model.DomainOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = ?", model.OutboxPending).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate 投递失败：重试次数 +1，超过上限标记为失败
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64, maxRetry int) error {
	q := r.DB.WithContext(ctx)
	if err := q.Model(&model.DomainOutbox{}).Where("id = ?", id).
		UpdateColumn("retry", gorm.Expr("retry + 1")).Error; err != nil {
		return err
	}
	return q.Model(&model.DomainOutbox{}).Where("id = ? AND retry >= ?", id, maxRetry).
		UpdateColumn("status", model.OutboxFailed).Error
}

func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.DomainOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
