package service

import (
	"context"
	"time"

	"github.com/fandom-project/back-end/internal/config"
	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"
)

const outboxMaxRetry = 10

type Sender func(ctx context.Context, ob *model.DomainOutbox) error

// OutboxRelayer 定时扫描 outbox 表，把事件投递给 sender（Kafka）
type OutboxRelayer struct {
	repo      *db.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
	log       *pkg.Logger
}

func NewOutboxRelayer(repos *db.Repos, cfg config.Worker, sender Sender, log *pkg.Logger) *OutboxRelayer {
	r := &OutboxRelayer{
		repo:      repos.Outbox,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		sender:    sender,
		log:       log.With("component", "outbox"),
	}
	if r.batchSize <= 0 {
		r.batchSize = 200
	}
	if r.interval <= 0 {
		r.interval = time.Second
	}
	return r
}

// Run 直到 ctx 取消
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 投递一批，返回成功条数
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		r.log.Error("outbox query failed", "err", err)
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			r.log.Warn("outbox send failed", "id", ob.ID, "event", ob.EventType, "retry", ob.Retry, "err", err)
			if err := r.repo.RetryUpdate(ctx, ob.ID, outboxMaxRetry); err != nil {
				r.log.Error("outbox retry update failed", "id", ob.ID, "err", err)
			}
			continue
		}
		if err := r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			r.log.Error("outbox success update failed", "id", ob.ID, "err", err)
			continue
		}
		sent++
	}
	return sent
}

// KafkaSender 以聚合 id 为 key，保证同一社区的事件有序
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.DomainOutbox) error {
		return p.Send(ctx, pkg.MakeKeyFromID(ob.AggregateID), []byte(ob.Payload), map[string]string{
			"event_type": ob.EventType,
		})
	}
}

// LogSender 未配置 Kafka 时使用，只打印
func LogSender(log *pkg.Logger) Sender {
	return func(ctx context.Context, ob *model.DomainOutbox) error {
		log.Info("outbox event", "id", ob.ID, "event", ob.EventType, "aggregate_id", ob.AggregateID, "payload", ob.Payload)
		return nil
	}
}
