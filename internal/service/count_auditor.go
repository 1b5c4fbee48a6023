package service

import (
	"context"
	"time"

	"github.com/fandom-project/back-end/internal/config"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"

	"gorm.io/gorm"
)

// AuditReport 一次对账的结果
type AuditReport struct {
	Categories    int
	Communities   int
	CategoryFixes int
	MemberFixes   int
	PostFixes     int
	Errors        int
	Elapsed       time.Duration
}

func (r AuditReport) Fixed() int {
	return r.CategoryFixes + r.MemberFixes + r.PostFixes
}

// CountAuditor 从明细表重新统计冗余计数，修正漂移
type CountAuditor struct {
	repos     *db.Repos
	batchSize int
	interval  time.Duration
	log       *pkg.Logger
}

func NewCountAuditor(repos *db.Repos, cfg config.Worker, log *pkg.Logger) *CountAuditor {
	a := &CountAuditor{
		repos:     repos,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		log:       log.With("component", "audit"),
	}
	if a.batchSize <= 0 {
		a.batchSize = 500
	}
	if a.interval <= 0 {
		a.interval = 5 * time.Minute
	}
	return a
}

// Run 定时对账，直到 ctx 取消
func (a *CountAuditor) Run(ctx context.Context) {
	t := time.NewTicker(a.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rep, err := a.RunOnce(ctx)
			if err != nil {
				a.log.Error("audit failed", "err", err)
				continue
			}
			if rep.Fixed() > 0 {
				a.log.Warn("counter drift repaired", "categories", rep.CategoryFixes, "members", rep.MemberFixes, "posts", rep.PostFixes)
			}
		}
	}
}

// RunOnce 全量对账一次，按 id 分批。
// 批次只提供 id；每行在自己的事务里先加行锁，再读缓存值、统计真实值并写回
func (a *CountAuditor) RunOnce(ctx context.Context) (AuditReport, error) {
	start := time.Now()
	var rep AuditReport
	audit := a.repos.Audit

	var last uint64
	for {
		cats, next, err := audit.CategoryBatch(ctx, last, a.batchSize)
		if err != nil {
			return rep, err
		}
		if len(cats) == 0 {
			break
		}
		last = next
		for _, c := range cats {
			rep.Categories++
			fixed, err := a.repairCategory(ctx, c.ID)
			if err != nil {
				if !pkg.IsNotFound(err) {
					a.log.Error("category audit failed", "category_id", c.ID, "err", err)
					rep.Errors++
				}
				continue
			}
			if fixed {
				rep.CategoryFixes++
			}
		}
	}

	last = 0
	for {
		comms, next, err := audit.CommunityBatch(ctx, last, a.batchSize)
		if err != nil {
			return rep, err
		}
		if len(comms) == 0 {
			break
		}
		last = next
		for _, c := range comms {
			rep.Communities++
			memberFixed, postFixed, err := a.repairCommunity(ctx, c.ID)
			if err != nil {
				// 对账期间被删除的社区直接跳过
				if !pkg.IsNotFound(err) {
					a.log.Error("community audit failed", "community_id", c.ID, "err", err)
					rep.Errors++
				}
				continue
			}
			if memberFixed {
				rep.MemberFixes++
			}
			if postFixed {
				rep.PostFixes++
			}
		}
	}

	rep.Elapsed = time.Since(start)
	return rep, ctx.Err()
}

func (a *CountAuditor) repairCategory(ctx context.Context, id uint64) (bool, error) {
	var fixed bool
	err := a.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		locked, err := a.repos.Categories.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		actual, err := a.repos.Audit.RealCommunityCount(ctx, tx, id)
		if err != nil {
			return err
		}
		if actual == locked.CommunityCount {
			return nil
		}
		if err := a.repos.Categories.SetCommunityCount(ctx, tx, id, actual); err != nil {
			return err
		}
		fixed = true
		return nil
	})
	return fixed, err
}

func (a *CountAuditor) repairCommunity(ctx context.Context, id uint64) (memberFixed, postFixed bool, err error) {
	err = a.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		locked, err := a.repos.Communities.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		members, err := a.repos.Audit.RealMemberCount(ctx, tx, id)
		if err != nil {
			return err
		}
		posts, err := a.repos.Audit.RealPostCount(ctx, tx, id)
		if err != nil {
			return err
		}
		if members == locked.MemberCount && posts == locked.PostCount {
			return nil
		}
		if err := a.repos.Communities.SetCounts(ctx, tx, id, members, posts); err != nil {
			return err
		}
		memberFixed = members != locked.MemberCount
		postFixed = posts != locked.PostCount
		return nil
	})
	return memberFixed, postFixed, err
}
