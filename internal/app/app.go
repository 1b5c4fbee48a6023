package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fandom-project/back-end/internal/config"
	"github.com/fandom-project/back-end/internal/handler"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"
	"github.com/fandom-project/back-end/internal/repository/minio"
	rdbrepo "github.com/fandom-project/back-end/internal/repository/redis"
	"github.com/fandom-project/back-end/internal/router"
	"github.com/fandom-project/back-end/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App 进程级依赖：连接、服务、后台任务，全部显式持有
type App struct {
	cfg *config.Config
	log *pkg.Logger

	DB       *gorm.DB
	RDB      *redis.Client
	Producer *pkg.KafkaProducer
	Repos    *db.Repos

	Engine  *gin.Engine
	Relayer *service.OutboxRelayer
	Auditor *service.CountAuditor
}

// OpenDB 建立数据库连接并按需建表；reconcile 命令只需要这一步
func OpenDB(cfg *config.Config, log *pkg.Logger) (*gorm.DB, error) {
	gdb, err := db.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(gdb); err != nil {
			_ = db.Close(gdb)
			return nil, fmt.Errorf("db: migrate: %w", err)
		}
	}
	return gdb, nil
}

func New(ctx context.Context, cfg *config.Config, log *pkg.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	gdb, err := OpenDB(cfg, log)
	if err != nil {
		return nil, err
	}
	a.DB = gdb
	a.Repos = db.NewRepos(gdb)

	// 连接redis
	if a.RDB, err = rdbrepo.Open(cfg.Redis); err != nil {
		a.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	tokens := rdbrepo.NewTokenRepository(a.RDB, cfg.JWT.AccessTTL)

	sender := service.LogSender(log.With("component", "outbox"))
	if len(cfg.Kafka.Brokers) > 0 {
		if a.Producer, err = pkg.NewKafkaProducer(pkg.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}); err != nil {
			a.Close()
			return nil, fmt.Errorf("kafka: %w", err)
		}
		sender = service.KafkaSender(a.Producer)
	} else {
		log.Warn("kafka brokers not configured, outbox events are only logged")
	}

	var covers handler.CoverUploader
	if cfg.MinIO.Endpoint != "" {
		store, err := minio.Open(ctx, cfg.MinIO)
		if err != nil {
			a.Close()
			return nil, err
		}
		covers = store
	}

	mailer := pkg.NewMailer(pkg.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	issuer := pkg.NewTokenIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	counters := service.NewCounterReconciler(a.Repos)
	members := service.NewMembershipManager(a.Repos, counters, log)
	composer := service.NewComposer(a.Repos)
	users := service.NewUserService(a.Repos, counters, tokens, issuer, mailer, log)

	a.Engine = router.InitRouter(router.Deps{
		Log:         log.With("component", "http"),
		Issuer:      issuer,
		Sessions:    tokens,
		CORSOrigins: cfg.Server.CORSOrigins,
		User:        handler.NewUserHandler(users, composer),
		Category:    handler.NewCategoryHandler(service.NewCategoryService(a.Repos)),
		Community:   handler.NewCommunityHandler(service.NewCommunityService(a.Repos, counters, members, log), composer, covers),
		Post:        handler.NewPostHandler(service.NewPostService(a.Repos, counters), composer),
		Membership:  handler.NewMembershipHandler(members),
	})
	a.Relayer = service.NewOutboxRelayer(a.Repos, cfg.Outbox, sender, log)
	a.Auditor = service.NewCountAuditor(a.Repos, cfg.Audit, log)
	return a, nil
}

// Run 启动 HTTP 服务与后台任务，ctx 取消后优雅退出
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.Relayer.Run(workerCtx)
	}()
	go func() {
		defer wg.Done()
		a.Auditor.Run(workerCtx)
	}()

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http shutdown failed", "err", err)
	}
	stopWorkers()
	wg.Wait()
	return runErr
}

func (a *App) Close() {
	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil {
			a.log.Warn("kafka close failed", "err", err)
		}
	}
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if a.DB != nil {
		_ = db.Close(a.DB)
	}
}
