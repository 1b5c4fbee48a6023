//go:build integration

package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fandom-project/back-end/internal/config"
	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"
)

func setupPostgres(t *testing.T) *db.Repos {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("fandom"),
		postgres.WithUsername("fandom"),
		postgres.WithPassword("fandom"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := db.Open(config.Database{Driver: "postgres", DSN: dsn, MaxOpenConns: 20}, pkg.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, db.AutoMigrate(gdb))
	return db.NewRepos(gdb)
}

// 并发建社区时，行锁保证分类计数不丢失
func TestConcurrentCreationsKeepCategoryCount(t *testing.T) {
	repos := setupPostgres(t)
	log := pkg.NopLogger()
	counters := NewCounterReconciler(repos)
	members := NewMembershipManager(repos, counters, log)
	ctx := context.Background()

	cat, err := NewCategoryService(repos).Create(ctx, "Gaming")
	require.NoError(t, err)
	owner := &model.User{FullName: "Olga", Email: "olga@x.io", Password: "h", Slug: "olga"}
	require.NoError(t, repos.Users.Create(ctx, nil, owner))

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := members.CreateCommunityWithOwner(ctx, &model.Community{Name: fmt.Sprintf("Community %02d", i), CategoryID: cat.ID}, owner.ID)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repos.Categories.FindByID(ctx, nil, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.CommunityCount)
}

func TestDuplicateMembershipOnPostgres(t *testing.T) {
	repos := setupPostgres(t)
	log := pkg.NopLogger()
	counters := NewCounterReconciler(repos)
	members := NewMembershipManager(repos, counters, log)
	ctx := context.Background()

	cat, err := NewCategoryService(repos).Create(ctx, "Gaming")
	require.NoError(t, err)
	owner := &model.User{FullName: "Olga", Email: "olga@x.io", Password: "h"}
	fan := &model.User{FullName: "Finn", Email: "finn@x.io", Password: "h"}
	require.NoError(t, repos.Users.Create(ctx, nil, owner))
	require.NoError(t, repos.Users.Create(ctx, nil, fan))
	c, err := members.CreateCommunityWithOwner(ctx, &model.Community{Name: "Zelda", CategoryID: cat.ID}, owner.ID)
	require.NoError(t, err)

	_, err = members.AddMember(ctx, fan.ID, c.ID, model.RoleFollower)
	require.NoError(t, err)
	_, err = members.AddMember(ctx, fan.ID, c.ID, model.RoleFollower)
	assert.ErrorIs(t, err, pkg.ErrDuplicateMembership)

	after, err := repos.Communities.FindByID(ctx, nil, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), after.MemberCount)
}
