package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"
	"github.com/fandom-project/back-end/internal/repository/db/dbtest"
)

func TestTransactionCommitsAllWrites(t *testing.T) {
	gdb := dbtest.New(t)
	store := db.NewStore(gdb)
	users := db.NewUserRepository(gdb)
	categories := db.NewCategoryRepository(gdb)
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := users.Create(ctx, tx, &model.User{FullName: "Ana", Email: "ana@x.io", Password: "h", Slug: "ana"}); err != nil {
			return err
		}
		return categories.Create(ctx, tx, &model.Category{Name: "Gaming"})
	})
	require.NoError(t, err)

	all, err := users.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	cats, err := categories.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestTransactionDomainErrorRollsBack(t *testing.T) {
	gdb := dbtest.New(t)
	store := db.NewStore(gdb)
	categories := db.NewCategoryRepository(gdb)
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := categories.Create(ctx, tx, &model.Category{Name: "Music"}); err != nil {
			return err
		}
		_, err := categories.LockByID(ctx, tx, 999)
		return err
	})
	require.ErrorIs(t, err, pkg.ErrCategoryNotFound)

	cats, err := categories.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestTransactionDuplicateEmail(t *testing.T) {
	gdb := dbtest.New(t)
	store := db.NewStore(gdb)
	users := db.NewUserRepository(gdb)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, nil, &model.User{FullName: "Ana", Email: "ana@x.io", Password: "h"}))

	err := store.Transaction(ctx, func(tx *gorm.DB) error {
		return users.Create(ctx, tx, &model.User{FullName: "Ana Two", Email: "ana@x.io", Password: "h"})
	})
	assert.ErrorIs(t, err, pkg.ErrDuplicateEmail)
	assert.ErrorIs(t, err, pkg.ErrDuplicate)
}

func TestTransactionRejectedWriteIsTransactionFailed(t *testing.T) {
	gdb := dbtest.New(t)
	store := db.NewStore(gdb)
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO no_such_table (id) VALUES (1)").Error
	})
	assert.ErrorIs(t, err, pkg.ErrTransactionFailed)
	assert.Equal(t, 500, pkg.StatusOf(err))
}

func TestTransactionCommitFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("commit refused"))

	err = db.NewStore(gdb).Transaction(context.Background(), func(tx *gorm.DB) error { return nil })
	assert.ErrorIs(t, err, pkg.ErrTransactionFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustCommunityCountNeverNegative(t *testing.T) {
	gdb := dbtest.New(t)
	categories := db.NewCategoryRepository(gdb)
	ctx := context.Background()

	cat := &model.Category{Name: "Anime", CommunityCount: 1}
	require.NoError(t, categories.Create(ctx, nil, cat))

	require.NoError(t, categories.AdjustCommunityCount(ctx, nil, cat.ID, -5))
	got, err := categories.FindByID(ctx, nil, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CommunityCount)

	require.NoError(t, categories.AdjustCommunityCount(ctx, nil, cat.ID, 2))
	got, err = categories.FindByID(ctx, nil, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.CommunityCount)
}

func TestCommunityDeleteCascades(t *testing.T) {
	gdb := dbtest.New(t)
	f := seed(t, gdb)
	ctx := context.Background()

	require.NoError(t, db.NewCommunityRepository(gdb).Delete(ctx, nil, f.community.ID))

	var members, posts int64
	require.NoError(t, gdb.Model(&model.UserCommunity{}).Where("community_id = ?", f.community.ID).Count(&members).Error)
	require.NoError(t, gdb.Model(&model.Post{}).Where("community_id = ?", f.community.ID).Count(&posts).Error)
	assert.Zero(t, members)
	assert.Zero(t, posts)
}

func TestMembershipJoinDuplicate(t *testing.T) {
	gdb := dbtest.New(t)
	f := seed(t, gdb)
	ctx := context.Background()

	err := db.NewMembershipRepository(gdb).Join(ctx, nil, &model.UserCommunity{
		UserID: f.follower.ID, CommunityID: f.community.ID, Role: model.RoleFollower,
	})
	assert.ErrorIs(t, err, pkg.ErrDuplicateMembership)
}

func TestOutboxRetryMarksFailed(t *testing.T) {
	gdb := dbtest.New(t)
	outbox := db.NewOutboxRepository(gdb)
	ctx := context.Background()

	require.NoError(t, outbox.Insert(ctx, nil, model.EventCommunityCreated, 7, map[string]any{"name": "Zelda"}))
	list, err := outbox.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Payload, `"name":"Zelda"`)

	require.NoError(t, outbox.RetryUpdate(ctx, list[0].ID, 2))
	list, err = outbox.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, outbox.RetryUpdate(ctx, list[0].ID, 2))
	list, err = outbox.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	var row model.DomainOutbox
	require.NoError(t, gdb.First(&row).Error)
	assert.Equal(t, model.OutboxFailed, row.Status)
	assert.Equal(t, 2, row.Retry)
}

func TestAuditBatchesAdvanceCursor(t *testing.T) {
	gdb := dbtest.New(t)
	categories := db.NewCategoryRepository(gdb)
	audit := db.NewAuditRepository(gdb)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, categories.Create(ctx, nil, &model.Category{Name: name}))
	}

	first, last, err := audit.CategoryBatch(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, last, err := audit.CategoryBatch(ctx, last, 2)
	require.NoError(t, err)
	assert.Len(t, second, 1)

	rest, _, err := audit.CategoryBatch(ctx, last, 2)
	require.NoError(t, err)
	assert.Empty(t, rest)
}

type fixture struct {
	category  *model.Category
	owner     *model.User
	follower  *model.User
	community *model.Community
	posts     []*model.Post
}

// seed 一个分类、一个社区（拥有者 + 关注者）、两篇帖子
func seed(t *testing.T, gdb *gorm.DB) fixture {
	t.Helper()
	var f fixture
	f.category = &model.Category{Name: "Gaming", CommunityCount: 1}
	require.NoError(t, gdb.Create(f.category).Error)
	f.owner = &model.User{FullName: "Olga Owner", Email: "olga@x.io", Password: "h", Slug: "olgaowner"}
	f.follower = &model.User{FullName: "Finn Follower", Email: "finn@x.io", Password: "h", Slug: "finnfollower"}
	require.NoError(t, gdb.Create(f.owner).Error)
	require.NoError(t, gdb.Create(f.follower).Error)

	cover := "https://cdn.example/zelda.png"
	f.community = &model.Community{CategoryID: f.category.ID, Name: "Zelda", Slug: "zelda", MemberCount: 2, PostCount: 2, CoverImage: &cover}
	require.NoError(t, gdb.Create(f.community).Error)
	require.NoError(t, gdb.Create(&model.UserCommunity{UserID: f.owner.ID, CommunityID: f.community.ID, Role: model.RoleOwner}).Error)
	require.NoError(t, gdb.Create(&model.UserCommunity{UserID: f.follower.ID, CommunityID: f.community.ID, Role: model.RoleFollower}).Error)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"older", "newer"} {
		p := &model.Post{Title: title, Type: "news", Text: "t", UserID: f.owner.ID, CommunityID: f.community.ID, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, gdb.Create(p).Error)
		f.posts = append(f.posts, p)
	}
	return f
}
