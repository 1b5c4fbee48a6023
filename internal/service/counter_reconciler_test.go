package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
)

func TestCreateCommunityIncrementsCategory(t *testing.T) {
	e := newEnv(t)
	gaming := e.category(t, "Gaming")
	owner := e.user(t, "Olga Owner", "olga@x.io")

	e.community(t, "Zelda", gaming.ID, owner.ID)
	e.community(t, "Metroid", gaming.ID, owner.ID)
	require.Equal(t, int64(2), e.categoryCount(t, gaming.ID))

	c := e.community(t, "Kirby", gaming.ID, owner.ID)
	assert.Equal(t, int64(3), e.categoryCount(t, gaming.ID))
	assert.Equal(t, int64(1), c.MemberCount)
	assert.Equal(t, "kirby", c.Slug)
}

func TestCreateCommunityUnknownCategoryLeavesNothing(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "Olga Owner", "olga@x.io")

	_, err := e.members.CreateCommunityWithOwner(context.Background(), &model.Community{Name: "Zelda", CategoryID: 404}, owner.ID)
	require.ErrorIs(t, err, pkg.ErrCategoryNotFound)

	var communities, memberships int64
	require.NoError(t, e.gdb.Model(&model.Community{}).Count(&communities).Error)
	require.NoError(t, e.gdb.Model(&model.UserCommunity{}).Count(&memberships).Error)
	assert.Zero(t, communities)
	assert.Zero(t, memberships)
}

func TestReassignCategoryMovesCount(t *testing.T) {
	e := newEnv(t)
	gaming := e.category(t, "Gaming")
	anime := e.category(t, "Anime")
	owner := e.user(t, "Olga Owner", "olga@x.io")
	c := e.community(t, "Zelda", gaming.ID, owner.ID)

	updated, err := e.communities.Update(context.Background(), c.ID, CommunityUpdate{CategoryID: anime.ID})
	require.NoError(t, err)
	assert.Equal(t, anime.ID, updated.CategoryID)
	assert.Equal(t, int64(0), e.categoryCount(t, gaming.ID))
	assert.Equal(t, int64(1), e.categoryCount(t, anime.ID))
}

func TestReassignToMissingCategory(t *testing.T) {
	e := newEnv(t)
	gaming := e.category(t, "Gaming")
	owner := e.user(t, "Olga Owner", "olga@x.io")
	c := e.community(t, "Zelda", gaming.ID, owner.ID)

	_, err := e.communities.Update(context.Background(), c.ID, CommunityUpdate{CategoryID: 999})
	require.ErrorIs(t, err, pkg.ErrCategoryNotFound)
	assert.Equal(t, int64(1), e.categoryCount(t, gaming.ID))
	assert.Equal(t, gaming.ID, e.reload(t, c.ID).CategoryID)
}

func TestReassignFailureMidwayChangesNeitherCount(t *testing.T) {
	e := newEnv(t)
	gaming := e.category(t, "Gaming")
	anime := e.category(t, "Anime")
	owner := e.user(t, "Olga Owner", "olga@x.io")
	c := e.community(t, "Zelda", gaming.ID, owner.ID)

	// 第二次分类更新（新分类 +1）时注入失败
	var updates int
	require.NoError(t, e.gdb.Callback().Update().Before("gorm:update").Register("test:fail_second_category_update", func(tx *gorm.DB) {
		if tx.Statement.Table != "categories" {
			return
		}
		updates++
		if updates == 2 {
			_ = tx.AddError(errors.New("injected failure"))
		}
	}))

	_, err := e.communities.Update(context.Background(), c.ID, CommunityUpdate{CategoryID: anime.ID})
	require.ErrorIs(t, err, pkg.ErrTransactionFailed)
	assert.Equal(t, 2, updates)

	assert.Equal(t, int64(1), e.categoryCount(t, gaming.ID))
	assert.Equal(t, int64(0), e.categoryCount(t, anime.ID))
	assert.Equal(t, gaming.ID, e.reload(t, c.ID).CategoryID)
}

func TestDeleteCommunityDecrementsCategory(t *testing.T) {
	e := newEnv(t)
	gaming := e.category(t, "Gaming")
	owner := e.user(t, "Olga Owner", "olga@x.io")
	c := e.community(t, "Zelda", gaming.ID, owner.ID)
	e.community(t, "Metroid", gaming.ID, owner.ID)

	require.NoError(t, e.communities.Delete(context.Background(), c.ID))
	assert.Equal(t, int64(1), e.categoryCount(t, gaming.ID))

	err := e.communities.Delete(context.Background(), c.ID)
	assert.ErrorIs(t, err, pkg.ErrCommunityNotFound)
	assert.Equal(t, int64(1), e.categoryCount(t, gaming.ID))
}

func TestPostCountFollowsPosts(t *testing.T) {
	e := newEnv(t)
	gaming := e.category(t, "Gaming")
	owner := e.user(t, "Olga Owner", "olga@x.io")
	c := e.community(t, "Zelda", gaming.ID, owner.ID)
	ctx := context.Background()

	p, err := e.posts.Create(ctx, owner.ID, c.ID, NewPost{Title: "Patch notes", Type: "news", Text: "..."})
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.reload(t, c.ID).PostCount)

	_, err = e.posts.Create(ctx, owner.ID, 999, NewPost{Title: "lost"})
	assert.ErrorIs(t, err, pkg.ErrCommunityNotFound)

	require.NoError(t, e.posts.Delete(ctx, c.ID, p.ID))
	assert.Zero(t, e.reload(t, c.ID).PostCount)
	assert.ErrorIs(t, e.posts.Delete(ctx, c.ID, p.ID), pkg.ErrPostNotFound)
}

// 随机的一串建/删/迁移/加入/退出操作之后，所有冗余计数都等于明细表的真实数量
func TestCountersConsistentAfterRandomOperations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	var cats []uint64
	for _, name := range []string{"Gaming", "Anime", "Music"} {
		cats = append(cats, e.category(t, name).ID)
	}
	var users []uint64
	for i, name := range []string{"Ana", "Bo", "Cy", "Di"} {
		users = append(users, e.user(t, name, string(rune('a'+i))+"@x.io").ID)
	}
	var live []uint64

	for i := 0; i < 60; i++ {
		switch op := rng.Intn(5); {
		case op == 0 || len(live) == 0:
			name := "c" + string(rune('A'+i%26)) + string(rune('a'+i/26))
			c, err := e.members.CreateCommunityWithOwner(ctx, &model.Community{Name: name, CategoryID: cats[rng.Intn(len(cats))]}, users[rng.Intn(len(users))])
			require.NoError(t, err)
			live = append(live, c.ID)
		case op == 1:
			idx := rng.Intn(len(live))
			require.NoError(t, e.communities.Delete(ctx, live[idx]))
			live = append(live[:idx], live[idx+1:]...)
		case op == 2:
			_, err := e.communities.Update(ctx, live[rng.Intn(len(live))], CommunityUpdate{CategoryID: cats[rng.Intn(len(cats))]})
			require.NoError(t, err)
		case op == 3:
			_, err := e.members.AddMember(ctx, users[rng.Intn(len(users))], live[rng.Intn(len(live))], model.RoleFollower)
			if err != nil {
				require.ErrorIs(t, err, pkg.ErrDuplicateMembership)
			}
		default:
			err := e.members.RemoveMember(ctx, users[rng.Intn(len(users))], live[rng.Intn(len(live))])
			if err != nil {
				require.True(t, errors.Is(err, pkg.ErrMembershipNotFound) || errors.Is(err, pkg.ErrValidation), err)
			}
		}
	}

	for _, id := range cats {
		actual, err := e.repos.Audit.RealCommunityCount(ctx, nil, id)
		require.NoError(t, err)
		assert.Equal(t, actual, e.categoryCount(t, id), "category %d", id)
	}
	for _, id := range live {
		c := e.reload(t, id)
		members, err := e.repos.Audit.RealMemberCount(ctx, nil, id)
		require.NoError(t, err)
		assert.Equal(t, members, c.MemberCount, "community %d", id)
	}

	rep, err := NewCountAuditor(e.repos, configWorker(), pkg.NopLogger()).RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, rep.Fixed())
}
