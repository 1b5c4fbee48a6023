package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
)

func TestParseReturnType(t *testing.T) {
	cases := map[string]ReturnType{
		"":                ReturnOwner,
		"owner":           ReturnOwner,
		"owner-simple":    ReturnOwnerSimple,
		"Follower":        ReturnFollower,
		"follower-simple": ReturnFollowerSimple,
	}
	for in, want := range cases {
		got, err := ParseReturnType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseReturnType("everything")
	assert.ErrorIs(t, err, pkg.ErrValidation)
}

func TestUserCommunitiesVariants(t *testing.T) {
	e := newEnv(t)
	gaming := e.category(t, "Gaming")
	olga := e.user(t, "Olga Owner", "olga@x.io")
	finn := e.user(t, "Finn Fan", "finn@x.io")
	ctx := context.Background()

	zelda := e.community(t, "Zelda", gaming.ID, olga.ID)
	metroid := e.community(t, "Metroid", gaming.ID, finn.ID)
	_, err := e.members.AddMember(ctx, finn.ID, zelda.ID, model.RoleFollower)
	require.NoError(t, err)

	all, err := e.composer.UserCommunities(ctx, finn.ID, ReturnFollower)
	require.NoError(t, err)
	require.Len(t, all.Communities, 2)
	assert.Equal(t, "Metroid", all.Communities[0].Name)
	assert.Equal(t, "Gaming", all.Communities[0].CategoryName)

	ids, err := e.composer.UserCommunities(ctx, finn.ID, ReturnFollowerSimple)
	require.NoError(t, err)
	assert.True(t, ids.Simple)
	assert.ElementsMatch(t, []uint64{zelda.ID, metroid.ID}, ids.IDs)

	owned, err := e.composer.UserCommunities(ctx, finn.ID, ReturnOwner)
	require.NoError(t, err)
	require.Len(t, owned.Communities, 1)
	assert.Equal(t, metroid.ID, owned.Communities[0].ID)

	ownedIDs, err := e.composer.UserCommunities(ctx, finn.ID, ReturnOwnerSimple)
	require.NoError(t, err)
	assert.Equal(t, []uint64{metroid.ID}, ownedIDs.IDs)

	_, err = e.composer.UserCommunities(ctx, 999, ReturnOwner)
	assert.ErrorIs(t, err, pkg.ErrUserNotFound)
}

func TestFeedIsUnionOfFollowedCommunities(t *testing.T) {
	e := newEnv(t)
	gaming := e.category(t, "Gaming")
	olga := e.user(t, "Olga Owner", "olga@x.io")
	finn := e.user(t, "Finn Fan", "finn@x.io")
	ctx := context.Background()

	a := e.community(t, "Zelda", gaming.ID, olga.ID)
	b := e.community(t, "Metroid", gaming.ID, olga.ID)
	other := e.community(t, "Kirby", gaming.ID, olga.ID)
	for _, c := range []*model.Community{a, b} {
		_, err := e.members.AddMember(ctx, finn.ID, c.ID, model.RoleFollower)
		require.NoError(t, err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []struct {
		community uint64
		title     string
		at        time.Time
	}{
		{a.ID, "a-old", base},
		{b.ID, "b-mid", base.Add(time.Hour)},
		{other.ID, "hidden", base.Add(2 * time.Hour)},
		{a.ID, "a-new", base.Add(3 * time.Hour)},
	}
	for _, p := range posts {
		require.NoError(t, e.gdb.Create(&model.Post{Title: p.title, Type: "news", Text: "-", UserID: olga.ID, CommunityID: p.community, CreatedAt: p.at}).Error)
	}

	feed, err := e.composer.Feed(ctx, finn.ID)
	require.NoError(t, err)
	var titles []string
	for _, p := range feed {
		titles = append(titles, p.Title)
		assert.Equal(t, "Olga Owner", p.AuthorName)
	}
	assert.Equal(t, []string{"a-new", "b-mid", "a-old"}, titles)
	assert.Equal(t, "Zelda", feed[0].CommunityName)
	assert.Equal(t, "Metroid", feed[1].CommunityName)

	_, err = e.composer.Feed(ctx, 999)
	assert.ErrorIs(t, err, pkg.ErrUserNotFound)
}

func TestCommunityPostsEmptyVersusMissing(t *testing.T) {
	e := newEnv(t)
	gaming := e.category(t, "Gaming")
	olga := e.user(t, "Olga Owner", "olga@x.io")
	c := e.community(t, "Zelda", gaming.ID, olga.ID)
	ctx := context.Background()

	posts, err := e.composer.CommunityPosts(ctx, c.ID)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	_, err = e.composer.CommunityPosts(ctx, 999)
	assert.ErrorIs(t, err, pkg.ErrCommunityNotFound)
}

func TestCommunityLookups(t *testing.T) {
	e := newEnv(t)
	gaming := e.category(t, "Gaming")
	olga := e.user(t, "Olga Owner", "olga@x.io")
	e.community(t, "Zelda", gaming.ID, olga.ID)
	e.community(t, "Animal Crossing", gaming.ID, olga.ID)
	ctx := context.Background()

	v, err := e.composer.CommunityBySlug(ctx, "animalcrossing")
	require.NoError(t, err)
	assert.Equal(t, "Animal Crossing", v.Name)
	assert.Equal(t, olga.ID, v.OwnerID)

	_, err = e.composer.CommunityBySlug(ctx, " ")
	assert.ErrorIs(t, err, pkg.ErrValidation)
	_, err = e.composer.CommunityBySlug(ctx, "nope")
	assert.ErrorIs(t, err, pkg.ErrCommunityNotFound)

	page, err := e.composer.Communities(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Zelda", page[0].Name)
}
