package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"
	"github.com/fandom-project/back-end/internal/repository/db/dbtest"
)

type testEnv struct {
	gdb         *gorm.DB
	repos       *db.Repos
	counters    *CounterReconciler
	members     *MembershipManager
	communities *CommunityService
	posts       *PostService
	composer    *Composer
	users       *UserService
	tokens      *memTokens
	mailer      *memMailer
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := dbtest.New(t)
	log := pkg.NopLogger()
	repos := db.NewRepos(gdb)
	counters := NewCounterReconciler(repos)
	members := NewMembershipManager(repos, counters, log)
	tokens := &memTokens{m: map[uint64]string{}}
	mailer := &memMailer{}
	issuer := pkg.NewTokenIssuer("access-test", "refresh-test", 0, 0)
	return &testEnv{
		gdb:         gdb,
		repos:       repos,
		counters:    counters,
		members:     members,
		communities: NewCommunityService(repos, counters, members, log),
		posts:       NewPostService(repos, counters),
		composer:    NewComposer(repos),
		users:       NewUserService(repos, counters, tokens, issuer, mailer, log),
		tokens:      tokens,
		mailer:      mailer,
	}
}

func (e *testEnv) category(t *testing.T, name string) *model.Category {
	t.Helper()
	c, err := NewCategoryService(e.repos).Create(context.Background(), name)
	require.NoError(t, err)
	return c
}

func (e *testEnv) user(t *testing.T, fullName, email string) *model.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), Registration{FullName: fullName, Email: email, Password: "secret"})
	require.NoError(t, err)
	return u
}

func (e *testEnv) community(t *testing.T, name string, categoryID, ownerID uint64) *model.Community {
	t.Helper()
	c, err := e.members.CreateCommunityWithOwner(context.Background(), &model.Community{Name: name, CategoryID: categoryID}, ownerID)
	require.NoError(t, err)
	return c
}

func (e *testEnv) categoryCount(t *testing.T, id uint64) int64 {
	t.Helper()
	c, err := e.repos.Categories.FindByID(context.Background(), nil, id)
	require.NoError(t, err)
	return c.CommunityCount
}

func (e *testEnv) reload(t *testing.T, id uint64) *model.Community {
	t.Helper()
	c, err := e.repos.Communities.FindByID(context.Background(), nil, id)
	require.NoError(t, err)
	return c
}

type memTokens struct {
	mu sync.Mutex
	m  map[uint64]string
}

func (s *memTokens) Save(_ context.Context, userID uint64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = token
	return nil
}

func (s *memTokens) Verify(_ context.Context, userID uint64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m[userID] != token {
		return pkg.ErrUnauthorized
	}
	return nil
}

func (s *memTokens) Delete(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
	return nil
}

type memMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *memMailer) Send(to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}
