package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fandom-project/back-end/internal/model"
	"github.com/fandom-project/back-end/internal/pkg"
	"github.com/fandom-project/back-end/internal/repository/db"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenStore 登录会话存储（Redis 实现见 repository/redis）
type TokenStore interface {
	Save(ctx context.Context, userID uint64, token string) error
	Verify(ctx context.Context, userID uint64, token string) error
	Delete(ctx context.Context, userID uint64) error
}

type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type Registration struct {
	FullName      string
	Email         string
	Password      string
	ProfileAvatar *string
	Bio           *string
}

// ProfileUpdate 零值字段保持不变
type ProfileUpdate struct {
	FullName      string
	Email         string
	ProfileAvatar *string
	Bio           *string
}

type UserService struct {
	repos    *db.Repos
	counters *CounterReconciler
	tokens   TokenStore
	issuer   *pkg.TokenIssuer
	mailer   Mailer
	log      *pkg.Logger
}

func NewUserService(repos *db.Repos, counters *CounterReconciler, tokens TokenStore, issuer *pkg.TokenIssuer, mailer Mailer, log *pkg.Logger) *UserService {
	return &UserService{
		repos:    repos,
		counters: counters,
		tokens:   tokens,
		issuer:   issuer,
		mailer:   mailer,
		log:      log.With("component", "user"),
	}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.repos.Users.List(ctx, nil)
}

func (s *UserService) Get(ctx context.Context, id uint64) (*model.User, error) {
	return s.repos.Users.FindByID(ctx, nil, id)
}

func (s *UserService) Register(ctx context.Context, in Registration) (*model.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FullName == "" || in.Email == "" || in.Password == "" {
		return nil, pkg.Invalid("full name, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		FullName:      in.FullName,
		Email:         in.Email,
		Password:      string(hash),
		Slug:          pkg.Slugify(in.FullName),
		ProfileAvatar: in.ProfileAvatar,
		Bio:           in.Bio,
	}

	err = s.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		taken, err := s.repos.Users.EmailTaken(ctx, tx, user.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return pkg.ErrDuplicateEmail
		}
		return s.repos.Users.Create(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	// 欢迎邮件失败不影响注册结果
	if s.mailer != nil {
		if err := s.mailer.Send(user.Email, "Welcome to Fandom", pkg.WelcomeHTML(user.FullName)); err != nil {
			s.log.Warn("welcome mail failed", "user_id", user.ID, "err", err)
		}
	}
	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uint64, in ProfileUpdate) (*model.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	var user *model.User
	err := s.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if user, err = s.repos.Users.FindByID(ctx, tx, id); err != nil {
			return err
		}
		if in.Email != "" && in.Email != user.Email {
			taken, err := s.repos.Users.EmailTaken(ctx, tx, in.Email, user.ID)
			if err != nil {
				return err
			}
			if taken {
				return pkg.ErrDuplicateEmail
			}
			user.Email = in.Email
		}
		if in.FullName != "" {
			user.FullName = in.FullName
			user.Slug = pkg.Slugify(in.FullName)
		}
		if in.ProfileAvatar != nil {
			user.ProfileAvatar = in.ProfileAvatar
		}
		if in.Bio != nil {
			user.Bio = in.Bio
		}
		return s.repos.Users.Update(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete 删除用户：仍是某社区拥有者时拒绝；其余成员关系一并删除并修正成员数，帖子保留
func (s *UserService) Delete(ctx context.Context, id uint64) error {
	err := s.repos.Store.Transaction(ctx, func(tx *gorm.DB) error {
		user, err := s.repos.Users.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		owned, err := s.repos.Members.CountOwned(ctx, tx, id)
		if err != nil {
			return err
		}
		if owned > 0 {
			return pkg.Invalid("user still owns %d communities", owned)
		}
		memberships, err := s.repos.Members.ListByUser(ctx, tx, id, "")
		if err != nil {
			return err
		}
		for _, m := range memberships {
			if err := s.counters.MembersChanged(ctx, tx, m.CommunityID, -1); err != nil {
				return err
			}
		}
		if err := s.repos.Members.DeleteByUser(ctx, tx, id); err != nil {
			return err
		}
		return s.repos.Users.Delete(ctx, tx, user)
	})
	if err != nil {
		return err
	}
	if s.tokens != nil {
		if err := s.tokens.Delete(ctx, id); err != nil {
			s.log.Warn("drop session failed", "user_id", id, "err", err)
		}
	}
	return nil
}

// Authenticate 邮箱 + 密码登录，签发 token 并写入会话
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, *pkg.Pair, error) {
	user, err := s.repos.Users.FindByEmail(ctx, nil, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if pkg.IsNotFound(err) {
			return nil, nil, pkg.ErrUnauthorized
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, pkg.ErrUnauthorized
	}
	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// ResetPassword 按邮箱设置新密码，并使现有会话失效
func (s *UserService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if newPassword == "" {
		return pkg.Invalid("new password required")
	}
	user, err := s.repos.Users.FindByEmail(ctx, nil, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repos.Users.UpdatePassword(ctx, nil, user, string(hash)); err != nil {
		return err
	}
	return s.Logout(ctx, user.ID)
}

func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	if s.tokens == nil {
		return nil
	}
	return s.tokens.Delete(ctx, userID)
}

// Refresh 用 refresh token 换一对新 token
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, errors.Join(pkg.ErrUnauthorized, err)
	}
	if _, err := s.repos.Users.FindByID(ctx, nil, claims.UserID); err != nil {
		if pkg.IsNotFound(err) {
			return nil, pkg.ErrUnauthorized
		}
		return nil, err
	}
	return s.issue(ctx, claims.UserID)
}

func (s *UserService) issue(ctx context.Context, userID uint64) (*pkg.Pair, error) {
	pair, err := s.issuer.GeneratePair(userID)
	if err != nil {
		return nil, err
	}
	if s.tokens != nil {
		if err := s.tokens.Save(ctx, userID, pair.AccessToken); err != nil {
			return nil, err
		}
	}
	return pair, nil
}
