package model

import "time"

type Community struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CategoryID  uint64    `gorm:"not null;index" json:"category_id"`
	Name        string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;size:80;not null" json:"slug"`
	MemberCount int64     `gorm:"not null;default:0" json:"member_count"`
	PostCount   int64     `gorm:"not null;default:0" json:"post_count"`
	CoverImage  *string   `gorm:"size:255" json:"cover_image,omitempty"`
	BannerImage *string   `gorm:"size:255" json:"banner_image,omitempty"`
	Description *string   `gorm:"size:255" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Role 用户在社区中的角色
type Role string

const (
	RoleOwner    Role = "Owner"
	RoleFollower Role = "Follower"
)

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleFollower
}

// UserCommunity 成员关系，(user_id, community_id) 唯一
type UserCommunity struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	UserID      uint64    `gorm:"not null;index;uniqueIndex:uk_user_community" json:"user_id"`
	CommunityID uint64    `gorm:"not null;index;uniqueIndex:uk_user_community" json:"community_id"`
	Role        Role      `gorm:"size:16;not null;default:Follower" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
