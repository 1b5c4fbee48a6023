package model

import "time"

// CommunityView 社区详情：带分类名与拥有者
type CommunityView struct {
	ID           uint64    `gorm:"column:id" json:"id"`
	CategoryID   uint64    `gorm:"column:category_id" json:"category_id"`
	CategoryName string    `gorm:"column:category_name" json:"category_name"`
	Name         string    `gorm:"column:name" json:"name"`
	Slug         string    `gorm:"column:slug" json:"slug"`
	MemberCount  int64     `gorm:"column:member_count" json:"member_count"`
	PostCount    int64     `gorm:"column:post_count" json:"post_count"`
	CoverImage   *string   `gorm:"column:cover_image" json:"cover_image,omitempty"`
	BannerImage  *string   `gorm:"column:banner_image" json:"banner_image,omitempty"`
	Description  *string   `gorm:"column:description" json:"description,omitempty"`
	OwnerID      uint64    `gorm:"column:owner_id" json:"owner_id"`
	OwnerName    string    `gorm:"column:owner_name" json:"owner_name"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// PostView 社区内帖子列表项
type PostView struct {
	ID         uint64     `gorm:"column:id" json:"id"`
	UserID     uint64     `gorm:"column:user_id" json:"user_id"`
	AuthorName string     `gorm:"column:author_name" json:"author_name"`
	Title      string     `gorm:"column:title" json:"title"`
	Type       string     `gorm:"column:type" json:"type"`
	Text       string     `gorm:"column:text" json:"text"`
	CoverImage *string    `gorm:"column:cover_image" json:"cover_image,omitempty"`
	EventDate  *time.Time `gorm:"column:event_date" json:"event_date,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// FeedPost 关注社区的帖子流
type FeedPost struct {
	PostView
	CommunityID            uint64  `gorm:"column:community_id" json:"community_id"`
	CommunityName          string  `gorm:"column:community_name" json:"community_name"`
	CommunityCoverImageURL *string `gorm:"column:community_cover_image" json:"community_cover_image_url,omitempty"`
}

// MemberView 社区成员
type MemberView struct {
	UserID   uint64    `gorm:"column:user_id" json:"user_id"`
	FullName string    `gorm:"column:full_name" json:"full_name"`
	Slug     string    `gorm:"column:slug" json:"slug"`
	Role     Role      `gorm:"column:role" json:"role"`
	JoinedAt time.Time `gorm:"column:joined_at" json:"joined_at"`
}

// UserCommunities 用户社区视图；Simple 时只返回 id
type UserCommunities struct {
	Simple      bool
	IDs         []uint64
	Communities []CommunityView
}
