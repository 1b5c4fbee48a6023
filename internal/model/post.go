package model

import "time"

type Post struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Type        string     `gorm:"size:45;not null" json:"type"`
	Text        string     `gorm:"size:1000;not null" json:"text"`
	CoverImage  *string    `gorm:"size:255" json:"cover_image,omitempty"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	UserID      uint64     `gorm:"not null;index" json:"user_id"`
	CommunityID uint64     `gorm:"not null;index:idx_community_time,priority:1" json:"community_id"`
	CreatedAt   time.Time  `gorm:"index:idx_community_time,priority:2,sort:desc" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
