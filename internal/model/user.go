package model

import "time"

type User struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	FullName      string    `gorm:"size:255;not null;index" json:"full_name"`
	Email         string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password      string    `gorm:"size:255;not null" json:"-"`
	Slug          string    `gorm:"size:255;index" json:"slug"`
	ProfileAvatar *string   `gorm:"size:255" json:"profile_avatar,omitempty"`
	Bio           *string   `gorm:"size:255" json:"bio,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
