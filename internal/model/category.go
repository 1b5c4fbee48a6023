package model

type Category struct {
	ID             uint64 `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"size:64;not null;index" json:"name"`
	CommunityCount int64  `gorm:"not null;default:0" json:"community_count"`
}
