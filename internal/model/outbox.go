package model

import "time"

// 领域事件类型
const (
	EventCommunityCreated = "community.created"
	EventCommunityUpdated = "community.updated"
	EventCommunityDeleted = "community.deleted"
	EventMemberAdded      = "membership.added"
	EventMemberRemoved    = "membership.removed"
	EventRoleChanged      = "membership.role_changed"
	EventPostCreated      = "post.created"
	EventPostDeleted      = "post.deleted"
)

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// DomainOutbox 与业务写入同事务落库的事件，由 relayer 异步投递
type DomainOutbox struct {
	ID          uint64 `gorm:"primaryKey"`
	EventType   string `gorm:"size:32;not null"`
	AggregateID uint64 `gorm:"not null;index"`
	Payload     string `gorm:"type:text;not null"`
	Status      int8   `gorm:"not null;default:0;index"`
	Retry       int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DomainOutbox) TableName() string { return "domain_outbox" }
