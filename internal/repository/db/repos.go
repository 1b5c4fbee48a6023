package db

import "gorm.io/gorm"

// Repos 同一个 *gorm.DB 上的全部仓储，由 app 层构造一次后注入各 service
type Repos struct {
	Store       *Store
	Users       *UserRepository
	Categories  *CategoryRepository
	Communities *CommunityRepository
	Members     *MembershipRepository
	Posts       *PostRepository
	Views       *ViewRepository
	Outbox      *OutboxRepository
	Audit       *AuditRepository
}

func NewRepos(gdb *gorm.DB) *Repos {
	return &Repos{
		Store:       NewStore(gdb),
		Users:       NewUserRepository(gdb),
		Categories:  NewCategoryRepository(gdb),
		Communities: NewCommunityRepository(gdb),
		Members:     NewMembershipRepository(gdb),
		Posts:       NewPostRepository(gdb),
		Views:       NewViewRepository(gdb),
		Outbox:      NewOutboxRepository(gdb),
		Audit:       NewAuditRepository(gdb),
	}
}
