package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Principal is the opaque identity of a client as issued by the identity provider.
type Principal string

// Project is a shared workspace. Members only ever grow; the owner is always a member.
type Project struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string         `gorm:"not null" json:"name"`
	OwnerID    Principal      `gorm:"type:text;not null" json:"owner_id"`
	SharedCode string         `gorm:"type:char(6);not null;index" json:"shared_code"`
	Members    pq.StringArray `gorm:"type:text[];not null" json:"members"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

// IsMember reports whether p appears in the member list.
func (p *Project) IsMember(principal Principal) bool {
	return slices.Contains(p.Members, string(principal))
}

// WithMember returns a copy of the member list with principal appended.
// The receiver is left untouched.
func (p *Project) WithMember(principal Principal) []string {
	members := make([]string, 0, len(p.Members)+1)
	members = append(members, p.Members...)
	return append(members, string(principal))
}

// Clone returns a deep copy so snapshots never share backing arrays.
func (p Project) Clone() Project {
	p.Members = slices.Clone(p.Members)
	return p
}
