package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Organization is the organization model. Every user belongs to exactly one
// organization.
type Organization struct {
	bun.BaseModel `bun:"table:organizations,alias:org"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Active        bool       `bun:"active,notnull" json:"active"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// User is the user model. The password is only ever stored as a bcrypt hash.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username       string        `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string        `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string        `bun:"password_hash,notnull" json:"-"`
	FullName       string        `bun:"full_name" json:"full_name,omitempty"`
	Role           Role          `bun:"role,notnull" json:"role,omitempty"`
	Active         bool          `bun:"active,notnull" json:"active"`
	OrganizationID uuid.UUID     `bun:"organization_id,notnull,type:uuid" json:"organization_id,omitempty"`
	Organization   *Organization `bun:"rel:belongs-to,join:organization_id=id" json:"organization,omitempty"`
	CreatedAt      *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time    `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsEnabled reports whether the user may authenticate.
func (u *User) IsEnabled() bool {
	return u != nil && u.Active
}

// Touch stamps the updated timestamp. Called on every mutating save so the
// audit trail does not depend on database triggers.
func (u *User) Touch() {
	now := time.Now()
	u.UpdatedAt = &now
}

// Touch stamps the updated timestamp.
func (o *Organization) Touch() {
	now := time.Now()
	o.UpdatedAt = &now
}
