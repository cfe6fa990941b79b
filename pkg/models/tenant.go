package models

import (
	"time"

	"github.com/uptrace/bun"
)

const tableNameTenants = "tenants"

// Tenant is the top-level ownership boundary. Every agent, schedule
// and post is scoped to exactly one tenant.
type Tenant struct {
	bun.BaseModel `bun:"tenants"`

	Id string `bun:",pk" json:"id"`

	Name string `bun:",nullzero,notnull" json:"name"`
	Slug string `bun:",nullzero,notnull,unique" json:"slug"`

	// Static API key used to resolve the tenant on authenticated routes
	ApiKey string `bun:"api_key,nullzero,notnull,unique" json:"-"`

	IsActive   bool `bun:"is_active" json:"is_active"`
	PostsLimit int  `bun:"posts_limit,notnull,default:0" json:"posts_limit"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
