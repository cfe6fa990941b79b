package models

import (
	"time"

	"github.com/uptrace/bun"
)

const tableNamePosts = "posts"

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

type Post struct {
	bun.BaseModel `bun:"posts"`

	Id       string `bun:",pk" json:"id"`
	TenantId string `bun:"tenant_id,nullzero,notnull" json:"tenant_id"`
	AgentId  string `bun:"agent_id,nullzero,notnull" json:"agent_id"`

	Title   string `bun:",nullzero,notnull" json:"title"`
	Slug    string `bun:",nullzero,notnull,unique" json:"slug"`
	Content string `bun:",nullzero" json:"content"`

	Status        PostStatus `bun:",nullzero,notnull,default:'draft'" json:"status"`
	TargetKeyword string     `bun:"target_keyword,nullzero" json:"target_keyword"`

	PublishedAt *time.Time `bun:"published_at" json:"published_at"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
