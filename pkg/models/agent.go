package models

import (
	"time"

	"github.com/uptrace/bun"
)

const tableNameAgents = "agents"

// GenerationSettings are optional per-agent overrides for content
// generation. Zero values fall back to the application defaults.
type GenerationSettings struct {
	Model        string  `mapstructure:"model" json:"model,omitempty"`
	MaxTokens    int     `mapstructure:"maxTokens" json:"max_tokens,omitempty"`
	Temperature  float32 `mapstructure:"temperature" json:"temperature,omitempty"`
	SystemPrompt string  `mapstructure:"systemPrompt" json:"system_prompt,omitempty"`
}

// Agent is a content-generating persona. It owns zero or one
// ScheduleConfig and any number of posts.
type Agent struct {
	bun.BaseModel `bun:"agents"`

	Id       string `bun:",pk" json:"id"`
	TenantId string `bun:"tenant_id,nullzero,notnull" json:"tenant_id"`

	Name      string `bun:",nullzero,notnull" json:"name"`
	Expertise string `bun:",nullzero" json:"expertise"`
	Persona   string `bun:",nullzero" json:"persona"`
	Tone      string `bun:",nullzero,notnull,default:'professional'" json:"tone"`

	PostLength PostLength `bun:"post_length,nullzero,notnull,default:'medium'" json:"post_length"`

	Generation *GenerationSettings `bun:"generation,type:json,nullzero" json:"generation,omitempty"`

	IsActive bool `bun:"is_active" json:"is_active"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
