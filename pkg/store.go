package pkg

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"postforge/pkg/models"
)

// Sentinel errors returned by every Store implementation. Handlers map
// them onto the HTTP error taxonomy.
var (
	ErrNotFound = errors.New("not found")
)

// Store is the persistence boundary. The bun implementation backs the
// service; the memory implementation backs the tests.
type Store interface {
	// Tenants
	TenantByAPIKey(ctx context.Context, apiKey string) (*models.Tenant, error)
	CreateTenant(ctx context.Context, tenant *models.Tenant) error

	// Agents
	CreateAgent(ctx context.Context, agent *models.Agent) error
	Agent(ctx context.Context, id string) (*models.Agent, error)
	AgentsByTenant(ctx context.Context, tenantId string) ([]*models.Agent, error)
	UpdateAgent(ctx context.Context, agent *models.Agent) error
	DeleteAgent(ctx context.Context, id string) error

	// Schedules
	CreateSchedule(ctx context.Context, schedule *models.ScheduleConfig) error
	Schedule(ctx context.Context, id string) (*models.ScheduleConfig, error)
	ScheduleByAgent(ctx context.Context, agentId string) (*models.ScheduleConfig, error)
	SchedulesByTenant(ctx context.Context, tenantId string) ([]*models.ScheduleConfig, error)
	UpdateSchedule(ctx context.Context, schedule *models.ScheduleConfig) error
	DeleteSchedule(ctx context.Context, id string) error

	// DueSchedules returns all active schedules with next_run_at <= now.
	DueSchedules(ctx context.Context, now time.Time) ([]*models.ScheduleConfig, error)

	// AdvanceNextRun moves a schedule's next_run_at from `from` to `to`
	// as a compare-and-swap: it succeeds only while next_run_at still
	// holds `from`, so concurrent pollers cannot both win the same
	// schedule. Returns false without error on a lost race.
	AdvanceNextRun(ctx context.Context, id string, from *time.Time, to time.Time) (bool, error)

	// RecordRunResult updates last_run_at and the run counters for one
	// worker invocation: total always increments, and exactly one of
	// successful/failed does.
	RecordRunResult(ctx context.Context, id string, ranAt time.Time, succeeded bool) error

	// Posts
	CreatePost(ctx context.Context, post *models.Post) error
	Post(ctx context.Context, id string) (*models.Post, error)
	PublishedPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	PostsByTenant(ctx context.Context, tenantId string, page, pageSize int) ([]*models.Post, int, error)
	// PublishedPosts lists published posts newest-first, ordered by
	// published_at falling back to created_at. agentId may be empty.
	PublishedPosts(ctx context.Context, agentId string, page, pageSize int) ([]*models.Post, int, error)
	RecentPostTitles(ctx context.Context, agentId string, limit int) ([]string, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
}
