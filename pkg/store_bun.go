package pkg

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"postforge/pkg/models"
)

var _ Store = (*BunStore)(nil)

// BunStore persists everything through bun on Postgres.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

func wrapSelectErr(err error, what string) error {
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return errors.WithMessagef(err, "failed to select %s", what)
}

// --- Tenants ---

func (s *BunStore) TenantByAPIKey(ctx context.Context, apiKey string) (*models.Tenant, error) {
	tenant := new(models.Tenant)
	err := s.db.NewSelect().
		Model(tenant).
		Where("api_key = ?", apiKey).
		Where("is_active = TRUE").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapSelectErr(err, "tenant")
	}
	return tenant, nil
}

func (s *BunStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	stampNew(&tenant.Id, &tenant.CreatedAt, &tenant.UpdatedAt)
	if _, err := s.db.NewInsert().Model(tenant).Exec(ctx); err != nil {
		return errors.WithMessage(err, "failed to insert tenant")
	}
	return nil
}

// --- Agents ---

func (s *BunStore) CreateAgent(ctx context.Context, agent *models.Agent) error {
	stampNew(&agent.Id, &agent.CreatedAt, &agent.UpdatedAt)
	if _, err := s.db.NewInsert().Model(agent).Exec(ctx); err != nil {
		return errors.WithMessage(err, "failed to insert agent")
	}
	return nil
}

func (s *BunStore) Agent(ctx context.Context, id string) (*models.Agent, error) {
	agent := new(models.Agent)
	err := s.db.NewSelect().Model(agent).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, wrapSelectErr(err, "agent")
	}
	return agent, nil
}

func (s *BunStore) AgentsByTenant(ctx context.Context, tenantId string) ([]*models.Agent, error) {
	var agents []*models.Agent
	err := s.db.NewSelect().
		Model(&agents).
		Where("tenant_id = ?", tenantId).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to select agents")
	}
	return agents, nil
}

func (s *BunStore) UpdateAgent(ctx context.Context, agent *models.Agent) error {
	agent.UpdatedAt = time.Now().UTC()
	res, err := s.db.NewUpdate().Model(agent).WherePK().Exec(ctx)
	if err != nil {
		return errors.WithMessage(err, "failed to update agent")
	}
	return requireAffected(res)
}

func (s *BunStore) DeleteAgent(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*models.Agent)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return errors.WithMessage(err, "failed to delete agent")
	}
	return requireAffected(res)
}

// --- Schedules ---

func (s *BunStore) CreateSchedule(ctx context.Context, schedule *models.ScheduleConfig) error {
	stampNew(&schedule.Id, &schedule.CreatedAt, &schedule.UpdatedAt)
	if _, err := s.db.NewInsert().Model(schedule).Exec(ctx); err != nil {
		return errors.WithMessage(err, "failed to insert schedule")
	}
	return nil
}

func (s *BunStore) Schedule(ctx context.Context, id string) (*models.ScheduleConfig, error) {
	schedule := new(models.ScheduleConfig)
	err := s.db.NewSelect().Model(schedule).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, wrapSelectErr(err, "schedule")
	}
	return schedule, nil
}

func (s *BunStore) ScheduleByAgent(ctx context.Context, agentId string) (*models.ScheduleConfig, error) {
	schedule := new(models.ScheduleConfig)
	err := s.db.NewSelect().Model(schedule).Where("agent_id = ?", agentId).Limit(1).Scan(ctx)
	if err != nil {
		return nil, wrapSelectErr(err, "schedule")
	}
	return schedule, nil
}

func (s *BunStore) SchedulesByTenant(ctx context.Context, tenantId string) ([]*models.ScheduleConfig, error) {
	var schedules []*models.ScheduleConfig
	err := s.db.NewSelect().
		Model(&schedules).
		Where("agent_id IN (SELECT id FROM agents WHERE tenant_id = ?)", tenantId).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to select schedules")
	}
	return schedules, nil
}

func (s *BunStore) UpdateSchedule(ctx context.Context, schedule *models.ScheduleConfig) error {
	schedule.UpdatedAt = time.Now().UTC()
	res, err := s.db.NewUpdate().Model(schedule).WherePK().Exec(ctx)
	if err != nil {
		return errors.WithMessage(err, "failed to update schedule")
	}
	return requireAffected(res)
}

func (s *BunStore) DeleteSchedule(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*models.ScheduleConfig)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return errors.WithMessage(err, "failed to delete schedule")
	}
	return requireAffected(res)
}

func (s *BunStore) DueSchedules(ctx context.Context, now time.Time) ([]*models.ScheduleConfig, error) {
	var schedules []*models.ScheduleConfig
	err := s.db.NewSelect().
		Model(&schedules).
		Where("is_active = TRUE").
		Where("next_run_at <= ?", now.UTC()).
		Order("next_run_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to select due schedules")
	}
	return schedules, nil
}

func (s *BunStore) AdvanceNextRun(ctx context.Context, id string, from *time.Time, to time.Time) (bool, error) {
	q := s.db.NewUpdate().
		Model((*models.ScheduleConfig)(nil)).
		Set("next_run_at = ?", to.UTC()).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id)

	if from == nil {
		q = q.Where("next_run_at IS NULL")
	} else {
		q = q.Where("next_run_at = ?", from.UTC())
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return false, errors.WithMessage(err, "failed to advance next run")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, errors.WithMessage(err, "failed to read affected rows")
	}
	return rows > 0, nil
}

func (s *BunStore) RecordRunResult(ctx context.Context, id string, ranAt time.Time, succeeded bool) error {
	q := s.db.NewUpdate().
		Model((*models.ScheduleConfig)(nil)).
		Set("last_run_at = ?", ranAt.UTC()).
		Set("total_posts_generated = total_posts_generated + 1").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id)

	if succeeded {
		q = q.Set("successful_posts = successful_posts + 1")
	} else {
		q = q.Set("failed_posts = failed_posts + 1")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return errors.WithMessage(err, "failed to record run result")
	}
	return requireAffected(res)
}

// --- Posts ---

func (s *BunStore) CreatePost(ctx context.Context, post *models.Post) error {
	stampNew(&post.Id, &post.CreatedAt, &post.UpdatedAt)
	if _, err := s.db.NewInsert().Model(post).Exec(ctx); err != nil {
		return errors.WithMessage(err, "failed to insert post")
	}
	return nil
}

func (s *BunStore) Post(ctx context.Context, id string) (*models.Post, error) {
	post := new(models.Post)
	err := s.db.NewSelect().Model(post).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, wrapSelectErr(err, "post")
	}
	return post, nil
}

func (s *BunStore) PublishedPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post := new(models.Post)
	err := s.db.NewSelect().
		Model(post).
		Where("slug = ?", slug).
		Where("status = ?", models.PostStatusPublished).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapSelectErr(err, "post")
	}
	return post, nil
}

func (s *BunStore) PostsByTenant(ctx context.Context, tenantId string, page, pageSize int) ([]*models.Post, int, error) {
	var posts []*models.Post
	count, err := s.db.NewSelect().
		Model(&posts).
		Where("tenant_id = ?", tenantId).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithMessage(err, "failed to select posts")
	}
	return posts, count, nil
}

func (s *BunStore) PublishedPosts(ctx context.Context, agentId string, page, pageSize int) ([]*models.Post, int, error) {
	var posts []*models.Post
	q := s.db.NewSelect().
		Model(&posts).
		Where("status = ?", models.PostStatusPublished)
	if agentId != "" {
		q = q.Where("agent_id = ?", agentId)
	}
	count, err := q.
		OrderExpr("COALESCE(published_at, created_at) DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithMessage(err, "failed to select published posts")
	}
	return posts, count, nil
}

func (s *BunStore) RecentPostTitles(ctx context.Context, agentId string, limit int) ([]string, error) {
	var titles []string
	err := s.db.NewSelect().
		Model((*models.Post)(nil)).
		Column("title").
		Where("agent_id = ?", agentId).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx, &titles)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to select post titles")
	}
	return titles, nil
}

func (s *BunStore) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	res, err := s.db.NewUpdate().Model(post).WherePK().Exec(ctx)
	if err != nil {
		return errors.WithMessage(err, "failed to update post")
	}
	return requireAffected(res)
}

func (s *BunStore) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*models.Post)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return errors.WithMessage(err, "failed to delete post")
	}
	return requireAffected(res)
}

// --- helpers ---

func stampNew(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func requireAffected(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.WithMessage(err, "failed to read affected rows")
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
