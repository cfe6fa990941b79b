package pkg

import (
	"context"
	"sort"
	"sync"
	"time"

	"postforge/pkg/models"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store used by the tests. It applies the
// same semantics as BunStore (UTC timestamps, CAS on next_run_at,
// counter updates), just without a database.
type MemoryStore struct {
	mu sync.Mutex

	tenants   map[string]*models.Tenant
	agents    map[string]*models.Agent
	schedules map[string]*models.ScheduleConfig
	posts     map[string]*models.Post
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants:   make(map[string]*models.Tenant),
		agents:    make(map[string]*models.Agent),
		schedules: make(map[string]*models.ScheduleConfig),
		posts:     make(map[string]*models.Post),
	}
}

// --- Tenants ---

func (s *MemoryStore) TenantByAPIKey(_ context.Context, apiKey string) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tenant := range s.tenants {
		if tenant.ApiKey == apiKey && tenant.IsActive {
			copied := *tenant
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateTenant(_ context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stampNew(&tenant.Id, &tenant.CreatedAt, &tenant.UpdatedAt)
	copied := *tenant
	s.tenants[tenant.Id] = &copied
	return nil
}

// --- Agents ---

func (s *MemoryStore) CreateAgent(_ context.Context, agent *models.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stampNew(&agent.Id, &agent.CreatedAt, &agent.UpdatedAt)
	copied := *agent
	s.agents[agent.Id] = &copied
	return nil
}

func (s *MemoryStore) Agent(_ context.Context, id string) (*models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agent, ok := s.agents[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *agent
	return &copied, nil
}

func (s *MemoryStore) AgentsByTenant(_ context.Context, tenantId string) ([]*models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var agents []*models.Agent
	for _, agent := range s.agents {
		if agent.TenantId == tenantId {
			copied := *agent
			agents = append(agents, &copied)
		}
	}
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].CreatedAt.After(agents[j].CreatedAt)
	})
	return agents, nil
}

func (s *MemoryStore) UpdateAgent(_ context.Context, agent *models.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[agent.Id]; !ok {
		return ErrNotFound
	}
	agent.UpdatedAt = time.Now().UTC()
	copied := *agent
	s.agents[agent.Id] = &copied
	return nil
}

func (s *MemoryStore) DeleteAgent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[id]; !ok {
		return ErrNotFound
	}
	delete(s.agents, id)
	return nil
}

// --- Schedules ---

func (s *MemoryStore) CreateSchedule(_ context.Context, schedule *models.ScheduleConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stampNew(&schedule.Id, &schedule.CreatedAt, &schedule.UpdatedAt)
	copied := *schedule
	s.schedules[schedule.Id] = &copied
	return nil
}

func (s *MemoryStore) Schedule(_ context.Context, id string) (*models.ScheduleConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *schedule
	return &copied, nil
}

func (s *MemoryStore) ScheduleByAgent(_ context.Context, agentId string) (*models.ScheduleConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, schedule := range s.schedules {
		if schedule.AgentId == agentId {
			copied := *schedule
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SchedulesByTenant(_ context.Context, tenantId string) ([]*models.ScheduleConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var schedules []*models.ScheduleConfig
	for _, schedule := range s.schedules {
		agent, ok := s.agents[schedule.AgentId]
		if !ok || agent.TenantId != tenantId {
			continue
		}
		copied := *schedule
		schedules = append(schedules, &copied)
	}
	sort.Slice(schedules, func(i, j int) bool {
		return schedules[i].CreatedAt.After(schedules[j].CreatedAt)
	})
	return schedules, nil
}

func (s *MemoryStore) UpdateSchedule(_ context.Context, schedule *models.ScheduleConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[schedule.Id]; !ok {
		return ErrNotFound
	}
	schedule.UpdatedAt = time.Now().UTC()
	copied := *schedule
	s.schedules[schedule.Id] = &copied
	return nil
}

func (s *MemoryStore) DeleteSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		return ErrNotFound
	}
	delete(s.schedules, id)
	return nil
}

func (s *MemoryStore) DueSchedules(_ context.Context, now time.Time) ([]*models.ScheduleConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*models.ScheduleConfig
	for _, schedule := range s.schedules {
		if !schedule.IsActive || schedule.NextRunAt == nil {
			continue
		}
		if schedule.NextRunAt.After(now.UTC()) {
			continue
		}
		copied := *schedule
		due = append(due, &copied)
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextRunAt.Before(*due[j].NextRunAt)
	})
	return due, nil
}

func (s *MemoryStore) AdvanceNextRun(_ context.Context, id string, from *time.Time, to time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return false, nil
	}

	switch {
	case from == nil && schedule.NextRunAt != nil:
		return false, nil
	case from != nil && (schedule.NextRunAt == nil || !schedule.NextRunAt.Equal(*from)):
		return false, nil
	}

	next := to.UTC()
	schedule.NextRunAt = &next
	schedule.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *MemoryStore) RecordRunResult(_ context.Context, id string, ranAt time.Time, succeeded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return ErrNotFound
	}
	ran := ranAt.UTC()
	schedule.LastRunAt = &ran
	schedule.TotalPostsGenerated++
	if succeeded {
		schedule.SuccessfulPosts++
	} else {
		schedule.FailedPosts++
	}
	schedule.UpdatedAt = time.Now().UTC()
	return nil
}

// --- Posts ---

func (s *MemoryStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stampNew(&post.Id, &post.CreatedAt, &post.UpdatedAt)
	copied := *post
	s.posts[post.Id] = &copied
	return nil
}

func (s *MemoryStore) Post(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (s *MemoryStore) PublishedPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, post := range s.posts {
		if post.Slug == slug && post.Status == models.PostStatusPublished {
			copied := *post
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) PostsByTenant(_ context.Context, tenantId string, page, pageSize int) ([]*models.Post, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []*models.Post
	for _, post := range s.posts {
		if post.TenantId == tenantId {
			copied := *post
			posts = append(posts, &copied)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return paginatePosts(posts, page, pageSize)
}

func (s *MemoryStore) PublishedPosts(_ context.Context, agentId string, page, pageSize int) ([]*models.Post, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []*models.Post
	for _, post := range s.posts {
		if post.Status != models.PostStatusPublished {
			continue
		}
		if agentId != "" && post.AgentId != agentId {
			continue
		}
		copied := *post
		posts = append(posts, &copied)
	}
	sort.Slice(posts, func(i, j int) bool {
		return publishOrder(posts[i]).After(publishOrder(posts[j]))
	})
	return paginatePosts(posts, page, pageSize)
}

func (s *MemoryStore) RecentPostTitles(_ context.Context, agentId string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []*models.Post
	for _, post := range s.posts {
		if post.AgentId == agentId {
			posts = append(posts, post)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	var titles []string
	for _, post := range posts {
		if len(titles) >= limit {
			break
		}
		titles = append(titles, post.Title)
	}
	return titles, nil
}

func (s *MemoryStore) UpdatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.Id]; !ok {
		return ErrNotFound
	}
	post.UpdatedAt = time.Now().UTC()
	copied := *post
	s.posts[post.Id] = &copied
	return nil
}

func (s *MemoryStore) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// --- helpers ---

func publishOrder(post *models.Post) time.Time {
	if post.PublishedAt != nil {
		return *post.PublishedAt
	}
	return post.CreatedAt
}

func paginatePosts(posts []*models.Post, page, pageSize int) ([]*models.Post, int, error) {
	total := len(posts)
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return posts[start:end], total, nil
}
