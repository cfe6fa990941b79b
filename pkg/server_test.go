package pkg

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"postforge/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDispatcher struct {
	jobs []PublishJob
	err  error
}

func (d *fakeDispatcher) Enqueue(job PublishJob) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

type fakeGenerator struct {
	post   *GeneratedPost
	topics []TopicSuggestion
	err    error
}

func (g *fakeGenerator) GeneratePost(_ context.Context, _ *models.Agent, _ *models.ScheduleConfig, _ *models.GenerationSettings) (*GeneratedPost, error) {
	return g.post, g.err
}

func (g *fakeGenerator) SuggestTopics(_ context.Context, _ *models.Agent, _ []string, _ int, _ *models.GenerationSettings) ([]TopicSuggestion, error) {
	return g.topics, g.err
}

func newTestConfig() *Config {
	return &Config{
		Port:       8080,
		AppSecret:  "app-secret",
		CronSecret: "cron-secret",
		Generation: configDefaults.Generation,
	}
}

func newTestServer() (*Server, *MemoryStore, *fakeDispatcher) {
	store := NewMemoryStore()
	dispatcher := &fakeDispatcher{}
	server := NewServer(newTestConfig(), store, dispatcher, &fakeGenerator{}, nil)
	return server, store, dispatcher
}

func seedTenant(t *testing.T, store *MemoryStore, name string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{
		Name:     name,
		Slug:     name,
		ApiKey:   name + "-key",
		IsActive: true,
	}
	require.NoError(t, store.CreateTenant(context.Background(), tenant))
	return tenant
}

func seedAgent(t *testing.T, store *MemoryStore, tenant *models.Tenant, name string) *models.Agent {
	t.Helper()
	agent := &models.Agent{
		TenantId:   tenant.Id,
		Name:       name,
		Expertise:  "ecommerce",
		Tone:       "professional",
		PostLength: models.PostLengthMedium,
		IsActive:   true,
	}
	require.NoError(t, store.CreateAgent(context.Background(), agent))
	return agent
}

func seedSchedule(t *testing.T, store *MemoryStore, agent *models.Agent, nextRunAt *time.Time) *models.ScheduleConfig {
	t.Helper()
	schedule := &models.ScheduleConfig{
		AgentId:     agent.Id,
		Interval:    models.IntervalDaily,
		PublishHour: 9,
		Timezone:    "UTC",
		PostLength:  models.PostLengthMedium,
		IsActive:    true,
		NextRunAt:   nextRunAt,
	}
	require.NoError(t, store.CreateSchedule(context.Background(), schedule))
	return schedule
}

// newGinContext builds a request-bearing test context. tenant may be
// nil for unauthenticated routes.
func newGinContext(t *testing.T, method, target string, body interface{}, tenant *models.Tenant) *gin.Context {
	t.Helper()

	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, target, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	if tenant != nil {
		c.Set(ginContextKeyTenant, tenant)
	}

	return c
}

func withParam(c *gin.Context, key, value string) *gin.Context {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
	return c
}

func timePtr(t time.Time) *time.Time {
	return &t
}
