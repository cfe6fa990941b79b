package pkg

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"postforge/pkg/models"
)

func TestCreateAgent(t *testing.T) {
	server, store, _ := newTestServer()
	tenant := seedTenant(t, store, "acme")

	c := newGinContext(t, http.MethodPost, "/agents", &AgentCreateRequest{
		Name:      "Shop Writer",
		Expertise: "ecommerce",
	}, tenant)

	resp, err := server.createAgent(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	agent := resp.Body.(*models.Agent)
	require.Equal(t, tenant.Id, agent.TenantId)
	require.Equal(t, "Shop Writer", agent.Name)
	require.Equal(t, "professional", agent.Tone)
	require.Equal(t, models.PostLengthMedium, agent.PostLength)
	require.True(t, agent.IsActive)
	require.NotEmpty(t, agent.Id)
}

func TestCreateAgentValidation(t *testing.T) {
	server, store, _ := newTestServer()
	tenant := seedTenant(t, store, "acme")

	c := newGinContext(t, http.MethodPost, "/agents", &AgentCreateRequest{}, tenant)
	_, err := server.createAgent(c)
	requireRequestError(t, err, http.StatusBadRequest)

	c = newGinContext(t, http.MethodPost, "/agents", &AgentCreateRequest{
		Name:       "Writer",
		PostLength: "gigantic",
	}, tenant)
	_, err = server.createAgent(c)
	requireRequestError(t, err, http.StatusBadRequest)
}

func TestListAgents(t *testing.T) {
	server, store, _ := newTestServer()
	tenant := seedTenant(t, store, "acme")
	other := seedTenant(t, store, "rival")

	seedAgent(t, store, tenant, "writer-1")
	seedAgent(t, store, tenant, "writer-2")
	seedAgent(t, store, other, "their-writer")

	c := newGinContext(t, http.MethodGet, "/agents", nil, tenant)
	resp, err := server.listAgents(c)
	require.NoError(t, err)

	body := resp.Body.(*AgentListResponse)
	require.Equal(t, 2, body.Total)
	require.Len(t, body.Items, 2)
}

func TestUpdateAgent(t *testing.T) {
	server, store, _ := newTestServer()
	tenant := seedTenant(t, store, "acme")
	agent := seedAgent(t, store, tenant, "writer")

	name := "Renamed Writer"
	tone := "casual"
	c := withParam(newGinContext(t, http.MethodPut, "/agents/"+agent.Id, &AgentUpdateRequest{
		Name: &name,
		Tone: &tone,
		Generation: &models.GenerationSettings{
			Model: "gpt-4o",
		},
	}, tenant), "id", agent.Id)

	resp, err := server.updateAgent(c)
	require.NoError(t, err)

	updated := resp.Body.(*models.Agent)
	require.Equal(t, "Renamed Writer", updated.Name)
	require.Equal(t, "casual", updated.Tone)
	// Untouched fields survive the partial update
	require.Equal(t, "ecommerce", updated.Expertise)
	require.NotNil(t, updated.Generation)
	require.Equal(t, "gpt-4o", updated.Generation.Model)
}

func TestDeleteAgentCascadesSchedule(t *testing.T) {
	server, store, _ := newTestServer()
	tenant := seedTenant(t, store, "acme")
	agent := seedAgent(t, store, tenant, "writer")
	schedule := seedSchedule(t, store, agent, nil)
	post := seedPost(t, store, tenant, agent, "kept", models.PostStatusPublished)

	c := withParam(newGinContext(t, http.MethodDelete, "/agents/"+agent.Id, nil, tenant), "id", agent.Id)
	resp, err := server.deleteAgent(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	ctx := context.Background()
	_, err = store.Agent(ctx, agent.Id)
	require.ErrorIs(t, err, ErrNotFound)

	// The agent's schedule goes with it, its posts do not
	_, err = store.Schedule(ctx, schedule.Id)
	require.ErrorIs(t, err, ErrNotFound)

	kept, err := store.Post(ctx, post.Id)
	require.NoError(t, err)
	require.Equal(t, "kept", kept.Title)
}

func TestGetAgentAccess(t *testing.T) {
	server, store, _ := newTestServer()
	tenant := seedTenant(t, store, "acme")
	other := seedTenant(t, store, "rival")
	agent := seedAgent(t, store, tenant, "writer")

	c := withParam(newGinContext(t, http.MethodGet, "/agents/"+agent.Id, nil, tenant), "id", agent.Id)
	resp, err := server.getAgent(c)
	require.NoError(t, err)
	require.Equal(t, agent.Id, resp.Body.(*models.Agent).Id)

	// Foreign agents are indistinguishable from missing ones
	c = withParam(newGinContext(t, http.MethodGet, "/agents/"+agent.Id, nil, other), "id", agent.Id)
	_, err = server.getAgent(c)
	requireRequestError(t, err, http.StatusNotFound)
}
