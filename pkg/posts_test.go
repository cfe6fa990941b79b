package pkg

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"postforge/pkg/models"
)

func seedPost(t *testing.T, store *MemoryStore, tenant *models.Tenant, agent *models.Agent, title string, status models.PostStatus) *models.Post {
	t.Helper()
	post := &models.Post{
		TenantId: tenant.Id,
		AgentId:  agent.Id,
		Title:    title,
		Slug:     title,
		Content:  "body of " + title,
		Status:   status,
	}
	if status == models.PostStatusPublished {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}
	require.NoError(t, store.CreatePost(context.Background(), post))
	return post
}

func TestNewPostFromGenerated(t *testing.T) {
	agent := &models.Agent{Id: "a1", TenantId: "t1"}
	generated := &GeneratedPost{
		Title:         "10 SEO Tips for 2024!",
		Content:       "The content.",
		TargetKeyword: "seo tips",
	}

	draft := NewPostFromGenerated(agent, generated, false)
	require.Equal(t, "t1", draft.TenantId)
	require.Equal(t, "a1", draft.AgentId)
	require.Equal(t, models.PostStatusDraft, draft.Status)
	require.Nil(t, draft.PublishedAt)
	require.Contains(t, draft.Slug, "10-seo-tips-for-2024-")

	published := NewPostFromGenerated(agent, generated, true)
	require.Equal(t, models.PostStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)

	// The random suffix keeps identical titles from colliding
	require.NotEqual(t, draft.Slug, published.Slug)
}

func TestListPosts(t *testing.T) {
	server, store, _ := newTestServer()
	tenant := seedTenant(t, store, "acme")
	other := seedTenant(t, store, "rival")
	agent := seedAgent(t, store, tenant, "writer")

	seedPost(t, store, tenant, agent, "mine-1", models.PostStatusDraft)
	seedPost(t, store, tenant, agent, "mine-2", models.PostStatusPublished)
	seedPost(t, store, other, seedAgent(t, store, other, "their-writer"), "theirs", models.PostStatusPublished)

	c := newGinContext(t, http.MethodGet, "/posts", nil, tenant)
	resp, err := server.listPosts(c)
	require.NoError(t, err)

	body := resp.Body.(*PostListResponse)
	require.Equal(t, 2, body.Total)
	require.Len(t, body.Items, 2)
	require.Equal(t, 1, body.Page)
	require.Equal(t, defaultPageSize, body.PageSize)
	require.Equal(t, 1, body.TotalPages)
}

func TestGetPostAccess(t *testing.T) {
	server, store, _ := newTestServer()
	tenant := seedTenant(t, store, "acme")
	other := seedTenant(t, store, "rival")
	post := seedPost(t, store, tenant, seedAgent(t, store, tenant, "writer"), "mine", models.PostStatusDraft)

	c := withParam(newGinContext(t, http.MethodGet, "/posts/"+post.Id, nil, tenant), "id", post.Id)
	resp, err := server.getPost(c)
	require.NoError(t, err)
	require.Equal(t, post.Id, resp.Body.(*models.Post).Id)

	c = withParam(newGinContext(t, http.MethodGet, "/posts/missing", nil, tenant), "id", "missing")
	_, err = server.getPost(c)
	requireRequestError(t, err, http.StatusNotFound)

	c = withParam(newGinContext(t, http.MethodGet, "/posts/"+post.Id, nil, other), "id", post.Id)
	_, err = server.getPost(c)
	requireRequestError(t, err, http.StatusForbidden)
}

func TestPublishPost(t *testing.T) {
	server, store, _ := newTestServer()
	tenant := seedTenant(t, store, "acme")
	post := seedPost(t, store, tenant, seedAgent(t, store, tenant, "writer"), "draft", models.PostStatusDraft)

	c := withParam(newGinContext(t, http.MethodPost, "/posts/"+post.Id+"/publish", nil, tenant), "id", post.Id)
	resp, err := server.publishPost(c)
	require.NoError(t, err)

	published := resp.Body.(*models.Post)
	require.Equal(t, models.PostStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	firstPublishedAt := *published.PublishedAt

	// Re-publishing keeps the original timestamp
	c = withParam(newGinContext(t, http.MethodPost, "/posts/"+post.Id+"/publish", nil, tenant), "id", post.Id)
	resp, err = server.publishPost(c)
	require.NoError(t, err)
	require.Equal(t, firstPublishedAt, *resp.Body.(*models.Post).PublishedAt)
}

func TestDeletePost(t *testing.T) {
	server, store, _ := newTestServer()
	tenant := seedTenant(t, store, "acme")
	post := seedPost(t, store, tenant, seedAgent(t, store, tenant, "writer"), "doomed", models.PostStatusDraft)

	c := withParam(newGinContext(t, http.MethodDelete, "/posts/"+post.Id, nil, tenant), "id", post.Id)
	resp, err := server.deletePost(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = store.Post(context.Background(), post.Id)
	require.ErrorIs(t, err, ErrNotFound)
}
