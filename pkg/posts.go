package pkg

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"postforge/pkg/models"
	"postforge/pkg/utils"
)

// NewPostFromGenerated turns LLM output into a post row. The slug gets
// a random suffix so regenerated titles never collide.
func NewPostFromGenerated(agent *models.Agent, generated *GeneratedPost, autoPublish bool) *models.Post {
	slug := utils.Slugify(generated.Title)
	if suffix := utils.RandomToken(6); suffix != "" {
		slug = slug + "-" + suffix
	}

	post := &models.Post{
		TenantId:      agent.TenantId,
		AgentId:       agent.Id,
		Title:         generated.Title,
		Slug:          slug,
		Content:       generated.Content,
		TargetKeyword: generated.TargetKeyword,
		Status:        models.PostStatusDraft,
	}

	if autoPublish {
		now := time.Now().UTC()
		post.Status = models.PostStatusPublished
		post.PublishedAt = &now
	}

	return post
}

type PostListResponse struct {
	Items      []*models.Post `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

func postListResponse(posts []*models.Post, total, page, pageSize int) *PostListResponse {
	if posts == nil {
		posts = []*models.Post{}
	}
	return &PostListResponse{
		Items:      posts,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
}

func (s *Server) tenantPost(c *gin.Context, postId string) (*models.Post, error) {
	post, err := s.store.Post(c.Request.Context(), postId)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errNotFound("Post")
		}
		return nil, err
	}

	if post.TenantId != CurrentTenant(c).Id {
		return nil, errAccessDenied
	}

	return post, nil
}

func (s *Server) listPosts(c *gin.Context) (*utils.Response, error) {
	tenant := CurrentTenant(c)
	page, pageSize := parsePagination(c)

	posts, total, err := s.store.PostsByTenant(c.Request.Context(), tenant.Id, page, pageSize)
	if err != nil {
		return nil, err
	}

	return utils.Respond(http.StatusOK, postListResponse(posts, total, page, pageSize)), nil
}

func (s *Server) getPost(c *gin.Context) (*utils.Response, error) {
	post, err := s.tenantPost(c, c.Param("id"))
	if err != nil {
		return nil, err
	}
	return utils.Respond(http.StatusOK, post), nil
}

// publishPost flips a draft to published and archives it. Publishing
// an already-published post only refreshes the archive copy.
func (s *Server) publishPost(c *gin.Context) (*utils.Response, error) {
	post, err := s.tenantPost(c, c.Param("id"))
	if err != nil {
		return nil, err
	}

	if post.Status != models.PostStatusPublished {
		now := time.Now().UTC()
		post.Status = models.PostStatusPublished
		post.PublishedAt = &now
		if err := s.store.UpdatePost(c.Request.Context(), post); err != nil {
			return nil, err
		}
	}

	if s.archive != nil {
		agentName := ""
		if agent, err := s.store.Agent(c.Request.Context(), post.AgentId); err == nil {
			agentName = agent.Name
		}
		if err := s.archive.ArchivePost(post, agentName); err != nil {
			logrus.WithError(err).WithField("post", post.Id).Warn("failed to archive post")
		}
	}

	return utils.Respond(http.StatusOK, post), nil
}

func (s *Server) deletePost(c *gin.Context) (*utils.Response, error) {
	post, err := s.tenantPost(c, c.Param("id"))
	if err != nil {
		return nil, err
	}

	if err := s.store.DeletePost(c.Request.Context(), post.Id); err != nil {
		return nil, err
	}

	return utils.Respond(http.StatusNoContent, nil), nil
}
