package pkg

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"postforge/pkg/models"
	"postforge/pkg/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func parsePagination(c *gin.Context) (page, pageSize int) {
	page = cast.ToInt(c.Query("page"))
	if page < 1 {
		page = 1
	}
	pageSize = cast.ToInt(c.Query("page_size"))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// listPublicPosts serves published posts for landing pages, no
// authentication required.
func (s *Server) listPublicPosts(c *gin.Context) (*utils.Response, error) {
	page, pageSize := parsePagination(c)
	agentId := c.Query("agent_id")

	posts, total, err := s.store.PublishedPosts(c.Request.Context(), agentId, page, pageSize)
	if err != nil {
		return nil, err
	}

	return utils.Respond(http.StatusOK, postListResponse(posts, total, page, pageSize)), nil
}

func (s *Server) getFeaturedPosts(c *gin.Context) (*utils.Response, error) {
	limit := cast.ToInt(c.Query("limit"))
	if limit < 1 {
		limit = 3
	}
	if limit > 10 {
		limit = 10
	}

	posts, _, err := s.store.PublishedPosts(c.Request.Context(), c.Query("agent_id"), 1, limit)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	return utils.Respond(http.StatusOK, posts), nil
}

func (s *Server) getPublicPostBySlug(c *gin.Context) (*utils.Response, error) {
	post, err := s.store.PublishedPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errNotFound("Post")
		}
		return nil, err
	}

	return utils.Respond(http.StatusOK, post), nil
}
