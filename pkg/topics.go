package pkg

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"postforge/pkg/utils"
)

const recentTitlesForDedup = 20

type TopicSuggestRequest struct {
	AgentId string `json:"agent_id" binding:"required"`
	Count   int    `json:"count" binding:"omitempty,min=1,max=10"`
}

type TopicSuggestResponse struct {
	Suggestions []TopicSuggestion `json:"suggestions"`
	AgentId     string            `json:"agent_id"`
}

// suggestTopics asks the LLM for topic ideas grounded in the agent's
// expertise, steering it away from already-written posts.
func (s *Server) suggestTopics(c *gin.Context) (*utils.Response, error) {
	req := new(TopicSuggestRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, errBadRequest(errors.WithMessage(err, "failed to parse request body"))
	}
	if req.Count == 0 {
		req.Count = 5
	}

	agent, err := s.tenantAgent(c, req.AgentId, false)
	if err != nil {
		return nil, err
	}

	ctx := c.Request.Context()

	existingTitles, err := s.store.RecentPostTitles(ctx, agent.Id, recentTitlesForDedup)
	if err != nil {
		return nil, err
	}

	settings, err := MergeGenerationSettings(&s.config.Generation, agent.Generation)
	if err != nil {
		return nil, err
	}

	suggestions, err := s.generator.SuggestTopics(ctx, agent, existingTitles, req.Count, settings)
	if err != nil {
		return nil, utils.NewRequestError(http.StatusInternalServerError,
			errors.WithMessage(err, "failed to generate topic suggestions"))
	}

	return utils.Respond(http.StatusOK, &TopicSuggestResponse{
		Suggestions: suggestions,
		AgentId:     agent.Id,
	}), nil
}
