package pkg

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"postforge/pkg/models"
	"postforge/pkg/utils"
)

type AgentCreateRequest struct {
	Name       string                     `json:"name" binding:"required"`
	Expertise  string                     `json:"expertise"`
	Persona    string                     `json:"persona"`
	Tone       string                     `json:"tone"`
	PostLength models.PostLength          `json:"post_length"`
	Generation *models.GenerationSettings `json:"generation"`
	IsActive   *bool                      `json:"is_active"`
}

type AgentUpdateRequest struct {
	Name       *string                    `json:"name"`
	Expertise  *string                    `json:"expertise"`
	Persona    *string                    `json:"persona"`
	Tone       *string                    `json:"tone"`
	PostLength *models.PostLength         `json:"post_length"`
	Generation *models.GenerationSettings `json:"generation"`
	IsActive   *bool                      `json:"is_active"`
}

type AgentListResponse struct {
	Items []*models.Agent `json:"items"`
	Total int             `json:"total"`
}

func (s *Server) createAgent(c *gin.Context) (*utils.Response, error) {
	req := new(AgentCreateRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, errBadRequest(errors.WithMessage(err, "failed to parse request body"))
	}
	if req.PostLength != "" && !req.PostLength.IsValid() {
		return nil, errBadRequest(errors.Errorf("invalid post length %q", req.PostLength))
	}

	agent := &models.Agent{
		TenantId:   CurrentTenant(c).Id,
		Name:       req.Name,
		Expertise:  req.Expertise,
		Persona:    req.Persona,
		Tone:       "professional",
		PostLength: models.PostLengthMedium,
		Generation: req.Generation,
		IsActive:   true,
	}
	if req.Tone != "" {
		agent.Tone = req.Tone
	}
	if req.PostLength != "" {
		agent.PostLength = req.PostLength
	}
	if req.IsActive != nil {
		agent.IsActive = *req.IsActive
	}

	if err := s.store.CreateAgent(c.Request.Context(), agent); err != nil {
		return nil, err
	}

	return utils.Respond(http.StatusCreated, agent), nil
}

func (s *Server) listAgents(c *gin.Context) (*utils.Response, error) {
	agents, err := s.store.AgentsByTenant(c.Request.Context(), CurrentTenant(c).Id)
	if err != nil {
		return nil, err
	}
	if agents == nil {
		agents = []*models.Agent{}
	}

	return utils.Respond(http.StatusOK, &AgentListResponse{
		Items: agents,
		Total: len(agents),
	}), nil
}

func (s *Server) getAgent(c *gin.Context) (*utils.Response, error) {
	agent, err := s.tenantAgent(c, c.Param("id"), false)
	if err != nil {
		return nil, err
	}
	return utils.Respond(http.StatusOK, agent), nil
}

func (s *Server) updateAgent(c *gin.Context) (*utils.Response, error) {
	agent, err := s.tenantAgent(c, c.Param("id"), false)
	if err != nil {
		return nil, err
	}

	req := new(AgentUpdateRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, errBadRequest(errors.WithMessage(err, "failed to parse request body"))
	}

	if req.Name != nil {
		agent.Name = *req.Name
	}
	if req.Expertise != nil {
		agent.Expertise = *req.Expertise
	}
	if req.Persona != nil {
		agent.Persona = *req.Persona
	}
	if req.Tone != nil {
		agent.Tone = *req.Tone
	}
	if req.PostLength != nil {
		if !req.PostLength.IsValid() {
			return nil, errBadRequest(errors.Errorf("invalid post length %q", *req.PostLength))
		}
		agent.PostLength = *req.PostLength
	}
	if req.Generation != nil {
		agent.Generation = req.Generation
	}
	if req.IsActive != nil {
		agent.IsActive = *req.IsActive
	}

	if err := s.store.UpdateAgent(c.Request.Context(), agent); err != nil {
		return nil, err
	}

	return utils.Respond(http.StatusOK, agent), nil
}

func (s *Server) deleteAgent(c *gin.Context) (*utils.Response, error) {
	agent, err := s.tenantAgent(c, c.Param("id"), false)
	if err != nil {
		return nil, err
	}

	// The 1:1 schedule goes with its agent; posts are kept.
	if schedule, err := s.store.ScheduleByAgent(c.Request.Context(), agent.Id); err == nil {
		if err := s.store.DeleteSchedule(c.Request.Context(), schedule.Id); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := s.store.DeleteAgent(c.Request.Context(), agent.Id); err != nil {
		return nil, err
	}

	return utils.Respond(http.StatusNoContent, nil), nil
}
