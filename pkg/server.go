package pkg

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"postforge/pkg/models"
	"postforge/pkg/utils"
)

// Server holds everything the handlers need. Configuration is passed
// in explicitly rather than read from ambient state, so tests can
// construct servers with fake collaborators.
type Server struct {
	config     *Config
	store      Store
	dispatcher Dispatcher
	generator  PostGenerator
	archive    *Archive
}

func NewServer(config *Config, store Store, dispatcher Dispatcher, generator PostGenerator, archive *Archive) *Server {
	return &Server{
		config:     config,
		store:      store,
		dispatcher: dispatcher,
		generator:  generator,
		archive:    archive,
	}
}

func errNotFound(what string) *utils.RequestError {
	return utils.NewRequestError(http.StatusNotFound, errors.Errorf("%s not found", what))
}

var errAccessDenied = utils.NewRequestError(http.StatusForbidden, errors.New("Access denied"))

// tenantAgent loads an agent and verifies it belongs to the calling
// tenant. A foreign agent id behaves like a missing one on creation
// paths (404), matching the scoped lookup semantics.
func (s *Server) tenantAgent(c *gin.Context, agentId string, missingIsForbidden bool) (*models.Agent, error) {
	tenant := CurrentTenant(c)

	agent, err := s.store.Agent(c.Request.Context(), agentId)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if missingIsForbidden {
				return nil, errAccessDenied
			}
			return nil, errNotFound("Agent")
		}
		return nil, err
	}

	if agent.TenantId != tenant.Id {
		if missingIsForbidden {
			return nil, errAccessDenied
		}
		return nil, errNotFound("Agent")
	}

	return agent, nil
}

// tenantSchedule loads a schedule and verifies ownership through the
// owning agent: missing schedule is 404, cross-tenant access is 403.
func (s *Server) tenantSchedule(c *gin.Context, scheduleId string) (*models.ScheduleConfig, error) {
	schedule, err := s.store.Schedule(c.Request.Context(), scheduleId)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errNotFound("Schedule")
		}
		return nil, err
	}

	if _, err := s.tenantAgent(c, schedule.AgentId, true); err != nil {
		return nil, err
	}

	return schedule, nil
}
