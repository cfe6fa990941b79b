package pkg

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"postforge/pkg/models"
	"postforge/pkg/utils"
)

type ScheduleCreateRequest struct {
	AgentId         string                  `json:"agent_id" binding:"required"`
	Interval        models.ScheduleInterval `json:"interval" binding:"required"`
	PublishHour     *int                    `json:"publish_hour" binding:"omitempty,min=0,max=23"`
	Timezone        string                  `json:"timezone"`
	AutoPublish     bool                    `json:"auto_publish"`
	TargetKeywords  []string                `json:"target_keywords"`
	ExcludeKeywords []string                `json:"exclude_keywords"`
	PostLength      models.PostLength       `json:"post_length"`
	IsActive        *bool                   `json:"is_active"`
}

type ScheduleUpdateRequest struct {
	Interval        *models.ScheduleInterval `json:"interval"`
	PublishHour     *int                     `json:"publish_hour" binding:"omitempty,min=0,max=23"`
	Timezone        *string                  `json:"timezone"`
	AutoPublish     *bool                    `json:"auto_publish"`
	TargetKeywords  []string                 `json:"target_keywords"`
	ExcludeKeywords []string                 `json:"exclude_keywords"`
	PostLength      *models.PostLength       `json:"post_length"`
	IsActive        *bool                    `json:"is_active"`
}

// ScheduleResponse mirrors the persisted fields plus the derived cron
// expression and display interval.
type ScheduleResponse struct {
	*models.ScheduleConfig
	IntervalDisplay string `json:"interval_display"`
	CronExpression  string `json:"cron_expression"`
}

func scheduleResponse(schedule *models.ScheduleConfig) *ScheduleResponse {
	return &ScheduleResponse{
		ScheduleConfig:  schedule,
		IntervalDisplay: schedule.Interval.Display(),
		CronExpression:  schedule.CronExpression(),
	}
}

type ScheduleListResponse struct {
	Items []*ScheduleResponse `json:"items"`
	Total int                 `json:"total"`
}

type ScheduleRunResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TaskId  string `json:"task_id,omitempty"`
}

func errBadRequest(err error) *utils.RequestError {
	return utils.NewRequestError(http.StatusBadRequest, err)
}

func (s *Server) createSchedule(c *gin.Context) (*utils.Response, error) {
	req := new(ScheduleCreateRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, errBadRequest(errors.WithMessage(err, "failed to parse request body"))
	}

	if !req.Interval.IsValid() {
		return nil, errBadRequest(errors.Errorf("invalid interval %q", req.Interval))
	}
	if req.PostLength != "" && !req.PostLength.IsValid() {
		return nil, errBadRequest(errors.Errorf("invalid post length %q", req.PostLength))
	}

	if _, err := s.tenantAgent(c, req.AgentId, false); err != nil {
		return nil, err
	}

	// One schedule per agent
	if _, err := s.store.ScheduleByAgent(c.Request.Context(), req.AgentId); err == nil {
		return nil, errBadRequest(errors.New("Schedule already exists for this agent. Update it instead."))
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	schedule := &models.ScheduleConfig{
		AgentId:         req.AgentId,
		Interval:        req.Interval,
		PublishHour:     9,
		Timezone:        "UTC",
		AutoPublish:     req.AutoPublish,
		TargetKeywords:  req.TargetKeywords,
		ExcludeKeywords: req.ExcludeKeywords,
		PostLength:      models.PostLengthMedium,
		IsActive:        true,
	}
	if req.PublishHour != nil {
		schedule.PublishHour = *req.PublishHour
	}
	if req.Timezone != "" {
		schedule.Timezone = req.Timezone
	}
	if req.PostLength != "" {
		schedule.PostLength = req.PostLength
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}

	if schedule.IsActive {
		next, err := NextRun(schedule.CronExpression(), time.Now().UTC())
		if err != nil {
			return nil, err
		}
		schedule.NextRunAt = &next
	}

	if err := s.store.CreateSchedule(c.Request.Context(), schedule); err != nil {
		return nil, err
	}

	return utils.Respond(http.StatusCreated, scheduleResponse(schedule)), nil
}

func (s *Server) listSchedules(c *gin.Context) (*utils.Response, error) {
	tenant := CurrentTenant(c)

	schedules, err := s.store.SchedulesByTenant(c.Request.Context(), tenant.Id)
	if err != nil {
		return nil, err
	}

	items := make([]*ScheduleResponse, 0, len(schedules))
	for _, schedule := range schedules {
		items = append(items, scheduleResponse(schedule))
	}

	return utils.Respond(http.StatusOK, &ScheduleListResponse{
		Items: items,
		Total: len(items),
	}), nil
}

func (s *Server) scheduleStats(c *gin.Context) (*utils.Response, error) {
	tenant := CurrentTenant(c)
	ctx := c.Request.Context()

	schedules, err := s.store.SchedulesByTenant(ctx, tenant.Id)
	if err != nil {
		return nil, err
	}

	agents, err := s.store.AgentsByTenant(ctx, tenant.Id)
	if err != nil {
		return nil, err
	}
	agentNames := make(map[string]string, len(agents))
	for _, agent := range agents {
		agentNames[agent.Id] = agent.Name
	}

	return utils.Respond(http.StatusOK, ComputeScheduleStats(schedules, agentNames)), nil
}

func (s *Server) getSchedule(c *gin.Context) (*utils.Response, error) {
	schedule, err := s.tenantSchedule(c, c.Param("id"))
	if err != nil {
		return nil, err
	}
	return utils.Respond(http.StatusOK, scheduleResponse(schedule)), nil
}

func (s *Server) updateSchedule(c *gin.Context) (*utils.Response, error) {
	schedule, err := s.tenantSchedule(c, c.Param("id"))
	if err != nil {
		return nil, err
	}

	req := new(ScheduleUpdateRequest)
	if err := c.ShouldBindJSON(req); err != nil {
		return nil, errBadRequest(errors.WithMessage(err, "failed to parse request body"))
	}

	timingChanged := false
	wasActive := schedule.IsActive

	if req.Interval != nil {
		if !req.Interval.IsValid() {
			return nil, errBadRequest(errors.Errorf("invalid interval %q", *req.Interval))
		}
		schedule.Interval = *req.Interval
		timingChanged = true
	}
	if req.PublishHour != nil {
		schedule.PublishHour = *req.PublishHour
		timingChanged = true
	}
	if req.Timezone != nil {
		schedule.Timezone = *req.Timezone
	}
	if req.AutoPublish != nil {
		schedule.AutoPublish = *req.AutoPublish
	}
	if req.TargetKeywords != nil {
		schedule.TargetKeywords = req.TargetKeywords
	}
	if req.ExcludeKeywords != nil {
		schedule.ExcludeKeywords = req.ExcludeKeywords
	}
	if req.PostLength != nil {
		if !req.PostLength.IsValid() {
			return nil, errBadRequest(errors.Errorf("invalid post length %q", *req.PostLength))
		}
		schedule.PostLength = *req.PostLength
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}

	// next_run_at stays null exactly while inactive; recompute on a
	// timing change or on reactivation.
	switch {
	case !schedule.IsActive:
		schedule.NextRunAt = nil
	case timingChanged || !wasActive:
		next, err := NextRun(schedule.CronExpression(), time.Now().UTC())
		if err != nil {
			return nil, err
		}
		schedule.NextRunAt = &next
	}

	if err := s.store.UpdateSchedule(c.Request.Context(), schedule); err != nil {
		return nil, err
	}

	return utils.Respond(http.StatusOK, scheduleResponse(schedule)), nil
}

func (s *Server) deleteSchedule(c *gin.Context) (*utils.Response, error) {
	schedule, err := s.tenantSchedule(c, c.Param("id"))
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteSchedule(c.Request.Context(), schedule.Id); err != nil {
		return nil, err
	}

	return utils.Respond(http.StatusNoContent, nil), nil
}

// runSchedule dispatches one manual auto-publish invocation. A
// dispatch failure is reported in the body, never as a server error.
func (s *Server) runSchedule(c *gin.Context) (*utils.Response, error) {
	schedule, err := s.tenantSchedule(c, c.Param("id"))
	if err != nil {
		return nil, err
	}

	job := PublishJob{
		ScheduleId: schedule.Id,
		Token:      utils.RandomToken(8),
	}

	if err := s.dispatcher.Enqueue(job); err != nil {
		return utils.Respond(http.StatusOK, &ScheduleRunResponse{
			Success: false,
			Message: "Failed to queue task: " + err.Error(),
		}), nil
	}

	return utils.Respond(http.StatusOK, &ScheduleRunResponse{
		Success: true,
		Message: "Task queued successfully",
		TaskId:  job.Token,
	}), nil
}

func (s *Server) toggleSchedule(c *gin.Context) (*utils.Response, error) {
	schedule, err := s.tenantSchedule(c, c.Param("id"))
	if err != nil {
		return nil, err
	}

	schedule.IsActive = !schedule.IsActive

	if schedule.IsActive {
		next, err := NextRun(schedule.CronExpression(), time.Now().UTC())
		if err != nil {
			return nil, err
		}
		schedule.NextRunAt = &next
	} else {
		schedule.NextRunAt = nil
	}

	if err := s.store.UpdateSchedule(c.Request.Context(), schedule); err != nil {
		return nil, err
	}

	return utils.Respond(http.StatusOK, scheduleResponse(schedule)), nil
}
