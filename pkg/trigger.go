package pkg

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"postforge/pkg/utils"
)

type TriggerDueResponse struct {
	Status             string    `json:"status"`
	Message            string    `json:"message"`
	TriggeredSchedules []string  `json:"triggered_schedules"`
	CheckedAt          time.Time `json:"checked_at"`
}

// triggerDueSchedules is the bulk poll endpoint hit by an external
// time-based trigger. For every due schedule it advances next_run_at
// first (the CAS is the concurrency guard against overlapping polls)
// and only then hands the schedule to the worker pool. The response is
// an acknowledgment: workers run after it has been sent.
func (s *Server) triggerDueSchedules(c *gin.Context) (*utils.Response, error) {
	if !VerifyCronSecret(s.config, c.GetHeader(headerCronSecret)) {
		return nil, utils.NewRequestError(http.StatusForbidden, errors.New("Invalid cron secret"))
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()

	due, err := s.store.DueSchedules(ctx, now)
	if err != nil {
		return nil, err
	}

	triggered := []string{}

	for _, schedule := range due {
		log := logrus.WithField("schedule", schedule.Id)

		next, err := NextRun(schedule.CronExpression(), now)
		if err != nil {
			log.WithError(err).Error("trigger: failed to compute next run")
			continue
		}

		advanced, err := s.store.AdvanceNextRun(ctx, schedule.Id, schedule.NextRunAt, next)
		if err != nil {
			log.WithError(err).Error("trigger: failed to advance next run")
			continue
		}
		if !advanced {
			// A concurrent poll won the CAS and owns this run.
			log.Debug("trigger: schedule already claimed")
			continue
		}

		job := PublishJob{
			ScheduleId: schedule.Id,
			Token:      utils.RandomToken(8),
		}
		if err := s.dispatcher.Enqueue(job); err != nil {
			// next_run_at is already advanced; this run is skipped
			// rather than retried, the next slot will fire normally.
			log.WithError(err).Error("trigger: failed to dispatch auto-publish")
			continue
		}

		triggered = append(triggered, schedule.Id)
		log.WithField("token", job.Token).Info("triggered auto-publish")
	}

	return utils.Respond(http.StatusAccepted, &TriggerDueResponse{
		Status:             "accepted",
		Message:            fmt.Sprintf("Triggered %d schedule(s)", len(triggered)),
		TriggeredSchedules: triggered,
		CheckedAt:          now,
	}), nil
}
