package pkg

import (
	"math"
	"sort"
	"time"

	"postforge/pkg/models"
)

type UpcomingPost struct {
	ScheduleId string    `json:"schedule_id"`
	NextRunAt  time.Time `json:"next_run_at"`
	AgentName  string    `json:"agent_name"`
	Interval   string    `json:"interval"`
}

type ScheduleStats struct {
	TotalSchedules      int            `json:"total_schedules"`
	ActiveSchedules     int            `json:"active_schedules"`
	TotalPostsGenerated int            `json:"total_posts_generated"`
	SuccessfulPosts     int            `json:"successful_posts"`
	FailedPosts         int            `json:"failed_posts"`
	SuccessRate         float64        `json:"success_rate"`
	UpcomingPosts       []UpcomingPost `json:"upcoming_posts"`
}

const maxUpcomingPosts = 5

// ComputeScheduleStats rolls up counters across a tenant's schedules.
// agentNames maps agent id to display name for the upcoming list.
func ComputeScheduleStats(schedules []*models.ScheduleConfig, agentNames map[string]string) *ScheduleStats {
	stats := &ScheduleStats{
		TotalSchedules: len(schedules),
		UpcomingPosts:  []UpcomingPost{},
	}

	var upcoming []UpcomingPost

	for _, schedule := range schedules {
		stats.TotalPostsGenerated += schedule.TotalPostsGenerated
		stats.SuccessfulPosts += schedule.SuccessfulPosts
		stats.FailedPosts += schedule.FailedPosts

		if !schedule.IsActive {
			continue
		}
		stats.ActiveSchedules++

		if schedule.NextRunAt == nil {
			continue
		}

		agentName := agentNames[schedule.AgentId]
		if agentName == "" {
			agentName = "Unknown"
		}

		upcoming = append(upcoming, UpcomingPost{
			ScheduleId: schedule.Id,
			NextRunAt:  schedule.NextRunAt.UTC(),
			AgentName:  agentName,
			Interval:   schedule.Interval.Display(),
		})
	}

	if stats.TotalPostsGenerated > 0 {
		rate := float64(stats.SuccessfulPosts) / float64(stats.TotalPostsGenerated) * 100
		stats.SuccessRate = math.Round(rate*100) / 100
	}

	// Ascending by next run, stable across equal timestamps via the
	// schedule id.
	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].NextRunAt.Equal(upcoming[j].NextRunAt) {
			return upcoming[i].ScheduleId < upcoming[j].ScheduleId
		}
		return upcoming[i].NextRunAt.Before(upcoming[j].NextRunAt)
	})

	if len(upcoming) > maxUpcomingPosts {
		upcoming = upcoming[:maxUpcomingPosts]
	}
	if upcoming != nil {
		stats.UpcomingPosts = upcoming
	}

	return stats
}
