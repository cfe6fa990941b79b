package pkg

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"postforge/pkg/models"
)

func TestComputeScheduleStatsEmpty(t *testing.T) {
	stats := ComputeScheduleStats(nil, nil)

	require.Equal(t, 0, stats.TotalSchedules)
	require.Equal(t, 0, stats.ActiveSchedules)
	require.Equal(t, 0.0, stats.SuccessRate)
	require.NotNil(t, stats.UpcomingPosts)
	require.Empty(t, stats.UpcomingPosts)
}

func TestComputeScheduleStatsSuccessRate(t *testing.T) {
	tests := []struct {
		name       string
		successful int
		failed     int
		expected   float64
	}{
		{"no runs yet", 0, 0, 0.0},
		{"all successful", 10, 0, 100.0},
		{"all failed", 0, 4, 0.0},
		{"two thirds rounds to two decimals", 2, 1, 66.67},
		{"one third rounds to two decimals", 1, 2, 33.33},
		{"half", 3, 3, 50.0},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			schedules := []*models.ScheduleConfig{{
				Id:                  "s1",
				TotalPostsGenerated: test.successful + test.failed,
				SuccessfulPosts:     test.successful,
				FailedPosts:         test.failed,
			}}
			stats := ComputeScheduleStats(schedules, nil)
			require.Equal(t, test.expected, stats.SuccessRate)
		})
	}
}

func TestComputeScheduleStatsAggregation(t *testing.T) {
	nextRun := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	schedules := []*models.ScheduleConfig{
		{
			Id:                  "s1",
			AgentId:             "a1",
			Interval:            models.IntervalDaily,
			IsActive:            true,
			NextRunAt:           &nextRun,
			TotalPostsGenerated: 4,
			SuccessfulPosts:     3,
			FailedPosts:         1,
		},
		{
			// Inactive schedules still count into the totals but never
			// contribute an upcoming entry
			Id:                  "s2",
			AgentId:             "a2",
			Interval:            models.IntervalWeekly,
			IsActive:            false,
			TotalPostsGenerated: 2,
			SuccessfulPosts:     1,
			FailedPosts:         1,
		},
	}

	stats := ComputeScheduleStats(schedules, map[string]string{"a1": "Writer One"})

	require.Equal(t, 2, stats.TotalSchedules)
	require.Equal(t, 1, stats.ActiveSchedules)
	require.Equal(t, 6, stats.TotalPostsGenerated)
	require.Equal(t, 4, stats.SuccessfulPosts)
	require.Equal(t, 2, stats.FailedPosts)
	require.Equal(t, 66.67, stats.SuccessRate)

	require.Len(t, stats.UpcomingPosts, 1)
	require.Equal(t, "s1", stats.UpcomingPosts[0].ScheduleId)
	require.Equal(t, "Writer One", stats.UpcomingPosts[0].AgentName)
	require.Equal(t, "Daily", stats.UpcomingPosts[0].Interval)
	require.Equal(t, nextRun, stats.UpcomingPosts[0].NextRunAt)
}

func TestComputeScheduleStatsUpcomingOrderAndCap(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	var schedules []*models.ScheduleConfig
	for i := 7; i >= 1; i-- {
		runAt := base.Add(time.Duration(i) * time.Hour)
		schedules = append(schedules, &models.ScheduleConfig{
			Id:        fmt.Sprintf("s%d", i),
			AgentId:   "a1",
			Interval:  models.IntervalDaily,
			IsActive:  true,
			NextRunAt: &runAt,
		})
	}

	stats := ComputeScheduleStats(schedules, nil)

	require.Len(t, stats.UpcomingPosts, 5)
	for i, upcoming := range stats.UpcomingPosts {
		require.Equal(t, fmt.Sprintf("s%d", i+1), upcoming.ScheduleId)
		if i > 0 {
			require.False(t, upcoming.NextRunAt.Before(stats.UpcomingPosts[i-1].NextRunAt))
		}
	}
}

func TestComputeScheduleStatsUpcomingTieBreak(t *testing.T) {
	runAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	schedules := []*models.ScheduleConfig{
		{Id: "s-b", AgentId: "a1", Interval: models.IntervalDaily, IsActive: true, NextRunAt: &runAt},
		{Id: "s-a", AgentId: "a1", Interval: models.IntervalDaily, IsActive: true, NextRunAt: &runAt},
	}

	stats := ComputeScheduleStats(schedules, nil)

	require.Len(t, stats.UpcomingPosts, 2)
	require.Equal(t, "s-a", stats.UpcomingPosts[0].ScheduleId)
	require.Equal(t, "s-b", stats.UpcomingPosts[1].ScheduleId)
}

func TestComputeScheduleStatsUnknownAgent(t *testing.T) {
	runAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	schedules := []*models.ScheduleConfig{
		{Id: "s1", AgentId: "gone", Interval: models.IntervalDaily, IsActive: true, NextRunAt: &runAt},
	}

	stats := ComputeScheduleStats(schedules, map[string]string{"other": "Other"})

	require.Len(t, stats.UpcomingPosts, 1)
	require.Equal(t, "Unknown", stats.UpcomingPosts[0].AgentName)
}
