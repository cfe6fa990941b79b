package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

const tableNameScheduleConfigs = "schedule_configs"

type ScheduleInterval string

const (
	IntervalDaily      ScheduleInterval = "daily"
	IntervalEvery2Days ScheduleInterval = "every_2_days"
	IntervalWeekly     ScheduleInterval = "weekly"
	IntervalBiweekly   ScheduleInterval = "biweekly"
	IntervalMonthly    ScheduleInterval = "monthly"
)

func (i ScheduleInterval) IsValid() bool {
	switch i {
	case IntervalDaily, IntervalEvery2Days, IntervalWeekly, IntervalBiweekly, IntervalMonthly:
		return true
	}
	return false
}

// Display returns the human-readable form used in stats responses.
func (i ScheduleInterval) Display() string {
	switch i {
	case IntervalDaily:
		return "Daily"
	case IntervalEvery2Days:
		return "Every 2 days"
	case IntervalWeekly:
		return "Weekly"
	case IntervalBiweekly:
		return "Every 2 weeks"
	case IntervalMonthly:
		return "Monthly"
	}
	return string(i)
}

type PostLength string

const (
	PostLengthShort  PostLength = "short"
	PostLengthMedium PostLength = "medium"
	PostLengthLong   PostLength = "long"
)

func (l PostLength) IsValid() bool {
	switch l {
	case PostLengthShort, PostLengthMedium, PostLengthLong:
		return true
	}
	return false
}

// ScheduleConfig holds the per-agent auto-publish configuration.
// Each agent owns at most one schedule.
type ScheduleConfig struct {
	bun.BaseModel `bun:"schedule_configs"`

	Id string `bun:",pk" json:"id"`

	AgentId string `bun:"agent_id,nullzero,notnull,unique" json:"agent_id"`

	Interval    ScheduleInterval `bun:",nullzero,notnull" json:"interval"`
	PublishHour int              `bun:"publish_hour,notnull,default:9" json:"publish_hour"`
	Timezone    string           `bun:",nullzero,notnull,default:'UTC'" json:"timezone"`

	AutoPublish bool `bun:"auto_publish" json:"auto_publish"`

	TargetKeywords  []string `bun:"target_keywords,type:json,nullzero" json:"target_keywords"`
	ExcludeKeywords []string `bun:"exclude_keywords,type:json,nullzero" json:"exclude_keywords"`

	PostLength PostLength `bun:"post_length,nullzero,notnull,default:'medium'" json:"post_length"`

	IsActive bool `bun:"is_active" json:"is_active"`

	// NextRunAt is null exactly while the schedule is inactive
	LastRunAt *time.Time `bun:"last_run_at" json:"last_run_at"`
	NextRunAt *time.Time `bun:"next_run_at" json:"next_run_at"`

	TotalPostsGenerated int `bun:"total_posts_generated,notnull,default:0" json:"total_posts_generated"`
	SuccessfulPosts     int `bun:"successful_posts,notnull,default:0" json:"successful_posts"`
	FailedPosts         int `bun:"failed_posts,notnull,default:0" json:"failed_posts"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// CronExpression maps (interval, publish_hour) to a standard 5-field
// cron expression. Weekly runs fire on Monday, biweekly on the 1st
// and 15th, monthly on the 1st.
func (s *ScheduleConfig) CronExpression() string {
	switch s.Interval {
	case IntervalDaily:
		return fmt.Sprintf("0 %d * * *", s.PublishHour)
	case IntervalEvery2Days:
		return fmt.Sprintf("0 %d */2 * *", s.PublishHour)
	case IntervalWeekly:
		return fmt.Sprintf("0 %d * * 1", s.PublishHour)
	case IntervalBiweekly:
		return fmt.Sprintf("0 %d 1,15 * *", s.PublishHour)
	case IntervalMonthly:
		return fmt.Sprintf("0 %d 1 * *", s.PublishHour)
	}
	return fmt.Sprintf("0 %d * * *", s.PublishHour)
}
