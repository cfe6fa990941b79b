package pkg

import (
	"time"

	"github.com/pkg/errors"
	cronlib "github.com/robfig/cron/v3"
)

// Standard 5-field cron, no seconds and no descriptors. Every
// expression we feed it comes out of ScheduleConfig.CronExpression.
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow,
)

// NextRun computes the first activation of expr strictly after `from`,
// in UTC. A malformed expression is a configuration error surfaced to
// the caller, never retried.
func NextRun(expr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, errors.WithMessagef(err, "invalid cron expression %q", expr)
	}

	next := schedule.Next(from.UTC())
	if next.IsZero() {
		return time.Time{}, errors.Errorf("cron expression %q has no future activation", expr)
	}

	return next.UTC(), nil
}
