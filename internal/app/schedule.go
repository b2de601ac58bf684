// Package app assembles the pieces main wires together.
package app

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/msomdec/student-roster/internal/config"
	"github.com/msomdec/student-roster/internal/domain"
	"github.com/msomdec/student-roster/internal/scheduler"
	"github.com/msomdec/student-roster/internal/service"
)

// DefaultScheduleName labels the expiry entry used when no schedule file
// is configured.
const DefaultScheduleName = "delete-student-objects-every-10-seconds"

// RetentionInterval is how often task results are pruned when the
// schedule file does not say otherwise.
const RetentionInterval = time.Hour

// ErrExpiryNotScheduled is returned when a schedule never runs the expiry
// task.
var ErrExpiryNotScheduled = errors.New("schedule does not run " + service.ExpiryTaskName)

// NewScheduler builds the scheduler from cfg.ScheduleFile, or from the
// default expiry entry at cfg.ExpiryInterval when no file is given. Result
// pruning is added hourly unless the schedule already runs it.
func NewScheduler(cfg *config.Config, students domain.StudentRepository, results domain.TaskResultRepository, opts ...scheduler.Option) (*scheduler.Scheduler, error) {
	specs := []scheduler.ScheduleSpec{{
		Name:  DefaultScheduleName,
		Task:  service.ExpiryTaskName,
		Every: scheduler.Interval(cfg.ExpiryInterval),
	}}
	if cfg.ScheduleFile != "" {
		loaded, err := scheduler.LoadSchedule(cfg.ScheduleFile)
		if err != nil {
			return nil, err
		}
		specs = loaded
	}

	if !schedules(specs, service.ExpiryTaskName) {
		return nil, fmt.Errorf("schedule file %s: %w", cfg.ScheduleFile, ErrExpiryNotScheduled)
	}

	sched := scheduler.New(results, opts...)
	expiry := service.NewExpiryTask(students)
	retention := service.NewRetentionTask(results, cfg.ResultRetention)
	if err := sched.Apply(specs, expiry, retention); err != nil {
		return nil, err
	}

	if !schedules(specs, service.RetentionTaskName) {
		if err := sched.Register(retention, RetentionInterval); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

func schedules(specs []scheduler.ScheduleSpec, task string) bool {
	return slices.ContainsFunc(specs, func(s scheduler.ScheduleSpec) bool { return s.Task == task })
}
