package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionSweeper evicts review sessions that have been idle too long
type SessionSweeper interface {
	SweepSessions(idle time.Duration) int
}

// Recalculator recomputes lateness for records edited through review sessions
type Recalculator interface {
	RecalculateEdited(ctx context.Context, limit int) (int, error)
}

type ReviewJobsConfig struct {
	SessionIdleTimeout time.Duration
	SweepInterval      time.Duration
	RecalcInterval     time.Duration
	RecalcBatchSize    int
}

type ReviewJobs struct {
	sweeper      SessionSweeper
	recalculator Recalculator
	config       ReviewJobsConfig
}

func NewReviewJobs(sweeper SessionSweeper, recalculator Recalculator, config ReviewJobsConfig) *ReviewJobs {
	return &ReviewJobs{
		sweeper:      sweeper,
		recalculator: recalculator,
		config:       config,
	}
}

func (j *ReviewJobs) RegisterJobs(scheduler *Scheduler) error {
	if err := scheduler.AddJob("sweep_review_sessions", j.config.SweepInterval, j.SweepIdleSessions); err != nil {
		return fmt.Errorf("register sweep_review_sessions: %w", err)
	}
	if err := scheduler.AddJob("recalculate_edited_attendances", j.config.RecalcInterval, j.RecalculateEditedAttendances); err != nil {
		return fmt.Errorf("register recalculate_edited_attendances: %w", err)
	}
	return nil
}

func (j *ReviewJobs) SweepIdleSessions(ctx context.Context) error {
	removed := j.sweeper.SweepSessions(j.config.SessionIdleTimeout)
	if removed > 0 {
		slog.Info("Cron: Swept idle review sessions", "count", removed, "idle_timeout", j.config.SessionIdleTimeout)
	}
	return nil
}

func (j *ReviewJobs) RecalculateEditedAttendances(ctx context.Context) error {
	updated, err := j.recalculator.RecalculateEdited(ctx, j.config.RecalcBatchSize)
	if err != nil {
		return fmt.Errorf("failed to recalculate edited attendances: %w", err)
	}
	if updated > 0 {
		slog.Info("Cron: Recalculated edited attendances", "count", updated)
	}
	return nil
}
