// Package scheduler runs the forecasting pipeline on a cron schedule.
package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// Job is a runnable pipeline pass.
type Job interface {
	Run(ctx context.Context) error
}

// Scheduler triggers pipeline runs from a cron spec. A run still in flight
// when the next trigger fires causes the new trigger to be skipped: the
// pipeline is a full retrain, so overlapping runs would only duplicate
// work.
type Scheduler struct {
	cron    *cron.Cron
	job     Job
	ctx     context.Context
	running atomic.Bool
	log     *slog.Logger
}

// New creates a Scheduler that runs job according to spec.
func New(ctx context.Context, spec string, job Job) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		job:  job,
		ctx:  ctx,
		log:  slog.Default().With("component", "scheduler"),
	}
	if _, err := s.cron.AddFunc(spec, s.trigger); err != nil {
		return nil, err
	}
	return s, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) trigger() {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("previous run still in progress, skipping trigger")
		return
	}
	defer s.running.Store(false)

	if err := s.job.Run(s.ctx); err != nil {
		s.log.Error("scheduled run failed", "err", err)
	}
}
