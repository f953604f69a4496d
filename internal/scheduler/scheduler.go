package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the capture job on a cron schedule.
type Scheduler struct {
	Cron *cron.Cron
	run  func()
}

// NewScheduler creates a new Scheduler around the given run function.
func NewScheduler(run func()) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		run:  run,
	}
}

// Register adds the capture task under the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("register capture task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the capture task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.run()
}
