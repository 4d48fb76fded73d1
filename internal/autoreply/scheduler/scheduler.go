package scheduler

import (
	"context"
	"log"
	"time"

	"autoreply-backend/internal/autoreply/usecase"
)

// Scheduler runs the auto-reply job on a fixed interval for deployments
// without an external cron. The run lease still guards against overlap with
// externally triggered runs.
type Scheduler struct {
	runner   usecase.JobRunner
	interval time.Duration
	stopChan chan struct{}
}

func NewScheduler(runner usecase.JobRunner, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	if s.interval <= 0 {
		log.Println("[Scheduler] No interval configured, relying on external trigger")
		return
	}

	log.Printf("[Scheduler] Starting auto-reply scheduler (interval: %s)", s.interval)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopChan:
				log.Println("[Scheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	report, err := s.runner.Run(ctx)
	if err != nil {
		log.Printf("[Scheduler] Run failed: %v", err)
		return
	}
	if report.Skipped != "" {
		return
	}
	log.Printf("[Scheduler] Run completed with %d result entries", len(report.Processed))
}
