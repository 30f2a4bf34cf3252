// Package scheduler is the optional daemon mode: instead of an external
// cron firing the two batch jobs, one long-lived process drives them.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/marina/gardenbot/internal/job"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron         *cron.Cron
	deps         job.Deps
	pollInterval time.Duration
	stopPoll     chan struct{}
}

func New(deps job.Deps, pollInterval time.Duration) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		deps:         deps,
		pollInterval: pollInterval,
		stopPoll:     make(chan struct{}),
	}
}

// Start registers the send job on the cron expression and begins polling
// for acknowledgements on a fixed interval.
func (s *Scheduler) Start(sendCron string) error {
	if _, err := s.cron.AddFunc(sendCron, s.runSend); err != nil {
		return err
	}
	s.cron.Start()

	go func() {
		t := time.NewTicker(s.pollInterval)
		defer t.Stop()
		for {
			select {
			case <-s.stopPoll:
				return
			case <-t.C:
				s.runPoll()
			}
		}
	}()

	log.Printf("scheduler: started (send %q, poll every %s)", sendCron, s.pollInterval)
	return nil
}

func (s *Scheduler) Stop() {
	close(s.stopPoll)
	s.cron.Stop()
}

func (s *Scheduler) runSend() {
	if err := job.Send(context.Background(), s.deps); err != nil {
		log.Printf("scheduler[send]: %v", err)
		return
	}
	log.Printf("scheduler[send]: completed")
}

func (s *Scheduler) runPoll() {
	if err := job.Poll(context.Background(), s.deps); err != nil {
		log.Printf("scheduler[poll]: %v", err)
	}
}
