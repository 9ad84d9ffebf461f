// Package jobs schedules the background maintenance work.
package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled task
type Job struct {
	Name     string
	Schedule string
	Run      func()
}

// Scheduler wraps a cron runner that recovers panics and logs every job run
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	log = log.Named("jobs")
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cronLogger{log}))),
		log:  log,
	}
}

// Add registers jobs; an invalid schedule fails the whole call
func (s *Scheduler) Add(jobs ...Job) error {
	for _, j := range jobs {
		j := j
		if _, err := s.cron.AddFunc(j.Schedule, j.Run); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", j.Name, j.Schedule, err)
		}
		s.log.Info("job scheduled", zap.String("job", j.Name), zap.String("schedule", j.Schedule))
	}
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Len reports how many jobs are registered
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

// cronLogger adapts zap to cron.Logger
type cronLogger struct{ log *zap.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
