/*
scheduler.go - Automated pay-cycle rollover

PURPOSE:
  Moves the stored pay-cycle start forward once a cycle has ended, so the
  projection always starts with the cycle containing today.

DESIGN:
  - Runs on a cron spec (default: 06:00 local time)
  - Delegates to a Roller; the planner service implements it
  - A rollover that finds nothing to move is logged at debug level

USAGE:
  s := NewRolloverScheduler(plannerService, "0 6 * * *", log)
  if err := s.Start(); err != nil { ... }
  // ... later
  s.Stop()

SEE ALSO:
  - handlers.go: TriggerRollover endpoint (manual rollover)
  - planner/service.go: Rollover
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

// DefaultRolloverSpec runs at six in the morning.
const DefaultRolloverSpec = "0 6 * * *"

// Roller advances the pay-cycle start.
type Roller interface {
	Rollover(ctx context.Context) (planner.PayCycle, bool, error)
}

// RolloverScheduler runs pay-cycle rollover on a cron schedule.
type RolloverScheduler struct {
	Roller  Roller
	Spec    string
	Timeout time.Duration
	Log     logrus.FieldLogger

	cron    *cron.Cron
	entry   cron.EntryID
	mu      sync.Mutex
	running bool
}

// NewRolloverScheduler creates a new scheduler. An empty spec uses
// DefaultRolloverSpec.
func NewRolloverScheduler(roller Roller, spec string, log logrus.FieldLogger) *RolloverScheduler {
	if spec == "" {
		spec = DefaultRolloverSpec
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RolloverScheduler{
		Roller:  roller,
		Spec:    spec,
		Timeout: time.Minute,
		Log:     log,
		cron:    cron.New(cron.WithLocation(time.Local)),
	}
}

// Start registers the job and starts the cron engine. It also runs one
// rollover immediately. A stopped scheduler can be started again.
func (s *RolloverScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// The job stays registered across Stop, so a restart must not add it again.
	if s.entry == 0 {
		id, err := s.cron.AddFunc(s.Spec, func() {
			s.Log.Debug("rollover job triggered")
			s.runWithTimeout()
		})
		if err != nil {
			return fmt.Errorf("failed to add rollover job %q: %w", s.Spec, err)
		}
		s.entry = id
	}

	s.runWithTimeout()
	s.cron.Start()
	s.running = true
	s.Log.WithField("spec", s.Spec).Info("rollover scheduler started")
	return nil
}

// Stop stops the cron engine and waits for a running job to finish.
func (s *RolloverScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.Log.Info("rollover scheduler stopped")
}

// RunOnce performs a single rollover and logs the outcome.
func (s *RolloverScheduler) RunOnce(ctx context.Context) error {
	pc, moved, err := s.Roller.Rollover(ctx)
	if err != nil {
		s.Log.WithError(err).Error("pay cycle rollover failed")
		return err
	}
	if !moved {
		s.Log.Debug("pay cycle already current")
		return nil
	}
	s.Log.WithFields(logrus.Fields{
		"start":     pc.Start.String(),
		"frequency": pc.Frequency,
	}).Info("pay cycle rolled over")
	return nil
}

func (s *RolloverScheduler) runWithTimeout() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	_ = s.RunOnce(ctx)
}
