package api

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

type fakeRoller struct {
	calls atomic.Int32
	moved bool
	err   error
}

func (f *fakeRoller) Rollover(context.Context) (planner.PayCycle, bool, error) {
	f.calls.Add(1)
	pc := planner.PayCycle{Start: calendar.MustParseDate("2024-02-12"), Frequency: planner.PayFortnightly}
	return pc, f.moved, f.err
}

func TestRolloverScheduler_RunOnceLogs(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	tests := []struct {
		name      string
		roller    *fakeRoller
		wantErr   bool
		wantLevel logrus.Level
	}{
		{"moved", &fakeRoller{moved: true}, false, logrus.InfoLevel},
		{"already current", &fakeRoller{}, false, logrus.DebugLevel},
		{"store failure", &fakeRoller{err: errors.New("disk full")}, true, logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()
			s := NewRolloverScheduler(tt.roller, "", log)

			err := s.RunOnce(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, tt.wantLevel, hook.LastEntry().Level)
		})
	}
}

func TestRolloverScheduler_StartRunsImmediately(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	roller := &fakeRoller{moved: true}

	// GIVEN: A scheduler on the default spec
	s := NewRolloverScheduler(roller, "", log)
	assert.Equal(t, DefaultRolloverSpec, s.Spec)

	// WHEN: Starting it twice and stopping
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	s.Stop()
	s.Stop()

	// THEN: One immediate rollover ran
	assert.Equal(t, int32(1), roller.calls.Load())
}

func TestRolloverScheduler_RestartKeepsOneJob(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	roller := &fakeRoller{}
	s := NewRolloverScheduler(roller, "", log)

	// GIVEN: A scheduler that was started and stopped
	require.NoError(t, s.Start())
	s.Stop()

	// WHEN: Starting it again
	require.NoError(t, s.Start())
	defer s.Stop()

	// THEN: The job is registered once and each start ran one rollover
	assert.Len(t, s.cron.Entries(), 1)
	assert.Equal(t, int32(2), roller.calls.Load())
}

func TestRolloverScheduler_BadSpec(t *testing.T) {
	s := NewRolloverScheduler(&fakeRoller{}, "every tuesday", nil)
	assert.Error(t, s.Start())
}
