package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/justsurfingit/job-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls int
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls++
	return r.err
}

type recordingPurger struct {
	retention time.Duration
}

func (p *recordingPurger) PurgeProcessed(_ context.Context, retention time.Duration) (int64, error) {
	p.retention = retention
	return 3, nil
}

func TestSchedulerRegistersJobs(t *testing.T) {
	s, err := New(&countingRefresher{}, &recordingPurger{}, time.Hour, testutil.Logger())
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	s.Start()
	s.Stop()
}

func TestRunNow(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("db down")}
	purger := &recordingPurger{}
	s, err := New(refresher, purger, 48*time.Hour, testutil.Logger())
	require.NoError(t, err)

	s.RunNow()
	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, 48*time.Hour, purger.retention)
}
