package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name  string
	runs  atomic.Int32
	err   error
	panic bool
}

func (j *fakeJob) Name() string        { return j.name }
func (j *fakeJob) Description() string { return "fake " + j.name }

func (j *fakeJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.panic {
		panic("boom")
	}
	return j.err
}

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	return s
}

func TestSchedule_String(t *testing.T) {
	assert.Equal(t, "cron(0 * * * *)", Cron("0 * * * *").String())
	assert.Equal(t, "every 15m0s", Every(15*time.Minute).String())
}

func TestRegister_Validation(t *testing.T) {
	s := newScheduler(t)

	assert.ErrorIs(t, s.Register(nil, Every(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, Schedule{}), ErrInvalidSchedule)
	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, Schedule{Cron: "* * * * *", Every: time.Minute}), ErrInvalidSchedule)
	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, Cron("not a cron")), ErrInvalidSchedule)

	require.NoError(t, s.Register(&fakeJob{name: "a"}, Cron("5 0 * * *")))
	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, Every(time.Minute)), ErrJobAlreadyExists)
}

func TestRunNow(t *testing.T) {
	s := newScheduler(t)
	ok := &fakeJob{name: "ok"}
	failing := &fakeJob{name: "failing", err: errors.New("nope")}
	panicking := &fakeJob{name: "panicking", panic: true}
	for _, j := range []*fakeJob{ok, failing, panicking} {
		require.NoError(t, s.Register(j, Every(time.Hour)))
	}
	ctx := context.Background()

	res, err := s.RunNow(ctx, "ok")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int32(1), ok.runs.Load())

	res, err = s.RunNow(ctx, "failing")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.EqualError(t, res.Error, "nope")

	res, err = s.RunNow(ctx, "panicking")
	require.NoError(t, err)
	assert.ErrorIs(t, res.Error, ErrJobPanicked)

	last, found := s.LastResult("failing")
	require.True(t, found)
	assert.False(t, last.Success)

	_, err = s.RunNow(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestStartStop(t *testing.T) {
	s := newScheduler(t)
	job := &fakeJob{name: "tick"}
	require.NoError(t, s.Register(job, Every(20*time.Millisecond)))

	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(), ErrSchedulerAlreadyRunning)

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

func TestListJobs(t *testing.T) {
	s := newScheduler(t)
	require.NoError(t, s.Register(&fakeJob{name: "b"}, Every(time.Hour)))
	require.NoError(t, s.Register(&fakeJob{name: "a"}, Cron("0 3 * * *")))

	jobs := s.ListJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "cron(0 3 * * *)", jobs[0].Schedule)
	assert.Equal(t, "fake b", jobs[1].Description)
}
