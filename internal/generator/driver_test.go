package generator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/swapstudio/swapstudio-api/internal/job"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastPolicy keeps driver tests from sleeping on real intervals.
func fastPolicy(maxAttempts int) PollPolicy {
	return PollPolicy{Interval: time.Millisecond, MaxAttempts: maxAttempts}
}

// mockAdapter is a testify mock over the Adapter interface.
type mockAdapter struct {
	mock.Mock
}

func (m *mockAdapter) Provider() job.Provider {
	args := m.Called()
	return args.Get(0).(job.Provider)
}

func (m *mockAdapter) Policy() PollPolicy {
	args := m.Called()
	return args.Get(0).(PollPolicy)
}

func (m *mockAdapter) Submit(ctx context.Context, req Request, report ProgressFunc) (Task, error) {
	args := m.Called(ctx, req, report)
	return args.Get(0).(Task), args.Error(1)
}

func (m *mockAdapter) PollOnce(ctx context.Context, task *Task, attempt int) (PollResult, error) {
	args := m.Called(ctx, task, attempt)
	return args.Get(0).(PollResult), args.Error(1)
}

// mockArchiver is a testify mock over the Archiver interface.
type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) Archive(ctx context.Context, jobID, outputURL string) (string, error) {
	args := m.Called(ctx, jobID, outputURL)
	return args.String(0), args.Error(1)
}

func newSwapJob() *job.Job {
	return job.New(job.KindSwap, job.ModeCharacterSwap, job.ProviderFal)
}

func TestDriver_Run_Success(t *testing.T) {
	ctx := context.Background()
	j := newSwapJob()
	adapter := &mockAdapter{}
	driver := NewDriver(discardLogger())

	adapter.On("Provider").Return(job.ProviderFal)
	adapter.On("Policy").Return(fastPolicy(10))
	adapter.On("Submit", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			report := args.Get(2).(ProgressFunc)
			report(5)
			report(50)
		}).
		Return(Task{ID: "task-1"}, nil)
	adapter.On("PollOnce", ctx, mock.Anything, 1).
		Return(PollResult{Status: StatusRunning}, nil).Once()
	adapter.On("PollOnce", ctx, mock.Anything, 2).
		Return(PollResult{Status: StatusSucceeded, OutputURL: "https://cdn.example.com/out.mp4"}, nil).Once()

	driver.Run(ctx, j, adapter, Request{})

	snapshot := j.Clone()
	assert.Equal(t, job.StatusSucceeded, snapshot.Status)
	assert.Equal(t, 100, snapshot.Progress)
	assert.Equal(t, "task-1", snapshot.TaskID)
	assert.Equal(t, "https://cdn.example.com/out.mp4", snapshot.OutputURL)
	assert.Empty(t, snapshot.Error)
	adapter.AssertExpectations(t)
}

func TestDriver_Run_SubmitError(t *testing.T) {
	ctx := context.Background()
	j := newSwapJob()
	adapter := &mockAdapter{}
	driver := NewDriver(discardLogger())

	adapter.On("Provider").Return(job.ProviderFal)
	adapter.On("Submit", ctx, mock.Anything, mock.Anything).
		Return(Task{}, errors.New("upload rejected"))

	driver.Run(ctx, j, adapter, Request{})

	snapshot := j.Clone()
	assert.Equal(t, job.StatusFailed, snapshot.Status)
	assert.Contains(t, snapshot.Error, "upload rejected")
	adapter.AssertExpectations(t)
}

func TestDriver_Run_RemoteFailure(t *testing.T) {
	ctx := context.Background()
	j := newSwapJob()
	adapter := &mockAdapter{}
	driver := NewDriver(discardLogger())

	adapter.On("Provider").Return(job.ProviderFal)
	adapter.On("Policy").Return(fastPolicy(10))
	adapter.On("Submit", ctx, mock.Anything, mock.Anything).Return(Task{ID: "task-1"}, nil)
	adapter.On("PollOnce", ctx, mock.Anything, 1).
		Return(PollResult{Status: StatusFailed, Error: "content policy violation"}, nil).Once()

	driver.Run(ctx, j, adapter, Request{})

	snapshot := j.Clone()
	assert.Equal(t, job.StatusFailed, snapshot.Status)
	assert.Equal(t, "content policy violation", snapshot.Error)
}

func TestDriver_Run_SuccessWithoutOutputFails(t *testing.T) {
	ctx := context.Background()
	j := newSwapJob()
	adapter := &mockAdapter{}
	driver := NewDriver(discardLogger())

	adapter.On("Provider").Return(job.ProviderFal)
	adapter.On("Policy").Return(fastPolicy(10))
	adapter.On("Submit", ctx, mock.Anything, mock.Anything).Return(Task{ID: "task-1"}, nil)
	adapter.On("PollOnce", ctx, mock.Anything, 1).
		Return(PollResult{Status: StatusSucceeded}, nil).Once()

	driver.Run(ctx, j, adapter, Request{})

	snapshot := j.Clone()
	assert.Equal(t, job.StatusFailed, snapshot.Status)
	assert.Contains(t, snapshot.Error, "no output video")
}

func TestDriver_Run_TimeoutAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	j := newSwapJob()
	adapter := &mockAdapter{}
	driver := NewDriver(discardLogger())

	adapter.On("Provider").Return(job.ProviderFal)
	adapter.On("Policy").Return(fastPolicy(3))
	adapter.On("Submit", ctx, mock.Anything, mock.Anything).Return(Task{ID: "task-1"}, nil)
	adapter.On("PollOnce", ctx, mock.Anything, mock.Anything).
		Return(PollResult{Status: StatusQueued}, nil).Times(3)

	driver.Run(ctx, j, adapter, Request{})

	snapshot := j.Clone()
	assert.Equal(t, job.StatusFailed, snapshot.Status)
	assert.Contains(t, snapshot.Error, "timed out")
	adapter.AssertExpectations(t)
}

func TestDriver_Run_PollErrorsCountTowardCeiling(t *testing.T) {
	ctx := context.Background()
	j := newSwapJob()
	adapter := &mockAdapter{}
	driver := NewDriver(discardLogger())

	adapter.On("Provider").Return(job.ProviderFal)
	adapter.On("Policy").Return(fastPolicy(2))
	adapter.On("Submit", ctx, mock.Anything, mock.Anything).Return(Task{ID: "task-1"}, nil)
	adapter.On("PollOnce", ctx, mock.Anything, mock.Anything).
		Return(PollResult{}, errors.New("connection reset")).Times(2)

	driver.Run(ctx, j, adapter, Request{})

	snapshot := j.Clone()
	assert.Equal(t, job.StatusFailed, snapshot.Status)
	assert.Contains(t, snapshot.Error, "timed out")
	adapter.AssertExpectations(t)
}

func TestDriver_Run_CanceledJobStaysCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	j := newSwapJob()
	adapter := &mockAdapter{}
	driver := NewDriver(discardLogger())

	adapter.On("Provider").Return(job.ProviderFal)
	adapter.On("Policy").Return(fastPolicy(100))
	adapter.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(Task{ID: "task-1"}, nil)
	adapter.On("PollOnce", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, j.Cancel())
			cancel()
		}).
		Return(PollResult{Status: StatusRunning}, nil).Maybe()

	driver.Run(ctx, j, adapter, Request{})

	assert.Equal(t, job.StatusCanceled, j.GetStatus())
}

func TestDriver_Run_CanceledBeforeStartNeverSubmits(t *testing.T) {
	ctx := context.Background()
	j := newSwapJob()
	require.NoError(t, j.Cancel())

	adapter := &mockAdapter{}
	driver := NewDriver(discardLogger())

	driver.Run(ctx, j, adapter, Request{})

	assert.Equal(t, job.StatusCanceled, j.GetStatus())
	adapter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestDriver_Run_ArchivesOutput(t *testing.T) {
	ctx := context.Background()
	j := newSwapJob()
	adapter := &mockAdapter{}
	archiver := &mockArchiver{}
	driver := NewDriver(discardLogger(), WithArchiver(archiver))

	adapter.On("Provider").Return(job.ProviderFal)
	adapter.On("Policy").Return(fastPolicy(10))
	adapter.On("Submit", ctx, mock.Anything, mock.Anything).Return(Task{ID: "task-1"}, nil)
	adapter.On("PollOnce", ctx, mock.Anything, 1).
		Return(PollResult{Status: StatusSucceeded, OutputURL: "https://provider.example.com/out.mp4"}, nil).Once()
	archiver.On("Archive", ctx, j.ID, "https://provider.example.com/out.mp4").
		Return("https://bucket.s3.amazonaws.com/outputs/x.mp4", nil)

	driver.Run(ctx, j, adapter, Request{})

	snapshot := j.Clone()
	assert.Equal(t, job.StatusSucceeded, snapshot.Status)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/outputs/x.mp4", snapshot.OutputURL)
	archiver.AssertExpectations(t)
}

func TestDriver_Run_ArchiveFailureKeepsProviderURL(t *testing.T) {
	ctx := context.Background()
	j := newSwapJob()
	adapter := &mockAdapter{}
	archiver := &mockArchiver{}
	driver := NewDriver(discardLogger(), WithArchiver(archiver))

	adapter.On("Provider").Return(job.ProviderFal)
	adapter.On("Policy").Return(fastPolicy(10))
	adapter.On("Submit", ctx, mock.Anything, mock.Anything).Return(Task{ID: "task-1"}, nil)
	adapter.On("PollOnce", ctx, mock.Anything, 1).
		Return(PollResult{Status: StatusSucceeded, OutputURL: "https://provider.example.com/out.mp4"}, nil).Once()
	archiver.On("Archive", ctx, j.ID, mock.Anything).
		Return("", errors.New("bucket unavailable"))

	driver.Run(ctx, j, adapter, Request{})

	snapshot := j.Clone()
	assert.Equal(t, job.StatusSucceeded, snapshot.Status)
	assert.Equal(t, "https://provider.example.com/out.mp4", snapshot.OutputURL)
}

func TestDriver_Run_ProgressBuckets(t *testing.T) {
	ctx := context.Background()
	j := newSwapJob()
	adapter := &mockAdapter{}
	driver := NewDriver(discardLogger())

	adapter.On("Provider").Return(job.ProviderFal)
	adapter.On("Policy").Return(fastPolicy(4))
	adapter.On("Submit", ctx, mock.Anything, mock.Anything).Return(Task{ID: "task-1"}, nil)
	adapter.On("PollOnce", ctx, mock.Anything, 1).
		Return(PollResult{Status: StatusQueued}, nil).Once()

	progressAfterQueued := 0
	adapter.On("PollOnce", ctx, mock.Anything, 2).
		Run(func(args mock.Arguments) {
			progressAfterQueued = j.GetProgress()
		}).
		Return(PollResult{Status: StatusRunning}, nil).Once()

	progressAfterRunning := 0
	adapter.On("PollOnce", ctx, mock.Anything, 3).
		Run(func(args mock.Arguments) {
			progressAfterRunning = j.GetProgress()
		}).
		Return(PollResult{Status: StatusSucceeded, OutputURL: "https://cdn.example.com/out.mp4"}, nil).Once()

	driver.Run(ctx, j, adapter, Request{})

	assert.Equal(t, 50, progressAfterQueued, "queued bucket starts at 50")
	assert.Equal(t, 60, progressAfterRunning, "running bucket starts at 60")
	assert.Equal(t, 100, j.GetProgress())
}
