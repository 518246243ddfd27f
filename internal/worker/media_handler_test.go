package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultEnvelopes/internal/media"
	"vaultEnvelopes/internal/tasks"
)

type fakeRelay struct {
	destroyed []string
	types     []media.ResourceType
	err       error
}

func (f *fakeRelay) Upload(context.Context, media.UploadRequest) (media.UploadResult, error) {
	return media.UploadResult{}, errors.New("not used")
}

func (f *fakeRelay) Destroy(_ context.Context, publicID string, rt media.ResourceType) error {
	if f.err != nil {
		return f.err
	}
	f.destroyed = append(f.destroyed, publicID)
	f.types = append(f.types, rt)
	return nil
}

func (f *fakeRelay) PublicIDFromURL(string) (string, bool) { return "", false }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMediaDestroyHandler_Destroys(t *testing.T) {
	relay := &fakeRelay{}
	h := NewMediaDestroyHandler(relay, discardLogger())

	task, err := tasks.NewMediaDestroyTask(tasks.MediaDestroyPayload{PublicID: "a/b", ResourceType: "image"})
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, []string{"a/b"}, relay.destroyed)
	assert.Equal(t, []media.ResourceType{media.ResourceImage}, relay.types)
}

func TestMediaDestroyHandler_BadPayloadSkipsRetry(t *testing.T) {
	h := NewMediaDestroyHandler(&fakeRelay{}, discardLogger())
	err := h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeMediaDestroy, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestMediaDestroyHandler_RelayFailureRetries(t *testing.T) {
	boom := errors.New("boom")
	h := NewMediaDestroyHandler(&fakeRelay{err: boom}, discardLogger())
	task, err := tasks.NewMediaDestroyTask(tasks.MediaDestroyPayload{PublicID: "x"})
	require.NoError(t, err)

	err = h.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type()}, nil
}

func TestQueueCleaner_Enqueues(t *testing.T) {
	q := &fakeEnqueuer{}
	cleaner := NewQueueCleaner(q, discardLogger())

	require.NoError(t, cleaner.Cleanup(context.Background(), tasks.MediaDestroyPayload{PublicID: "p"}))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, tasks.TypeMediaDestroy, q.tasks[0].Type())

	assert.Error(t, cleaner.Cleanup(context.Background(), tasks.MediaDestroyPayload{}))
}

func TestInlineCleaner(t *testing.T) {
	relay := &fakeRelay{}
	require.NoError(t, NewInlineCleaner(relay).Cleanup(context.Background(), tasks.MediaDestroyPayload{PublicID: "p", ResourceType: "video"}))
	assert.Equal(t, []media.ResourceType{media.ResourceVideo}, relay.types)
}

func TestIsFinalAsynqAttempt_OutsideWorker(t *testing.T) {
	assert.False(t, isFinalAsynqAttempt(context.Background()))
}
