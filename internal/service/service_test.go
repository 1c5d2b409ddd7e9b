package service

import (
	"context"
	"errors"
	"sync"

	"github.com/deppfellow/app-functions/internal/model"
	"github.com/deppfellow/app-functions/internal/repository"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

var testLogger = zerolog.Nop()

func strPtr(s string) *string { return &s }

// failingRepo fails every call with err.
type failingRepo struct{ err error }

func (f failingRepo) FindByUID(context.Context, string) (model.UserProfile, error) {
	return model.UserProfile{}, f.err
}

func (f failingRepo) FindByEmail(context.Context, string) (model.UserProfile, error) {
	return model.UserProfile{}, f.err
}

func (f failingRepo) Create(context.Context, model.UserProfile) error { return f.err }

func (f failingRepo) SetUID(context.Context, string, string) error { return f.err }

func (f failingRepo) UpdateFields(context.Context, string, model.ProfileUpdate) error {
	return f.err
}

var _ repository.ProfileRepository = failingRepo{}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type fakeBroadcaster struct {
	topic string
	data  any
	err   error
}

func (f *fakeBroadcaster) Publish(_ context.Context, topic string, data any) (int64, error) {
	f.topic = topic
	f.data = data
	return 1, f.err
}

var errBackend = errors.New("backend unavailable")
