package job

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/app-functions/internal/model"
	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
)

// Task types. Asynq routes on these strings.
const (
	TaskAccountCreated = "account:created"
	TaskNewsCreated    = "news:created"
	TaskWelcomeEmail   = "email:welcome"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// NewAccountCreatedTask wraps an account creation event. Triggers are never
// retried by the queue.
func NewAccountCreatedTask(evt model.AccountCreatedEvent) (*asynq.Task, error) {
	return newTask(TaskAccountCreated, evt,
		asynq.MaxRetry(0),
		asynq.Queue(QueueCritical),
		asynq.Timeout(30*time.Second),
	)
}

// NewNewsCreatedTask wraps a news creation event.
func NewNewsCreatedTask(evt model.NewsCreatedEvent) (*asynq.Task, error) {
	return newTask(TaskNewsCreated, evt,
		asynq.MaxRetry(0),
		asynq.Queue(QueueCritical),
		asynq.Timeout(30*time.Second),
	)
}

// NewWelcomeEmailTask schedules the welcome email for a newly created profile.
func NewWelcomeEmailTask(to, name string) (*asynq.Task, error) {
	return newTask(TaskWelcomeEmail, model.WelcomeEmail{To: to, Name: name},
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	)
}

func newTask(typename string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s payload", typename)
	}
	return asynq.NewTask(typename, data, opts...), nil
}

// DecodePayload unmarshals a task payload. A malformed payload is wrapped
// with asynq.SkipRetry.
func DecodePayload[T any](t *asynq.Task) (T, error) {
	var v T
	if err := json.Unmarshal(t.Payload(), &v); err != nil {
		return v, errors.Wrapf(asynq.SkipRetry, "decode %s payload: %v", t.Type(), err)
	}
	return v, nil
}
