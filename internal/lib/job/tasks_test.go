package job

import (
	"errors"
	"testing"

	"github.com/deppfellow/app-functions/internal/model"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountCreatedTask_RoundTrip(t *testing.T) {
	evt := model.AccountCreatedEvent{UID: "u1", Email: "a@b.c", DisplayName: "Ann", PhotoURL: "http://img"}

	task, err := NewAccountCreatedTask(evt)
	require.NoError(t, err)
	assert.Equal(t, TaskAccountCreated, task.Type())

	got, err := DecodePayload[model.AccountCreatedEvent](task)
	require.NoError(t, err)
	assert.Equal(t, evt, got)
}

func TestNewNewsCreatedTask_KeepsRawTimestamp(t *testing.T) {
	task, err := NewNewsCreatedTask(model.NewsCreatedEvent{ID: "n1", Title: "t", Timestamp: 1700000000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"n1","title":"t","timestamp":1700000000}`, string(task.Payload()))
}

func TestNewWelcomeEmailTask(t *testing.T) {
	task, err := NewWelcomeEmailTask("a@b.c", "Ann")
	require.NoError(t, err)
	assert.Equal(t, TaskWelcomeEmail, task.Type())
	assert.JSONEq(t, `{"to":"a@b.c","name":"Ann"}`, string(task.Payload()))
}

func TestDecodePayload_MalformedSkipsRetry(t *testing.T) {
	_, err := DecodePayload[model.AccountCreatedEvent](asynq.NewTask(TaskAccountCreated, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
