// Package job provides background task processing using Asynq.
//
// Asynq is a Redis-backed task queue:
//   - Triggers are enqueued (producer) with asynq.Client.
//   - A server runs workers that process them (consumer) with asynq.Server.
package job

import (
	"context"

	"github.com/deppfellow/app-functions/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Enqueuer is the producer side of the queue. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	logger *zerolog.Logger
}

// NewJobService creates a JobService backed by the configured Redis.
// Triggers run on the critical queue; emails on default.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Triggers.Concurrency,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		Logger:   newAsynqLogger(logger),
		LogLevel: asynq.WarnLevel,
	})

	return &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		logger: logger,
	}
}

// Start begins processing tasks routed by mux. It returns once the
// workers are running.
func (j *JobService) Start(mux *asynq.ServeMux) error {
	j.logger.Info().Msg("starting background job server")
	return j.server.Start(mux)
}

// Stop waits for in-flight tasks, then closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
