// Package trigger binds background events to the services.
//
// Each event-triggered function is an asynq task type. The registry is
// static: every entry names the function it belongs to, so a process
// deployed as a single function only consumes its own tasks.
package trigger

import (
	"context"

	"github.com/deppfellow/app-functions/internal/config"
	"github.com/deppfellow/app-functions/internal/lib/job"
	loggerPkg "github.com/deppfellow/app-functions/internal/logger"
	"github.com/deppfellow/app-functions/internal/service"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Entry routes one task type to its handler.
type Entry struct {
	Name     string
	TaskType string
	Handler  asynq.HandlerFunc
}

type Registry struct {
	entries       []Entry
	logger        *zerolog.Logger
	loggerService *loggerPkg.LoggerService
}

// NewRegistry lists every event-triggered function. The welcome email is
// registered only when a sender is configured.
func NewRegistry(services *service.Services, logger *zerolog.Logger, ls *loggerPkg.LoggerService) *Registry {
	r := &Registry{logger: logger, loggerService: ls}

	r.entries = []Entry{
		{
			Name:     config.FunctionAccountSync,
			TaskType: job.TaskAccountCreated,
			Handler:  r.wrap(config.FunctionAccountSync, accountCreated(services.AccountSync)),
		},
		{
			Name:     config.FunctionNewsNotify,
			TaskType: job.TaskNewsCreated,
			Handler:  r.wrap(config.FunctionNewsNotify, newsCreated(services.NewsNotify)),
		},
	}

	if services.Email != nil {
		r.entries = append(r.entries, Entry{
			Name:     config.FunctionWelcomeEmail,
			TaskType: job.TaskWelcomeEmail,
			Handler:  r.wrap(config.FunctionWelcomeEmail, welcomeEmail(services.Email)),
		})
	}

	return r
}

// Entries returns every registered entry.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// Select returns the entries the process serves.
func (r *Registry) Select(p config.Primary) []Entry {
	var selected []Entry
	for _, e := range r.entries {
		if p.Serves(e.Name) {
			selected = append(selected, e)
		}
	}
	return selected
}

// ServeMux builds the asynq mux for the selected entries.
func (r *Registry) ServeMux(p config.Primary) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	for _, e := range r.Select(p) {
		mux.Handle(e.TaskType, e.Handler)
		r.logger.Debug().Str("function", e.Name).Str("task", e.TaskType).Msg("registered trigger")
	}
	return mux
}

// wrap runs the handler inside a New Relic background transaction and
// carries a task-scoped logger in ctx.
func (r *Registry) wrap(name string, next asynq.HandlerFunc) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		ctx, end := loggerPkg.WithBackgroundTransaction(ctx, r.loggerService, name)
		defer end()

		logCtx := r.logger.With().
			Str("function", name).
			Str("task", t.Type())
		if id, ok := asynq.GetTaskID(ctx); ok {
			logCtx = logCtx.Str("task_id", id)
		}
		taskLogger := logCtx.Logger()

		return next(taskLogger.WithContext(ctx), t)
	}
}
